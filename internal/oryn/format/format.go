// Package format renders wire-level responses as the compact, line-oriented
// text the oryn REPL and scripts print, masking sensitive field values along
// the way.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"oryn/internal/oryn/protocol"
)

// defaultSensitiveFields are the field-name substrings (case-insensitive)
// whose values are masked on display.
var defaultSensitiveFields = []string{
	"password", "secret", "token", "key", "cvv", "ssn", "card_number", "credit_card",
}

const maskedValue = "••••••••"

// IsSensitive reports whether fieldName names a value that should be masked.
func IsSensitive(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, f := range defaultSensitiveFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// MaskValue replaces val with the canned mask when fieldName looks sensitive.
func MaskValue(val, fieldName string) string {
	if val == "" || !IsSensitive(fieldName) {
		return val
	}
	return maskedValue
}

// Response renders a ScannerProtocolResponse for display: a scan listing, an
// action acknowledgement, or an error line.
func Response(resp protocol.ScannerProtocolResponse) string {
	if !resp.IsOk() {
		return "Error: " + resp.Message
	}
	if resp.Data == nil {
		return "ok"
	}
	switch {
	case resp.Data.Scan != nil:
		return Scan(*resp.Data.Scan)
	case resp.Data.Action != nil:
		return Action(*resp.Data.Action)
	case resp.Data.Value != nil:
		return fmt.Sprintf("Value: %v", resp.Data.Value)
	}
	return "ok"
}

// Scan renders a page snapshot as one line per element, followed by any
// detected patterns and element-level changes.
func Scan(s protocol.ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@ %s %q\n", s.Page.URL, s.Page.Title)

	for _, el := range s.Elements {
		b.WriteString(formatElement(el))
		b.WriteByte('\n')
	}

	if lines := patternLines(s.Patterns); len(lines) > 0 {
		b.WriteString("\nPatterns:")
		for _, l := range lines {
			b.WriteString("\n- " + l)
		}
		b.WriteByte('\n')
	}

	if s.Changes != nil && (len(s.Changes.Added) > 0 || len(s.Changes.Removed) > 0 || len(s.Changes.Modified) > 0) {
		b.WriteString("\n# changes\n")
		for _, id := range s.Changes.Added {
			fmt.Fprintf(&b, "+ [%d] appeared\n", id)
		}
		for _, id := range s.Changes.Removed {
			fmt.Fprintf(&b, "- [%d] disappeared\n", id)
		}
		for _, id := range s.Changes.Modified {
			fmt.Fprintf(&b, "~ [%d] changed\n", id)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatElement(el protocol.Element) string {
	typeStr := el.ElementType
	if el.Role != "" {
		typeStr = el.ElementType + "/" + el.Role
	}

	label := el.Text
	if label == "" {
		label = el.Label
	}

	var flags []string
	if el.State.Checked {
		flags = append(flags, "checked")
	}
	if el.State.Selected {
		flags = append(flags, "selected")
	}
	if el.State.Disabled {
		flags = append(flags, "disabled")
	}
	if el.State.Readonly {
		flags = append(flags, "readonly")
	}
	flagsStr := ""
	if len(flags) > 0 {
		flagsStr = " {" + strings.Join(flags, ", ") + "}"
	}

	valueSuffix := ""
	switch {
	case el.Value != "":
		valueSuffix = fmt.Sprintf(" = %q", MaskValue(el.Value, el.ElementType+" "+el.Attributes["name"]))
	case el.ElementType == "checkbox" || el.ElementType == "radio":
		if el.State.Checked {
			valueSuffix = " = checked"
		}
	}

	return fmt.Sprintf("[%d] %s %q%s%s", el.ID, typeStr, label, flagsStr, valueSuffix)
}

func patternLines(patterns []protocol.Pattern) []string {
	var out []string
	for _, p := range patterns {
		switch p.Kind {
		case "login":
			pct := int(p.Confidence * 100)
			note := ""
			if p.Confidence < 0.7 {
				note = " (Note: unusual structure, verify before use)"
			}
			out = append(out, fmt.Sprintf("Login Form (%d%% confidence)%s", pct, note))
		case "search":
			out = append(out, "Search Box")
		case "pagination":
			out = append(out, "Pagination")
		case "modal":
			out = append(out, "Modal")
		case "cookie_banner":
			out = append(out, "Cookie Banner")
		}
	}
	return out
}

// Action renders an ActionResult acknowledgement line.
func Action(a protocol.ActionResult) string {
	msg := a.Message
	if msg == "" {
		msg = "action"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ok %s", msg)
	if a.Navigation {
		b.WriteString("\n\n# navigation detected")
	}
	if a.DOMChanges != nil && (len(a.DOMChanges.Added) > 0 || len(a.DOMChanges.Removed) > 0) {
		fmt.Fprintf(&b, "\n\n# changes: +%d -%d elements", len(a.DOMChanges.Added), len(a.DOMChanges.Removed))
	}
	return b.String()
}

// Value renders an arbitrary extracted/executed value, masking it when name
// (e.g. a cookie or storage key) looks sensitive.
func Value(name string, v interface{}) string {
	s := fmt.Sprintf("%v", v)
	return MaskValue(s, name)
}

// Cookie renders a single cookie line, masking its value when the name
// looks sensitive.
func Cookie(c protocol.Cookie) string {
	return fmt.Sprintf("%s = %s", c.Name, MaskValue(c.Value, c.Name))
}

// Cookies renders a full cookie jar listing.
func Cookies(cookies []protocol.Cookie) string {
	if len(cookies) == 0 {
		return "(no cookies)"
	}
	lines := make([]string, len(cookies))
	for i, c := range cookies {
		lines[i] = Cookie(c)
	}
	return strings.Join(lines, "\n")
}

// Tabs renders a tab listing, marking the active tab with a leading "*".
func Tabs(tabs []protocol.TabInfo) string {
	if len(tabs) == 0 {
		return "(no tabs)"
	}
	lines := make([]string, len(tabs))
	for i, t := range tabs {
		marker := " "
		if t.Active {
			marker = "*"
		}
		lines[i] = fmt.Sprintf("%s [%d] %s %q", marker, t.Index, t.URL, t.Title)
	}
	return strings.Join(lines, "\n")
}

// Err renders a structured protocol.Error for display, including its hint.
func Err(e *protocol.Error) string {
	if e == nil {
		return "Error"
	}
	if e.Hint != "" {
		return fmt.Sprintf("Error [%s]: %s (hint: %s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("Error [%s]: %s", e.Code, e.Message)
}

// Int is a small helper for rendering optional *int fields (e.g. tab index).
func Int(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}
