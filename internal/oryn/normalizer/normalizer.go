// Package normalizer turns permissive human input into the strict canonical
// form the parser accepts. It is a pure string-to-string rewrite: it never
// fails, never touches the network, and preserves semantics exactly.
package normalizer

import (
	"strings"
)

var verbAliases = map[string]string{
	"nav":           "goto",
	"navigate":      "goto",
	"scan":          "observe",
	"quit":          "exit",
	"q":             "exit",
}

// multi-word aliases are matched against the start of the line before
// single-word folding runs.
var phraseAliases = []struct {
	from, to string
}{
	{"go to ", "goto "},
	{"accept cookies", "accept_cookies"},
}

var relationalKeywords = map[string]bool{
	"near": true, "inside": true, "in": true, "after": true, "before": true, "contains": true,
}

var autoQuoteFirstArgVerbs = map[string]bool{
	"click": true, "hover": true, "focus": true, "check": true, "uncheck": true, "select": true,
}

// Lines runs the full normalization pipeline over each input line
// independently and returns the canonical lines in order.
func Lines(input []string) []string {
	out := make([]string, 0, len(input))
	for _, line := range input {
		out = append(out, Line(line))
	}
	return out
}

// Line canonicalizes a single command line.
func Line(line string) string {
	code, comment := splitComment(line)
	code = strings.TrimSpace(code)
	if code == "" {
		return code
	}

	code = foldPhraseAliases(code)
	toks := tokenize(code)
	toks = foldVerbAlias(toks)
	toks = shortFlagsToLong(toks)
	toks = lowercaseOptions(toks)
	toks = coalesceKeyCombos(toks)
	toks = convertQuotes(toks)
	toks = slurpJSONLiterals(toks)
	toks = reemitSelectorPayloads(toks)
	toks = autoQuote(toks)
	toks = fixupTypeOrdering(toks)

	result := strings.Join(toks, " ")
	if comment = strings.TrimSpace(comment); comment != "" {
		result = result + " #" + comment
	}
	return result
}

// splitComment finds a line-introducing '#': one preceded by whitespace or
// start-of-line, outside quotes and not escaped. Returns (code, comment)
// where comment excludes the leading '#'.
func splitComment(line string) (string, string) {
	inQuote := false
	var quoteChar byte
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inQuote:
			escaped = true
		case inQuote:
			if c == quoteChar {
				inQuote = false
			}
		case c == '"' || c == '\'':
			inQuote = true
			quoteChar = c
		case c == '#':
			precededByWS := i == 0 || line[i-1] == ' ' || line[i-1] == '\t'
			if precededByWS {
				return line[:i], line[i+1:]
			}
		}
	}
	return line, ""
}

func foldPhraseAliases(s string) string {
	lower := strings.ToLower(s)
	for _, pa := range phraseAliases {
		if strings.HasPrefix(lower, pa.from) {
			return pa.to + s[len(pa.from):]
		}
	}
	return s
}

// tokenize splits on whitespace while keeping quoted strings and
// parenthesized selector payloads intact as single tokens.
func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false
	var quoteChar byte
	parenDepth := 0
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
				continue
			}
			if c == quoteChar {
				inQuote = false
			}
		case parenDepth > 0:
			cur.WriteByte(c)
			if c == '(' {
				parenDepth++
			} else if c == ')' {
				parenDepth--
			}
		case c == '"' || c == '\'':
			inQuote = true
			quoteChar = c
			cur.WriteByte(c)
		case c == '(' && cur.Len() > 0 && isIdentTail(cur.String()):
			parenDepth++
			cur.WriteByte(c)
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return toks
}

func isIdentTail(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_') {
			return false
		}
	}
	return s == "css" || s == "xpath"
}

func foldVerbAlias(toks []string) []string {
	if len(toks) == 0 {
		return toks
	}
	if canon, ok := verbAliases[strings.ToLower(toks[0])]; ok {
		toks[0] = canon
	}
	return toks
}

func lowercaseOptions(toks []string) []string {
	for i, t := range toks {
		if strings.HasPrefix(t, "--") {
			eq := strings.Index(t, "=")
			if eq >= 0 {
				toks[i] = strings.ToLower(t[:eq]) + t[eq:]
			} else {
				toks[i] = strings.ToLower(t)
			}
		}
	}
	return toks
}

// shortFlagsToLong rewrites "-foo" to "--foo" unless it parses as a signed
// number.
func shortFlagsToLong(toks []string) []string {
	for i, t := range toks {
		if strings.HasPrefix(t, "-") && !strings.HasPrefix(t, "--") && len(t) > 1 {
			if isSignedNumber(t) {
				continue
			}
			toks[i] = "-" + t
		}
	}
	return toks
}

func isSignedNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			if s[i] == '.' {
				continue
			}
			return false
		}
	}
	return true
}

// coalesceKeyCombos joins "Control + Shift + A" style sequences into
// "control+shift+a".
func coalesceKeyCombos(toks []string) []string {
	var out []string
	i := 0
	for i < len(toks) {
		if i+2 < len(toks) && toks[i+1] == "+" {
			parts := []string{strings.ToLower(toks[i])}
			j := i + 1
			for j+1 < len(toks) && toks[j] == "+" {
				parts = append(parts, strings.ToLower(toks[j+1]))
				j += 2
			}
			out = append(out, strings.Join(parts, "+"))
			i = j
			continue
		}
		out = append(out, toks[i])
		i++
	}
	return out
}

// convertQuotes rewrites single-quoted tokens to double-quoted, preserving
// escapes and re-escaping any interior double quotes.
func convertQuotes(toks []string) []string {
	for i, t := range toks {
		if len(t) >= 2 && t[0] == '\'' && t[len(t)-1] == '\'' {
			inner := t[1 : len(t)-1]
			inner = strings.ReplaceAll(inner, `"`, `\"`)
			toks[i] = `"` + inner + `"`
		}
	}
	return toks
}

// slurpJSONLiterals merges a run of tokens starting with "{" and ending once
// braces balance into a single double-quoted, escaped string token.
func slurpJSONLiterals(toks []string) []string {
	var out []string
	i := 0
	for i < len(toks) {
		if strings.HasPrefix(toks[i], "{") {
			depth := 0
			var parts []string
			j := i
			for j < len(toks) {
				parts = append(parts, toks[j])
				depth += strings.Count(toks[j], "{") - strings.Count(toks[j], "}")
				j++
				if depth <= 0 {
					break
				}
			}
			joined := strings.Join(parts, " ")
			escaped := strings.ReplaceAll(joined, `"`, `\"`)
			out = append(out, `"`+escaped+`"`)
			i = j
			continue
		}
		out = append(out, toks[i])
		i++
	}
	return out
}

// reemitSelectorPayloads ensures css(...)/xpath(...) interiors are always
// double-quoted with inner double quotes escaped.
func reemitSelectorPayloads(toks []string) []string {
	for i, t := range toks {
		for _, kind := range []string{"css(", "xpath("} {
			if strings.HasPrefix(t, kind) && strings.HasSuffix(t, ")") {
				inner := t[len(kind) : len(t)-1]
				inner = unquoteIfQuoted(inner)
				inner = strings.ReplaceAll(inner, `"`, `\"`)
				toks[i] = kind + `"` + inner + `"` + ")"
			}
		}
	}
	return toks
}

func unquoteIfQuoted(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// autoQuote concatenates consecutive bare words into a single quoted string
// for verbs whose first positional argument is a text target, and for any
// run following a relational keyword.
func autoQuote(toks []string) []string {
	if len(toks) == 0 {
		return toks
	}
	verb := strings.ToLower(toks[0])
	out := []string{toks[0]}
	i := 1
	firstArgDone := false
	for i < len(toks) {
		t := toks[i]
		lower := strings.ToLower(t)
		if strings.HasPrefix(t, "--") {
			out = append(out, toks[i:]...)
			break
		}
		if relationalKeywords[lower] {
			out = append(out, t)
			i++
			// slurp the following bare-word run as the relation's atomic.
			run, consumed := slurpBareRun(toks, i)
			if consumed > 0 {
				out = append(out, run)
				i += consumed
			}
			firstArgDone = true
			continue
		}
		if isQuotedOrSpecial(t) {
			out = append(out, t)
			i++
			firstArgDone = true
			continue
		}
		if autoQuoteFirstArgVerbs[verb] && !firstArgDone {
			run, consumed := slurpBareRun(toks, i)
			if consumed > 0 {
				out = append(out, run)
				i += consumed
			}
			firstArgDone = true
			continue
		}
		if verb == "type" {
			// The first and second positional arguments are auto-quoted
			// independently: the target is exactly one bare word (there is
			// no delimiter to tell it apart from the text that follows),
			// the text is the remaining bare-word run.
			if !firstArgDone {
				out = append(out, `"`+t+`"`)
				i++
				firstArgDone = true
				continue
			}
			run, consumed := slurpBareRun(toks, i)
			if consumed > 0 {
				out = append(out, run)
				i += consumed
			} else {
				out = append(out, t)
				i++
			}
			continue
		}
		out = append(out, t)
		i++
	}
	return out
}

func isQuotedOrSpecial(t string) bool {
	if len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"' {
		return true
	}
	if strings.HasPrefix(t, "css(") || strings.HasPrefix(t, "xpath(") {
		return true
	}
	if isSignedNumber(t) {
		return true
	}
	return false
}

func slurpBareRun(toks []string, start int) (string, int) {
	var words []string
	i := start
	for i < len(toks) {
		t := toks[i]
		lower := strings.ToLower(t)
		if strings.HasPrefix(t, "--") || relationalKeywords[lower] || isQuotedOrSpecial(t) {
			break
		}
		words = append(words, t)
		i++
	}
	if len(words) == 0 {
		return "", 0
	}
	return `"` + strings.Join(words, " ") + `"`, i - start
}

// fixupTypeOrdering moves a `type` command's text argument to just before
// the first flag (or to the end) when it was parsed ahead of a relational
// clause: "type email "x" inside "Form"" -> "type email inside "Form" "x"".
func fixupTypeOrdering(toks []string) []string {
	if len(toks) == 0 || strings.ToLower(toks[0]) != "type" {
		return toks
	}
	// locate target (index 1), text (index 2) and a relational keyword
	// appearing strictly after the text.
	if len(toks) < 4 {
		return toks
	}
	relIdx := -1
	for i := 3; i < len(toks); i++ {
		if relationalKeywords[strings.ToLower(toks[i])] {
			relIdx = i
			break
		}
		if strings.HasPrefix(toks[i], "--") {
			break
		}
	}
	if relIdx == -1 {
		return toks
	}
	text := toks[2]
	rest := append([]string{}, toks[3:]...)
	flagIdx := len(rest)
	for i, t := range rest {
		if strings.HasPrefix(t, "--") {
			flagIdx = i
			break
		}
	}
	out := append([]string{}, toks[:2]...)
	out = append(out, rest[:flagIdx]...)
	out = append(out, text)
	out = append(out, rest[flagIdx:]...)
	return out
}
