// Package translator lowers a resolved Command (every Target already an
// Atomic::Id or Atomic::Selector) into a wire Action. It is a pure function:
// no I/O, no context, total for the supported verb set.
package translator

import (
	"fmt"
	"strconv"
	"strings"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/protocol"
)

// Unsupported is returned for verbs the translator has no lowering for.
type Unsupported struct{ Verb string }

func (u *Unsupported) Error() string { return fmt.Sprintf("unsupported command: %s", u.Verb) }

const defaultWaitTimeoutMs = 30000

// Result is the sum of action families a single Command lowers to.
type Result struct {
	Scanner protocol.ScannerAction
	Browser protocol.BrowserAction
	Session protocol.SessionAction
	Meta    protocol.MetaAction
}

func scanner(a protocol.ScannerAction) Result { return Result{Scanner: a} }
func browser(a protocol.BrowserAction) Result { return Result{Browser: a} }
func session(a protocol.SessionAction) Result { return Result{Session: a} }
func meta(a protocol.MetaAction) Result       { return Result{Meta: a} }

// Translate maps one resolved Command to its Action. Callers resolve Targets
// before calling Translate: requireID extracts the numeric id a resolved
// Target carries, and idOrSelector also lets a Selector target through as its
// raw selector string for the actions that accept one.
func Translate(cmd ast.Command) (Result, error) {
	switch c := cmd.(type) {
	case ast.Goto:
		return browser(protocol.GotoAction{URL: c.URL, Headers: parseHeaderPairs(c.Headers), TimeoutMs: timeoutMs(c.Timeout, 0)}), nil
	case ast.Back:
		return browser(protocol.BackAction{}), nil
	case ast.Forward:
		return browser(protocol.ForwardAction{}), nil
	case ast.Refresh:
		return browser(protocol.RefreshAction{Hard: c.Hard}), nil
	case ast.URL:
		return scanner(protocol.ScanAction{}), nil

	case ast.Observe:
		max := (*int)(nil)
		return scanner(protocol.ScanAction{
			MaxElements: max, IncludeHidden: c.Hidden, ViewAll: c.Full, ViewportOnly: c.Viewport,
			Near: c.Near, MonitorChanges: c.Diff,
		}), nil
	case ast.HTML:
		return scanner(protocol.HTMLAction{Selector: c.Selector}), nil
	case ast.TextCmd:
		if c.Target != nil {
			id, sel := idOrSelector(*c.Target)
			return scanner(protocol.TextAction{ID: id, Selector: sel}), nil
		}
		return scanner(protocol.TextAction{Selector: c.Selector}), nil
	case ast.Title:
		return scanner(protocol.ScanAction{}), nil
	case ast.Screenshot:
		if c.Target != nil {
			if id, _ := idOrSelector(*c.Target); id != nil {
				return scanner(protocol.BoxAction{ID: *id}), nil
			}
		}
		return browser(protocol.ScreenshotAction{Output: c.Output, Format: c.Format, FullPage: c.FullPage}), nil
	case ast.Box:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.BoxAction{ID: id}), nil

	case ast.Click:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		button := "left"
		if c.Right {
			button = "right"
		} else if c.Middle {
			button = "middle"
		}
		var mods []string
		if c.Ctrl {
			mods = append(mods, "ctrl")
		}
		if c.Shift {
			mods = append(mods, "shift")
		}
		if c.Alt {
			mods = append(mods, "alt")
		}
		return scanner(protocol.ClickAction{ID: id, Button: button, Double: c.Double, Force: c.Force, Modifiers: mods}), nil

	case ast.Type:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		var delayPtr *uint64
		if c.Delay != nil {
			v := uint64(*c.Delay)
			delayPtr = &v
		}
		return scanner(protocol.TypeAction{ID: id, Text: c.Text, Clear: !c.Append, Submit: c.Enter, Delay: delayPtr}), nil

	case ast.Clear:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.ClearAction{ID: id}), nil

	case ast.Press:
		return browser(protocol.PressKeyAction{Keys: c.Keys}), nil
	case ast.Keydown:
		return browser(protocol.KeydownAction{Key: c.Key}), nil
	case ast.Keyup:
		return browser(protocol.KeyupAction{Key: c.Key}), nil
	case ast.Keys:
		return scanner(protocol.ScanAction{}), nil

	case ast.Select:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		if n, err := strconv.Atoi(c.Value); err == nil {
			return scanner(protocol.SelectAction{ID: id, Index: &n}), nil
		}
		return scanner(protocol.SelectAction{ID: id, Label: c.Value}), nil

	case ast.Check:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.CheckAction{ID: id}), nil
	case ast.Uncheck:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.UncheckAction{ID: id}), nil
	case ast.Hover:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.HoverAction{ID: id}), nil
	case ast.Focus:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.FocusAction{ID: id}), nil

	case ast.Scroll:
		var idPtr *int
		if c.Target != nil {
			id, _ := idOrSelector(*c.Target)
			idPtr = id
		}
		direction := c.Direction
		if direction == "" {
			direction = "down"
		}
		amount := c.Amount
		if amount == "" {
			amount = "page"
		}
		return scanner(protocol.ScrollAction{ID: idPtr, Direction: direction, Amount: amount}), nil

	case ast.Submit:
		if c.Target == nil {
			return Result{}, fmt.Errorf("submit requires a resolved target")
		}
		id, err := requireID(*c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.SubmitAction{ID: id}), nil

	case ast.Wait:
		return translateWait(c)

	case ast.Extract:
		return scanner(protocol.ExtractAction{What: string(c.What), Selector: c.Selector, Format: c.Format}), nil

	case ast.Cookies:
		return translateCookies(c)
	case ast.Storage:
		return translateStorage(c)
	case ast.Sessions:
		return session(protocol.SessionsListAction{}), nil
	case ast.SessionMgmt:
		return translateSessionMgmt(c)
	case ast.State:
		return translateState(c)
	case ast.Headers:
		return translateHeaders(c)

	case ast.Tabs:
		return session(protocol.TabsListAction{}), nil
	case ast.Tab:
		return translateTab(c)

	case ast.Login, ast.Search, ast.Dismiss, ast.AcceptCookies, ast.ScrollUntil:
		// Intents are expanded by the executor into constituent commands
		// before translation; reaching here means no expansion occurred.
		return Result{}, &Unsupported{Verb: cmd.Verb()}

	case ast.Packs:
		return meta(protocol.PacksListAction{}), nil
	case ast.PackAction:
		return meta(protocol.PackActionAction{Action: c.Action, Name: c.Name}), nil
	case ast.Intents:
		return meta(protocol.IntentsListAction{}), nil
	case ast.Define:
		return meta(protocol.DefineAction{Name: c.Name}), nil
	case ast.Undefine:
		return meta(protocol.UndefineAction{Name: c.Name}), nil
	case ast.Export:
		return meta(protocol.ExportAction{Name: c.Name, Path: c.Path}), nil
	case ast.Run:
		return meta(protocol.RunAction{Name: c.Name}), nil

	case ast.FrameSwitch:
		return browser(protocol.FrameSwitchAction{Selector: c.Selector}), nil
	case ast.Dialog:
		return browser(protocol.DialogAction{Accept: c.Accept, Text: c.Text}), nil
	case ast.ViewportSize:
		return browser(protocol.ViewportAction{Width: c.Width, Height: c.Height}), nil
	case ast.Highlight:
		id, err := requireID(c.Target)
		if err != nil {
			return Result{}, err
		}
		return scanner(protocol.HighlightAction{ID: id}), nil
	case ast.PDF:
		return browser(protocol.PDFAction{Output: c.Output}), nil

	case ast.Exit, ast.Help, ast.Learn, ast.Intercept, ast.Requests, ast.Console,
		ast.Errors, ast.Frames, ast.Device, ast.Devices, ast.Media, ast.Trace, ast.Record:
		// Peripheral/stubbed verbs: the executor handles these directly
		// without lowering to a backend Action.
		return Result{}, &Unsupported{Verb: cmd.Verb()}
	}
	return Result{}, &Unsupported{Verb: cmd.Verb()}
}

func requireID(t ast.Target) (int, error) {
	if !t.IsAtomic() || t.Atomic.Kind != ast.AtomicID {
		return 0, fmt.Errorf("target %s did not resolve to an element id", t.String())
	}
	return t.Atomic.ID, nil
}

// idOrSelector splits a resolved target into either an *int id or a raw CSS
// selector string for in-page actions that accept either.
func idOrSelector(t ast.Target) (*int, string) {
	if !t.IsAtomic() {
		return nil, ""
	}
	switch t.Atomic.Kind {
	case ast.AtomicID:
		id := t.Atomic.ID
		return &id, ""
	case ast.AtomicSelector:
		return nil, t.Atomic.SelectorValue
	}
	return nil, ""
}

func translateWait(c ast.Wait) (Result, error) {
	timeout := timeoutMs(c.Timeout, defaultWaitTimeoutMs)
	wa := protocol.WaitAction{TimeoutMs: timeout}
	switch c.Condition.Kind {
	case ast.WaitLoad:
		wa.Condition = "load"
	case ast.WaitIdle:
		wa.Condition = "idle"
	case ast.WaitNavigation:
		wa.Condition = "navigation"
	case ast.WaitReady:
		wa.Condition = "ready"
	case ast.WaitVisible:
		wa.Condition = "visible"
		populateWaitTarget(&wa, c.Condition.Target)
	case ast.WaitHidden:
		wa.Condition = "hidden"
		populateWaitTarget(&wa, c.Condition.Target)
	case ast.WaitExists:
		wa.Condition = "exists"
		wa.Selector = c.Condition.Selector
	case ast.WaitGone:
		wa.Condition = "gone"
		wa.Selector = c.Condition.Selector
	case ast.WaitURL:
		wa.Condition = "url"
		wa.Text = c.Condition.URL
	case ast.WaitItems:
		wa.Condition = "items"
		wa.Selector = c.Condition.Items
	default:
		return Result{}, fmt.Errorf("unknown wait condition")
	}
	return scanner(wa), nil
}

func populateWaitTarget(wa *protocol.WaitAction, t *ast.Target) {
	if t == nil || !t.IsAtomic() {
		return
	}
	switch t.Atomic.Kind {
	case ast.AtomicID:
		wa.Selector = strconv.Itoa(t.Atomic.ID)
	case ast.AtomicSelector:
		wa.Selector = t.Atomic.SelectorValue
	case ast.AtomicText:
		wa.Text = t.Atomic.Text
	}
}

func translateCookies(c ast.Cookies) (Result, error) {
	switch c.Action {
	case ast.CookiesList:
		return session(protocol.CookiesListAction{}), nil
	case ast.CookiesGet:
		return session(protocol.CookiesGetAction{Name: c.Name}), nil
	case ast.CookiesSet:
		return session(protocol.CookiesSetAction{Name: c.Name, Value: c.Value}), nil
	case ast.CookiesDelete:
		return session(protocol.CookiesDeleteAction{Name: c.Name}), nil
	case ast.CookiesClear:
		return session(protocol.CookiesClearAction{}), nil
	}
	return Result{}, fmt.Errorf("unknown cookies action %q", c.Action)
}

// translateStorage lowers to an in-page Execute script: key and value are
// single-quote-escaped for embedding.
func translateStorage(c ast.Storage) (Result, error) {
	area := "localStorage"
	if c.Session {
		area = "sessionStorage"
	}
	key := escapeJSString(c.Name)
	switch c.Action {
	case ast.StorageList:
		return scanner(protocol.ExecuteAction{Script: fmt.Sprintf("JSON.stringify(Object.assign({}, %s))", area)}), nil
	case ast.StorageGet:
		return scanner(protocol.ExecuteAction{Script: fmt.Sprintf("%s.getItem('%s')", area, key)}), nil
	case ast.StorageSet:
		val := escapeJSString(c.Value)
		return scanner(protocol.ExecuteAction{Script: fmt.Sprintf("%s.setItem('%s', '%s')", area, key, val)}), nil
	case ast.StorageDelete:
		return scanner(protocol.ExecuteAction{Script: fmt.Sprintf("%s.removeItem('%s')", area, key)}), nil
	case ast.StorageClear:
		return scanner(protocol.ExecuteAction{Script: fmt.Sprintf("%s.clear()", area)}), nil
	}
	return Result{}, fmt.Errorf("unknown storage action %q", c.Action)
}

func escapeJSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func translateSessionMgmt(c ast.SessionMgmt) (Result, error) {
	switch c.Action {
	case ast.SessionNew:
		return session(protocol.SessionNewAction{Name: c.Name, Mode: c.Mode}), nil
	case ast.SessionSwitch:
		return session(protocol.SessionSwitchAction{Name: c.Name}), nil
	case ast.SessionClose:
		return session(protocol.SessionCloseAction{Name: c.Name}), nil
	}
	return Result{}, fmt.Errorf("unknown session action %q", c.Action)
}

func translateState(c ast.State) (Result, error) {
	switch c.Action {
	case ast.StateSave:
		return session(protocol.StateSaveAction{
			Path: c.Path, CookiesOnly: c.CookiesOnly, Domain: c.Domain, IncludeSession: c.IncludeSession,
		}), nil
	case ast.StateLoad:
		return session(protocol.StateLoadAction{Path: c.Path, Merge: c.Merge, CookiesOnly: c.CookiesOnly}), nil
	}
	return Result{}, fmt.Errorf("unknown state action %q", c.Action)
}

func translateHeaders(c ast.Headers) (Result, error) {
	switch c.Action {
	case "set":
		return session(protocol.HeadersSetAction{Domain: c.Domain, JSON: c.JSON}), nil
	case "clear":
		return session(protocol.HeadersClearAction{Domain: c.Domain}), nil
	default:
		return session(protocol.HeadersShowAction{Domain: c.Domain}), nil
	}
}

func translateTab(c ast.Tab) (Result, error) {
	switch c.Action {
	case ast.TabNew:
		return session(protocol.TabNewAction{URL: c.URL}), nil
	case ast.TabSwitch:
		return session(protocol.TabSwitchAction{Index: c.Index}), nil
	case ast.TabClose:
		var idx *int
		if c.HasIdx {
			idx = &c.Index
		}
		return session(protocol.TabCloseAction{Index: idx}), nil
	}
	return Result{}, fmt.Errorf("unknown tab action %q", c.Action)
}

func timeoutMs(s string, def uint64) uint64 {
	if s == "" {
		return def
	}
	if ms, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ms
	}
	return def
}

func parseHeaderPairs(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ";") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 {
			out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return out
}
