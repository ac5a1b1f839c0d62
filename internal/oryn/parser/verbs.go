package parser

import (
	"strconv"
	"strings"

	"oryn/internal/oryn/ast"
)

type verbFunc func(*cursor) (ast.Command, error)

var verbTable map[string]verbFunc

func init() {
	verbTable = map[string]verbFunc{
		"goto":           parseGoto,
		"back":           parseBack,
		"forward":        parseForward,
		"refresh":        parseRefresh,
		"url":            parseURL,
		"observe":        parseObserve,
		"html":           parseHTML,
		"text":           parseText,
		"title":          parseTitle,
		"screenshot":     parseScreenshot,
		"box":            parseBox,
		"click":          parseClick,
		"type":           parseType,
		"clear":          parseClear,
		"press":          parsePress,
		"keydown":        parseKeydown,
		"keyup":          parseKeyup,
		"keys":           parseKeys,
		"select":         parseSelect,
		"check":          parseCheck,
		"uncheck":        parseUncheck,
		"hover":          parseHover,
		"focus":          parseFocus,
		"scroll":         parseScroll,
		"submit":         parseSubmit,
		"wait":           parseWait,
		"extract":        parseExtract,
		"cookies":        parseCookies,
		"storage":        parseStorage,
		"sessions":       parseSessions,
		"session":        parseSessionMgmt,
		"state":          parseState,
		"headers":        parseHeaders,
		"tabs":           parseTabs,
		"tab":            parseTab,
		"login":          parseLogin,
		"search":         parseSearch,
		"dismiss":        parseDismiss,
		"accept_cookies": parseAcceptCookies,
		"packs":          parsePacks,
		"pack":           parsePack,
		"intents":        parseIntents,
		"define":         parseDefine,
		"undefine":       parseUndefine,
		"export":         parseExport,
		"run":            parseRun,
		"intercept":      parseIntercept,
		"requests":       parseRequests,
		"console":        parseConsole,
		"errors":         parseErrors,
		"frames":         parseFrames,
		"frame":          parseFrame,
		"dialog":         parseDialog,
		"viewport":       parseViewport,
		"device":         parseDevice,
		"devices":        parseDevices,
		"media":          parseMedia,
		"trace":          parseTrace,
		"record":         parseRecord,
		"highlight":      parseHighlight,
		"pdf":            parsePDF,
		"learn":          parseLearn,
		"exit":           parseExit,
		"help":           parseHelp,
	}
	// "scroll until T" is parsed distinctly inside parseScroll by peeking
	// the first bare word.
}

func parseGoto(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("goto requires a url")
	}
	opts := c.parseOptions()
	return ast.Goto{URL: valueText(t), Headers: optStr(opts, "headers"), Timeout: optStr(opts, "timeout")}, nil
}

func parseBack(c *cursor) (ast.Command, error)    { c.parseOptions(); return ast.Back{}, nil }
func parseForward(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Forward{}, nil }
func parseRefresh(c *cursor) (ast.Command, error) {
	opts := c.parseOptions()
	return ast.Refresh{Hard: optBool(opts, "hard")}, nil
}
func parseURL(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.URL{}, nil }

func parseObserve(c *cursor) (ast.Command, error) {
	opts := c.parseOptions()
	return ast.Observe{
		Full: optBool(opts, "full"), Minimal: optBool(opts, "minimal"),
		Viewport: optBool(opts, "viewport"), Hidden: optBool(opts, "hidden"),
		Positions: optBool(opts, "positions"), Diff: optBool(opts, "diff"),
		Near: optStr(opts, "near"), Timeout: optStr(opts, "timeout"),
	}, nil
}

func parseHTML(c *cursor) (ast.Command, error) {
	opts := c.parseOptions()
	return ast.HTML{Selector: optStr(opts, "selector")}, nil
}

func parseText(c *cursor) (ast.Command, error) {
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		target, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		c.parseOptions()
		return ast.TextCmd{Target: &target}, nil
	}
	opts := c.parseOptions()
	return ast.TextCmd{Selector: optStr(opts, "selector")}, nil
}

func parseTitle(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Title{}, nil }

func parseScreenshot(c *cursor) (ast.Command, error) {
	var target *ast.Target
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		tg, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		target = &tg
	}
	opts := c.parseOptions()
	return ast.Screenshot{
		Output: optStr(opts, "output"), Format: optStr(opts, "format"),
		FullPage: optBool(opts, "fullpage"), Target: target,
	}, nil
}

func parseBox(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Box{Target: target}, nil
}

func parseClick(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	opts := c.parseOptions()
	return ast.Click{
		Target: target, Double: optBool(opts, "double"), Right: optBool(opts, "right"),
		Middle: optBool(opts, "middle"), Force: optBool(opts, "force"),
		Ctrl: optBool(opts, "ctrl"), Shift: optBool(opts, "shift"), Alt: optBool(opts, "alt"),
		Timeout: optStr(opts, "timeout"),
	}, nil
}

func parseType(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	t, ok := c.next()
	if !ok {
		return nil, errorf("type requires text")
	}
	opts := c.parseOptions()
	var delay *float64
	if d, ok := opts.Get("delay"); ok {
		if f, err := strconv.ParseFloat(d, 64); err == nil {
			delay = &f
		}
	}
	return ast.Type{
		Target: target, Text: valueText(t), Append: optBool(opts, "append"),
		Enter: optBool(opts, "enter"), Delay: delay, Timeout: optStr(opts, "timeout"),
	}, nil
}

func parseClear(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Clear{Target: target}, nil
}

func parsePress(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("press requires a key combo")
	}
	c.parseOptions()
	return ast.Press{Keys: strings.Split(valueText(t), "+")}, nil
}

func parseKeydown(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("keydown requires a key")
	}
	c.parseOptions()
	return ast.Keydown{Key: valueText(t)}, nil
}

func parseKeyup(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("keyup requires a key")
	}
	c.parseOptions()
	return ast.Keyup{Key: valueText(t)}, nil
}

func parseKeys(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Keys{}, nil }

func parseSelect(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	t, ok := c.next()
	if !ok {
		return nil, errorf("select requires a value")
	}
	c.parseOptions()
	return ast.Select{Target: target, Value: valueText(t)}, nil
}

func parseCheck(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Check{Target: target}, nil
}

func parseUncheck(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Uncheck{Target: target}, nil
}

func parseHover(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Hover{Target: target}, nil
}

func parseFocus(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Focus{Target: target}, nil
}

func parseScroll(c *cursor) (ast.Command, error) {
	if t, ok := c.peek(); ok && t.kind == tokWord && strings.ToLower(t.text) == "until" {
		c.next()
		target, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		opts := c.parseOptions()
		return ast.ScrollUntil{Target: target, Timeout: optStr(opts, "timeout")}, nil
	}
	var target *ast.Target
	if t, ok := c.peek(); ok && t.kind != tokFlag && !isDirectionWord(t.text) {
		tg, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		target = &tg
	}
	direction := "down"
	if t, ok := c.peek(); ok && t.kind == tokWord && isDirectionWord(t.text) {
		direction = strings.ToLower(t.text)
		c.next()
	}
	opts := c.parseOptions()
	amount := optStr(opts, "amount")
	if amount == "" {
		amount = "page"
	}
	return ast.Scroll{
		Target: target, Direction: direction, Amount: amount,
		Page: optBool(opts, "page"), Timeout: optStr(opts, "timeout"),
	}, nil
}

func isDirectionWord(s string) bool {
	switch strings.ToLower(s) {
	case "up", "down", "left", "right":
		return true
	}
	return false
}

func parseSubmit(c *cursor) (ast.Command, error) {
	var target *ast.Target
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		tg, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		target = &tg
	}
	c.parseOptions()
	return ast.Submit{Target: target}, nil
}

func parseWait(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("wait requires a condition")
	}
	kind := strings.ToLower(valueText(t))
	var cond ast.WaitCondition
	switch kind {
	case "load":
		cond = ast.WaitCondition{Kind: ast.WaitLoad}
	case "idle":
		cond = ast.WaitCondition{Kind: ast.WaitIdle}
	case "navigation":
		cond = ast.WaitCondition{Kind: ast.WaitNavigation}
	case "ready":
		cond = ast.WaitCondition{Kind: ast.WaitReady}
	case "visible":
		target, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		cond = ast.WaitCondition{Kind: ast.WaitVisible, Target: &target}
	case "hidden":
		target, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		cond = ast.WaitCondition{Kind: ast.WaitHidden, Target: &target}
	case "exists":
		s, ok := c.next()
		if !ok {
			return nil, errorf("wait exists requires a selector")
		}
		cond = ast.WaitCondition{Kind: ast.WaitExists, Selector: valueText(s)}
	case "gone":
		s, ok := c.next()
		if !ok {
			return nil, errorf("wait gone requires a selector")
		}
		cond = ast.WaitCondition{Kind: ast.WaitGone, Selector: valueText(s)}
	case "url":
		s, ok := c.next()
		if !ok {
			return nil, errorf("wait url requires a pattern")
		}
		cond = ast.WaitCondition{Kind: ast.WaitURL, URL: valueText(s)}
	case "items":
		s, ok := c.next()
		if !ok {
			return nil, errorf("wait items requires a selector")
		}
		n, ok := c.next()
		if !ok {
			return nil, errorf("wait items requires a count")
		}
		count, _ := strconv.Atoi(valueText(n))
		cond = ast.WaitCondition{Kind: ast.WaitItems, Items: valueText(s), Count: count}
	default:
		return nil, errorf("unknown wait condition %q", kind)
	}
	opts := c.parseOptions()
	return ast.Wait{Condition: cond, Timeout: optStr(opts, "timeout")}, nil
}

func parseExtract(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("extract requires a kind")
	}
	what := strings.ToLower(valueText(t))
	selector := ""
	if what == "css" {
		sel, ok := c.next()
		if !ok {
			return nil, errorf("extract css requires a selector")
		}
		selector = valueText(sel)
	}
	opts := c.parseOptions()
	return ast.Extract{What: ast.ExtractWhat(what), Selector: selector, Format: optStr(opts, "format")}, nil
}

func parseCookies(c *cursor) (ast.Command, error) {
	action, name, value := parseSubAction(c, "list")
	return ast.Cookies{Action: ast.CookiesAction(action), Name: name, Value: value}, nil
}

func parseStorage(c *cursor) (ast.Command, error) {
	action, name, value := parseSubAction(c, "list")
	opts := c.parseOptions()
	return ast.Storage{
		Action: ast.StorageAction(action), Name: name, Value: value,
		Local: optBool(opts, "local"), Session: optBool(opts, "session"),
	}, nil
}

// parseSubAction reads an optional leading bare word as the action (or uses
// def), followed by up to two more bare-word/string args (name, value).
func parseSubAction(c *cursor, def string) (action, name, value string) {
	action = def
	if t, ok := c.peek(); ok && t.kind == tokWord && isActionWord(t.text) {
		action = strings.ToLower(t.text)
		c.next()
	}
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		name = valueText(t)
		c.next()
	}
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		value = valueText(t)
		c.next()
	}
	return
}

func isActionWord(s string) bool {
	switch strings.ToLower(s) {
	case "list", "get", "set", "delete", "clear", "new", "switch", "close", "save", "load", "show":
		return true
	}
	return false
}

func parseSessions(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Sessions{}, nil }

func parseSessionMgmt(c *cursor) (ast.Command, error) {
	action, name, _ := parseSubAction(c, "new")
	opts := c.parseOptions()
	return ast.SessionMgmt{Action: ast.SessionMgmtAction(action), Name: name, Mode: optStr(opts, "mode")}, nil
}

func parseState(c *cursor) (ast.Command, error) {
	action, path, _ := parseSubAction(c, "save")
	opts := c.parseOptions()
	return ast.State{
		Action: ast.StateAction(action), Path: path,
		CookiesOnly: optBool(opts, "cookies-only"), Domain: optStr(opts, "domain"),
		IncludeSession: optBool(opts, "include-session"), Merge: optBool(opts, "merge"),
	}, nil
}

func parseHeaders(c *cursor) (ast.Command, error) {
	action, domain, json := parseSubAction(c, "show")
	return ast.Headers{Action: action, Domain: domain, JSON: json}, nil
}

func parseTabs(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Tabs{}, nil }

func parseTab(c *cursor) (ast.Command, error) {
	action, arg, _ := parseSubAction(c, "switch")
	tab := ast.Tab{Action: ast.TabActionKind(action)}
	switch action {
	case "new":
		tab.URL = arg
	case "switch", "close":
		if n, err := strconv.Atoi(arg); err == nil {
			tab.Index = n
			tab.HasIdx = true
		}
	}
	return tab, nil
}

func parseLogin(c *cursor) (ast.Command, error) {
	opts := c.parseOptions()
	return ast.Login{
		User: optStr(opts, "user"), Pass: optStr(opts, "pass"),
		NoSubmit: optBool(opts, "no-submit"), Wait: optStr(opts, "wait"),
		Timeout: optStr(opts, "timeout"),
	}, nil
}

func parseSearch(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("search requires a query")
	}
	opts := c.parseOptions()
	return ast.Search{Query: valueText(t), Timeout: optStr(opts, "timeout")}, nil
}

func parseDismiss(c *cursor) (ast.Command, error) {
	var target *ast.Target
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		tg, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		target = &tg
	}
	c.parseOptions()
	return ast.Dismiss{Target: target}, nil
}

func parseAcceptCookies(c *cursor) (ast.Command, error) {
	var target *ast.Target
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		tg, err := c.parseTarget()
		if err != nil {
			return nil, err
		}
		target = &tg
	}
	c.parseOptions()
	return ast.AcceptCookies{Target: target}, nil
}

func parsePacks(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Packs{}, nil }

func parsePack(c *cursor) (ast.Command, error) {
	action, name, _ := parseSubAction(c, "list")
	return ast.PackAction{Action: action, Name: name}, nil
}

func parseIntents(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Intents{}, nil }

func parseDefine(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("define requires a name")
	}
	c.parseOptions()
	return ast.Define{Name: valueText(t)}, nil
}

func parseUndefine(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("undefine requires a name")
	}
	c.parseOptions()
	return ast.Undefine{Name: valueText(t)}, nil
}

func parseExport(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("export requires a name")
	}
	opts := c.parseOptions()
	return ast.Export{Name: valueText(t), Path: optStr(opts, "path")}, nil
}

func parseRun(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("run requires a name")
	}
	c.parseOptions()
	return ast.Run{Name: valueText(t)}, nil
}

func parseIntercept(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("intercept requires a pattern")
	}
	c.parseOptions()
	return ast.Intercept{Pattern: valueText(t)}, nil
}

func parseRequests(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Requests{}, nil }
func parseConsole(c *cursor) (ast.Command, error)  { c.parseOptions(); return ast.Console{}, nil }
func parseErrors(c *cursor) (ast.Command, error)   { c.parseOptions(); return ast.Errors{}, nil }
func parseFrames(c *cursor) (ast.Command, error)   { c.parseOptions(); return ast.Frames{}, nil }

func parseFrame(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("frame requires a selector")
	}
	c.parseOptions()
	return ast.FrameSwitch{Selector: valueText(t)}, nil
}

func parseDialog(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	accept := false
	if ok {
		accept = strings.EqualFold(valueText(t), "accept")
	}
	opts := c.parseOptions()
	return ast.Dialog{Accept: accept, Text: optStr(opts, "text")}, nil
}

func parseViewport(c *cursor) (ast.Command, error) {
	w, ok1 := c.next()
	h, ok2 := c.next()
	if !ok1 || !ok2 {
		return nil, errorf("viewport requires width and height")
	}
	wi, _ := strconv.Atoi(valueText(w))
	hi, _ := strconv.Atoi(valueText(h))
	c.parseOptions()
	return ast.ViewportSize{Width: wi, Height: hi}, nil
}

func parseDevice(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("device requires a name")
	}
	c.parseOptions()
	return ast.Device{Name: valueText(t)}, nil
}

func parseDevices(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Devices{}, nil }

func parseMedia(c *cursor) (ast.Command, error) {
	t, ok := c.next()
	if !ok {
		return nil, errorf("media requires a scheme")
	}
	c.parseOptions()
	return ast.Media{Scheme: valueText(t)}, nil
}

func parseTrace(c *cursor) (ast.Command, error) {
	action, _, _ := parseSubAction(c, "start")
	return ast.Trace{Action: action}, nil
}

func parseRecord(c *cursor) (ast.Command, error) {
	action, _, _ := parseSubAction(c, "start")
	return ast.Record{Action: action}, nil
}

func parseHighlight(c *cursor) (ast.Command, error) {
	target, err := c.parseTarget()
	if err != nil {
		return nil, err
	}
	c.parseOptions()
	return ast.Highlight{Target: target}, nil
}

func parsePDF(c *cursor) (ast.Command, error) {
	opts := c.parseOptions()
	return ast.PDF{Output: optStr(opts, "output")}, nil
}

func parseLearn(c *cursor) (ast.Command, error) {
	name := ""
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		name = valueText(t)
		c.next()
	}
	c.parseOptions()
	return ast.Learn{Name: name}, nil
}

func parseExit(c *cursor) (ast.Command, error) { c.parseOptions(); return ast.Exit{}, nil }

func parseHelp(c *cursor) (ast.Command, error) {
	topic := ""
	if t, ok := c.peek(); ok && t.kind != tokFlag {
		topic = valueText(t)
		c.next()
	}
	c.parseOptions()
	return ast.Help{Topic: topic}, nil
}
