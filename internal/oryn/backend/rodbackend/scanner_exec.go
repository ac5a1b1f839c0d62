package rodbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"oryn/internal/oryn/backend"
	"oryn/internal/oryn/protocol"
)

// rawElement mirrors the JSON shape scanScript emits for a single element.
type rawElement struct {
	ID          int               `json:"id"`
	ElementType string            `json:"element_type"`
	Role        string            `json:"role"`
	Text        string            `json:"text"`
	Label       string            `json:"label"`
	Value       string            `json:"value"`
	Placeholder string            `json:"placeholder"`
	Selector    string            `json:"selector"`
	XPath       string            `json:"xpath"`
	Rect        protocol.Rect     `json:"rect"`
	Attributes  map[string]string `json:"attributes"`
	State       protocol.ElementState `json:"state"`
	Children    []int             `json:"children"`
}

// ExecuteScanner lowers a single ScannerAction onto the live page: a scan
// walks the DOM via scanScript, everything else locates its element by the
// data-oryn-id attribute the scan stamped and performs the corresponding
// DOM operation in-page.
func (b *Backend) ExecuteScanner(ctx context.Context, action protocol.ScannerAction) (protocol.ScannerProtocolResponse, error) {
	page, err := b.page()
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	page = page.Context(ctx)

	switch a := action.(type) {
	case protocol.ScanAction:
		return b.runScan(page, a)
	case protocol.ClickAction:
		return b.runElementScript(page, a.ID, fmt.Sprintf(`el.dispatchEvent(new MouseEvent('%s', {bubbles:true})); el.click && el.click();`, clickKind(a)))
	case protocol.TypeAction:
		return b.runType(page, a)
	case protocol.ClearAction:
		return b.runElementScript(page, a.ID, `el.value = ''; el.dispatchEvent(new Event('input', {bubbles:true}));`)
	case protocol.SelectAction:
		return b.runSelect(page, a)
	case protocol.CheckAction:
		return b.runElementScript(page, a.ID, `el.checked = true; el.dispatchEvent(new Event('change', {bubbles:true}));`)
	case protocol.UncheckAction:
		return b.runElementScript(page, a.ID, `el.checked = false; el.dispatchEvent(new Event('change', {bubbles:true}));`)
	case protocol.HoverAction:
		return b.runElementScript(page, a.ID, `el.dispatchEvent(new MouseEvent('mouseover', {bubbles:true}));`)
	case protocol.FocusAction:
		return b.runElementScript(page, a.ID, `el.focus();`)
	case protocol.ScrollAction:
		return b.runScroll(page, a)
	case protocol.SubmitAction:
		return b.runElementScript(page, a.ID, `if (el.form) { el.form.requestSubmit ? el.form.requestSubmit() : el.form.submit(); } else if (el.requestSubmit) { el.requestSubmit(); }`)
	case protocol.WaitAction:
		return b.runWait(page, a)
	case protocol.ExtractAction:
		return b.runExtract(page, a)
	case protocol.ExecuteAction:
		return b.runExecute(page, a)
	case protocol.HTMLAction:
		return b.runHTML(page, a)
	case protocol.TextAction:
		return b.runText(page, a)
	case protocol.BoxAction:
		return b.runBox(page, a)
	case protocol.HighlightAction:
		return b.runElementScript(page, a.ID, `el.style.outline = '3px solid red';`)
	}
	return protocol.FromError(protocol.NewError(protocol.ErrUnknownCommand, fmt.Sprintf("unsupported scanner action %q", action.ScannerActionKind()))), nil
}

func clickKind(a protocol.ClickAction) string {
	if a.Double {
		return "dblclick"
	}
	return "click"
}

func (b *Backend) evalJSON(page *rod.Page, js string, args ...interface{}) (json.RawMessage, error) {
	res, err := page.Eval(js, args...)
	if err != nil {
		return nil, &backend.Error{Code: protocol.ErrScript, Message: err.Error()}
	}
	if res == nil || res.Value.Nil() {
		return nil, nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, &backend.Error{Code: protocol.ErrScript, Message: err.Error()}
	}
	return raw, nil
}

func (b *Backend) runScan(page *rod.Page, a protocol.ScanAction) (protocol.ScannerProtocolResponse, error) {
	raw, err := b.evalJSON(page, scanScript, a.IncludeHidden)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	var elements []rawElement
	if raw != nil {
		if jsonErr := json.Unmarshal(raw, &elements); jsonErr != nil {
			return protocol.FromError(protocol.NewError(protocol.ErrSerialization, jsonErr.Error())), nil
		}
	}
	if a.MaxElements != nil && len(elements) > *a.MaxElements {
		elements = elements[:*a.MaxElements]
	}

	info, _ := page.Info()
	page2 := protocol.Page{}
	if info != nil {
		page2.URL = info.URL
		page2.Title = info.Title
	}

	scan := protocol.ScanResult{
		Page:     page2,
		Elements: make([]protocol.Element, len(elements)),
		Stats:    protocol.Stats{Total: len(elements), Scanned: len(elements)},
	}
	for i, el := range elements {
		scan.Elements[i] = protocol.Element{
			ID: el.ID, ElementType: el.ElementType, Role: el.Role, Text: el.Text,
			Label: el.Label, Value: el.Value, Placeholder: el.Placeholder,
			Selector: el.Selector, XPath: el.XPath, Rect: el.Rect,
			Attributes: el.Attributes, State: el.State, Children: el.Children,
		}
	}
	return protocol.OkScan(scan), nil
}

// runElementScript evaluates a snippet with `el` bound to the element
// carrying the given data-oryn-id.
func (b *Backend) runElementScript(page *rod.Page, id int, body string) (protocol.ScannerProtocolResponse, error) {
	js := fmt.Sprintf(`(id) => { const el = document.querySelector('[data-oryn-id="' + id + '"]'); if (!el) return {found:false}; %s return {found:true}; }`, body)
	raw, err := b.evalJSON(page, js, id)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	if !foundFrom(raw) {
		return protocol.FromError(protocol.NewError(protocol.ErrElementNotFound, fmt.Sprintf("no element with id %d", id))), nil
	}
	return protocol.OkAction(protocol.ActionResult{Success: true}), nil
}

func foundFrom(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var v struct {
		Found bool `json:"found"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v.Found
}

func (b *Backend) runType(page *rod.Page, a protocol.TypeAction) (protocol.ScannerProtocolResponse, error) {
	body := `
		if (el.isContentEditable) { if (clear) { el.innerText = ''; } el.innerText += text; }
		else { if (clear) { el.value = ''; } el.value += text; }
		el.dispatchEvent(new Event('input', {bubbles:true}));
		if (submitAfter && el.form) { el.form.requestSubmit ? el.form.requestSubmit() : el.form.submit(); }
	`
	js := fmt.Sprintf(`(id, text, clear, submitAfter) => { const el = document.querySelector('[data-oryn-id="' + id + '"]'); if (!el) return {found:false}; %s return {found:true}; }`, body)
	raw, err := b.evalJSON(page, js, a.ID, a.Text, a.Clear, a.Submit)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	if !foundFrom(raw) {
		return protocol.FromError(protocol.NewError(protocol.ErrElementNotFound, fmt.Sprintf("no element with id %d", a.ID))), nil
	}
	return protocol.OkAction(protocol.ActionResult{Success: true}), nil
}

func (b *Backend) runSelect(page *rod.Page, a protocol.SelectAction) (protocol.ScannerProtocolResponse, error) {
	js := `(id, index, label) => {
		const el = document.querySelector('[data-oryn-id="' + id + '"]');
		if (!el) return {found:false};
		if (index !== null) { el.selectedIndex = index; }
		else if (label) {
			for (let i = 0; i < el.options.length; i++) {
				if (el.options[i].text === label || el.options[i].value === label) { el.selectedIndex = i; break; }
			}
		}
		el.dispatchEvent(new Event('change', {bubbles:true}));
		return {found:true};
	}`
	var idx interface{}
	if a.Index != nil {
		idx = *a.Index
	}
	raw, err := b.evalJSON(page, js, a.ID, idx, a.Label)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	if !foundFrom(raw) {
		return protocol.FromError(protocol.NewError(protocol.ErrElementNotFound, fmt.Sprintf("no element with id %d", a.ID))), nil
	}
	return protocol.OkAction(protocol.ActionResult{Success: true}), nil
}

func (b *Backend) runScroll(page *rod.Page, a protocol.ScrollAction) (protocol.ScannerProtocolResponse, error) {
	if a.ID != nil {
		js := `(id) => { const el = document.querySelector('[data-oryn-id="' + id + '"]'); if (!el) return {found:false}; el.scrollIntoView({block:'center'}); return {found:true}; }`
		raw, err := b.evalJSON(page, js, *a.ID)
		if err != nil {
			return protocol.ScannerProtocolResponse{}, err
		}
		if !foundFrom(raw) {
			return protocol.FromError(protocol.NewError(protocol.ErrElementNotFound, fmt.Sprintf("no element with id %d", *a.ID))), nil
		}
		return protocol.OkAction(protocol.ActionResult{Success: true}), nil
	}
	dy := "window.innerHeight * 0.8"
	if a.Direction == "up" {
		dy = "-window.innerHeight * 0.8"
	}
	if a.Amount == "bottom" {
		dy = "document.body.scrollHeight"
	}
	js := fmt.Sprintf(`() => { window.scrollBy(0, %s); return {found:true}; }`, dy)
	if _, err := b.evalJSON(page, js); err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	return protocol.OkAction(protocol.ActionResult{Success: true}), nil
}

func (b *Backend) runWait(page *rod.Page, a protocol.WaitAction) (protocol.ScannerProtocolResponse, error) {
	timeout := time.Duration(a.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	deadline := time.Now().Add(timeout)

	poll := func(js string, args ...interface{}) bool {
		raw, err := b.evalJSON(page, js, args...)
		if err != nil || raw == nil {
			return false
		}
		var ok bool
		_ = json.Unmarshal(raw, &ok)
		return ok
	}

	switch a.Condition {
	case "load", "ready", "navigation":
		if err := page.WaitLoad(); err != nil {
			return protocol.FromError(protocol.NewError(protocol.ErrTimeout, err.Error())), nil
		}
	case "idle":
		if err := page.WaitStable(timeout); err != nil {
			return protocol.FromError(protocol.NewError(protocol.ErrTimeout, err.Error())), nil
		}
	case "visible", "exists":
		for !poll(`(sel) => !!document.querySelector(sel) && document.querySelector(sel).offsetParent !== null`, a.Selector) {
			if time.Now().After(deadline) {
				return protocol.FromError(protocol.NewError(protocol.ErrTimeout, fmt.Sprintf("timed out waiting for %s", a.Selector))), nil
			}
			time.Sleep(200 * time.Millisecond)
		}
	case "hidden", "gone":
		for poll(`(sel) => !!document.querySelector(sel) && document.querySelector(sel).offsetParent !== null`, a.Selector) {
			if time.Now().After(deadline) {
				return protocol.FromError(protocol.NewError(protocol.ErrTimeout, fmt.Sprintf("timed out waiting for %s to disappear", a.Selector))), nil
			}
			time.Sleep(200 * time.Millisecond)
		}
	case "url":
		for !poll(`(want) => window.location.href.includes(want)`, a.Text) {
			if time.Now().After(deadline) {
				return protocol.FromError(protocol.NewError(protocol.ErrTimeout, fmt.Sprintf("timed out waiting for url matching %q", a.Text))), nil
			}
			time.Sleep(200 * time.Millisecond)
		}
	case "items":
		for !poll(`(sel) => document.querySelectorAll(sel).length > 0`, a.Selector) {
			if time.Now().After(deadline) {
				return protocol.FromError(protocol.NewError(protocol.ErrTimeout, fmt.Sprintf("timed out waiting for items %s", a.Selector))), nil
			}
			time.Sleep(200 * time.Millisecond)
		}
	}
	return protocol.OkAction(protocol.ActionResult{Success: true}), nil
}

func (b *Backend) runExtract(page *rod.Page, a protocol.ExtractAction) (protocol.ScannerProtocolResponse, error) {
	js := `(sel, what) => {
		const els = sel ? Array.from(document.querySelectorAll(sel)) : [document.body];
		return els.map((el) => {
			if (what === 'html') return el.outerHTML;
			if (what === 'attr') return el.getAttribute('value') || '';
			return (el.innerText || '').trim();
		});
	}`
	raw, err := b.evalJSON(page, js, a.Selector, a.What)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	var values []string
	if raw != nil {
		_ = json.Unmarshal(raw, &values)
	}
	return protocol.Ok(&protocol.ScannerData{Value: values}), nil
}

func (b *Backend) runExecute(page *rod.Page, a protocol.ExecuteAction) (protocol.ScannerProtocolResponse, error) {
	res, err := page.Eval(fmt.Sprintf("() => { return (function(){ %s })(); }", a.Script))
	if err != nil {
		return protocol.FromError(protocol.NewError(protocol.ErrScript, err.Error())), nil
	}
	var value interface{}
	if res != nil && !res.Value.Nil() {
		raw, marshalErr := res.Value.MarshalJSON()
		if marshalErr == nil {
			_ = json.Unmarshal(raw, &value)
		}
	}
	return protocol.Ok(&protocol.ScannerData{Value: value}), nil
}

func (b *Backend) runHTML(page *rod.Page, a protocol.HTMLAction) (protocol.ScannerProtocolResponse, error) {
	js := `(sel) => { const el = sel ? document.querySelector(sel) : document.documentElement; return el ? el.outerHTML : ''; }`
	raw, err := b.evalJSON(page, js, a.Selector)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	var html string
	if raw != nil {
		_ = json.Unmarshal(raw, &html)
	}
	return protocol.Ok(&protocol.ScannerData{Value: html}), nil
}

func (b *Backend) runText(page *rod.Page, a protocol.TextAction) (protocol.ScannerProtocolResponse, error) {
	var js string
	var args []interface{}
	if a.ID != nil {
		js = `(id) => { const el = document.querySelector('[data-oryn-id="' + id + '"]'); return el ? (el.innerText || '').trim() : null; }`
		args = []interface{}{*a.ID}
	} else {
		js = `(sel) => { const el = sel ? document.querySelector(sel) : document.body; return el ? (el.innerText || '').trim() : ''; }`
		args = []interface{}{a.Selector}
	}
	raw, err := b.evalJSON(page, js, args...)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	var text string
	if raw != nil {
		_ = json.Unmarshal(raw, &text)
	}
	return protocol.Ok(&protocol.ScannerData{Value: text}), nil
}

func (b *Backend) runBox(page *rod.Page, a protocol.BoxAction) (protocol.ScannerProtocolResponse, error) {
	js := `(id) => { const el = document.querySelector('[data-oryn-id="' + id + '"]'); if (!el) return null; const r = el.getBoundingClientRect(); return {x:r.x,y:r.y,w:r.width,h:r.height}; }`
	raw, err := b.evalJSON(page, js, a.ID)
	if err != nil {
		return protocol.ScannerProtocolResponse{}, err
	}
	if raw == nil {
		return protocol.FromError(protocol.NewError(protocol.ErrElementNotFound, fmt.Sprintf("no element with id %d", a.ID))), nil
	}
	var rect protocol.Rect
	_ = json.Unmarshal(raw, &rect)
	return protocol.Ok(&protocol.ScannerData{Value: rect}), nil
}
