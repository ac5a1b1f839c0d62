// Package fakebackend provides an in-memory backend.Backend fixture for
// resolver/executor/translator tests: fast, deterministic, no real browser
// underneath.
package fakebackend

import (
	"context"
	"fmt"
	"sync"

	"oryn/internal/oryn/backend"
	"oryn/internal/oryn/protocol"
)

// Backend is a scriptable in-memory driver: tests seed a ScanResult (and
// optionally queue canned responses/errors) and assert on the calls recorded
// in Log.
type Backend struct {
	backend.Unimplemented

	mu sync.Mutex

	ready bool
	nav   backend.NavigationResult

	scan       protocol.ScanResult
	nextScan   *protocol.ScanResult // swapped in on the next ExecuteScanner(ScanAction)
	actionErrs map[string]*backend.Error

	cookies []protocol.Cookie
	tabs    []protocol.TabInfo

	// Log records every ExecuteScanner/Navigate call in order, for
	// assertions in executor/translator tests.
	Log []string
}

// New returns a ready fixture backend with an empty initial scan.
func New() *Backend {
	return &Backend{
		ready:      true,
		actionErrs: make(map[string]*backend.Error),
		tabs:       []protocol.TabInfo{{Index: 0, Active: true, URL: "about:blank"}},
	}
}

// SeedScan installs the ScanResult ExecuteScanner(ScanAction) will return on
// its next call and every call after, until SeedScan is called again.
func (b *Backend) SeedScan(s protocol.ScanResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scan = s
}

// QueueScan installs a one-shot ScanResult for the very next scan only,
// useful for exercising the executor's rescan-and-retry path.
func (b *Backend) QueueScan(s protocol.ScanResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextScan = &s
}

// FailNext makes the next call to the named scanner action kind (e.g.
// "click") return the given structured error instead of succeeding.
func (b *Backend) FailNext(kind string, err *backend.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actionErrs[kind] = err
}

func (b *Backend) Launch(ctx context.Context) error { b.ready = true; return nil }
func (b *Backend) Close(ctx context.Context) error  { b.ready = false; return nil }
func (b *Backend) IsReady(ctx context.Context) bool { return b.ready }

func (b *Backend) Navigate(ctx context.Context, url string) (backend.NavigationResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Log = append(b.Log, "navigate:"+url)
	b.nav = backend.NavigationResult{URL: url, Title: "", Status: 200}
	b.scan.Page.URL = url
	return b.nav, nil
}

func (b *Backend) GoBack(ctx context.Context) (backend.NavigationResult, error)    { return b.nav, nil }
func (b *Backend) GoForward(ctx context.Context) (backend.NavigationResult, error) { return b.nav, nil }
func (b *Backend) Refresh(ctx context.Context, hard bool) (backend.NavigationResult, error) {
	return b.nav, nil
}

func (b *Backend) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return []byte("fake-screenshot"), nil
}

func (b *Backend) GetCookies(ctx context.Context) ([]protocol.Cookie, error) { return b.cookies, nil }
func (b *Backend) SetCookie(ctx context.Context, c protocol.Cookie) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookies = append(b.cookies, c)
	return nil
}
func (b *Backend) DeleteCookie(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.cookies[:0]
	for _, c := range b.cookies {
		if c.Name != name {
			out = append(out, c)
		}
	}
	b.cookies = out
	return nil
}
func (b *Backend) ClearCookies(ctx context.Context) error { b.cookies = nil; return nil }

func (b *Backend) GetTabs(ctx context.Context) ([]protocol.TabInfo, error) { return b.tabs, nil }
func (b *Backend) NewTab(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tabs {
		b.tabs[i].Active = false
	}
	b.tabs = append(b.tabs, protocol.TabInfo{Index: len(b.tabs), Active: true, URL: url})
	return nil
}
func (b *Backend) SwitchTab(ctx context.Context, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.tabs) {
		return &backend.Error{Code: protocol.ErrInvalidRequest, Message: "no such tab"}
	}
	for i := range b.tabs {
		b.tabs[i].Active = i == index
	}
	return nil
}
func (b *Backend) CloseTab(ctx context.Context, index *int) error { return nil }

func (b *Backend) PressKey(ctx context.Context, keys []string) error { return nil }
func (b *Backend) Keydown(ctx context.Context, key string) error     { return nil }
func (b *Backend) Keyup(ctx context.Context, key string) error       { return nil }
func (b *Backend) SetViewport(ctx context.Context, width, height int) error { return nil }
func (b *Backend) Execute(ctx context.Context, script string) (interface{}, error) {
	return nil, nil
}

// ExecuteScanner dispatches against the seeded ScanResult: scans return it
// (or the one-shot queued replacement), every other action succeeds unless
// FailNext queued an error for that action kind.
func (b *Backend) ExecuteScanner(ctx context.Context, action protocol.ScannerAction) (protocol.ScannerProtocolResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kind := action.ScannerActionKind()
	b.Log = append(b.Log, "scanner:"+kind)

	if err, ok := b.actionErrs[kind]; ok {
		delete(b.actionErrs, kind)
		return protocol.FromError(protocol.NewError(err.Code, err.Message)), nil
	}

	if _, isScan := action.(protocol.ScanAction); isScan {
		if b.nextScan != nil {
			s := *b.nextScan
			b.nextScan = nil
			b.scan = s
			return protocol.OkScan(s), nil
		}
		return protocol.OkScan(b.scan), nil
	}

	if id, ok := elementID(action); ok {
		if !b.hasElement(id) {
			return protocol.FromError(protocol.NewError(protocol.ErrElementNotFound, fmt.Sprintf("no element with id %d", id))), nil
		}
	}
	return protocol.OkAction(protocol.ActionResult{Success: true}), nil
}

func (b *Backend) hasElement(id int) bool {
	for _, e := range b.scan.Elements {
		if e.ID == id {
			return true
		}
	}
	return false
}

// elementID extracts the target element id from the actions that carry one,
// so the fixture can fail ErrElementNotFound realistically.
func elementID(action protocol.ScannerAction) (int, bool) {
	switch a := action.(type) {
	case protocol.ClickAction:
		return a.ID, true
	case protocol.TypeAction:
		return a.ID, true
	case protocol.ClearAction:
		return a.ID, true
	case protocol.SelectAction:
		return a.ID, true
	case protocol.CheckAction:
		return a.ID, true
	case protocol.UncheckAction:
		return a.ID, true
	case protocol.HoverAction:
		return a.ID, true
	case protocol.FocusAction:
		return a.ID, true
	case protocol.SubmitAction:
		return a.ID, true
	case protocol.BoxAction:
		return a.ID, true
	case protocol.HighlightAction:
		return a.ID, true
	case protocol.ScrollAction:
		if a.ID != nil {
			return *a.ID, true
		}
	case protocol.TextAction:
		if a.ID != nil {
			return *a.ID, true
		}
	}
	return 0, false
}

var _ backend.Backend = (*Backend)(nil)
