// Package rodbackend implements backend.Backend on top of go-rod, driving a
// real Chrome-family browser over the DevTools protocol.
package rodbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"oryn/internal/oryn/backend"
	"oryn/internal/oryn/protocol"
)

// Config controls how the driver launches/connects to a browser.
type Config struct {
	DebuggerURL    string
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	NavTimeout     time.Duration
}

// DefaultConfig returns sane defaults for headless Chrome automation.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		NavTimeout:     30 * time.Second,
	}
}

// Backend drives a single active page; Tab switching reassigns current
// among the tracked tabs slice.
type Backend struct {
	backend.Unimplemented
	cfg     Config
	browser *rod.Browser
	tabs    []*rod.Page
	current int // index into tabs
}

func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) page() (*rod.Page, error) {
	if b.browser == nil || b.current >= len(b.tabs) {
		return nil, &backend.Error{Code: protocol.ErrNotReady, Message: "browser not launched"}
	}
	return b.tabs[b.current], nil
}

func (b *Backend) Launch(ctx context.Context) error {
	controlURL := b.cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(b.cfg.Headless).Launch()
		if err != nil {
			return &backend.Error{Code: protocol.ErrConnectionLost, Message: fmt.Sprintf("launch browser: %v", err)}
		}
		controlURL = url
	}

	br := rod.New().ControlURL(controlURL).Context(ctx)
	if err := br.Connect(); err != nil {
		return &backend.Error{Code: protocol.ErrConnectionLost, Message: fmt.Sprintf("connect: %v", err)}
	}
	page, err := br.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return &backend.Error{Code: protocol.ErrConnectionLost, Message: fmt.Sprintf("open page: %v", err)}
	}
	_ = (proto.EmulationSetDeviceMetricsOverride{
		Width: b.cfg.ViewportWidth, Height: b.cfg.ViewportHeight, DeviceScaleFactor: 1,
	}).Call(page)

	b.browser = br
	b.tabs = []*rod.Page{page}
	b.current = 0
	return nil
}

func (b *Backend) Close(ctx context.Context) error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	b.tabs = nil
	return err
}

func (b *Backend) IsReady(ctx context.Context) bool { return b.browser != nil && len(b.tabs) > 0 }

func (b *Backend) Navigate(ctx context.Context, url string) (backend.NavigationResult, error) {
	page, err := b.page()
	if err != nil {
		return backend.NavigationResult{}, err
	}
	if navErr := page.Context(ctx).Timeout(b.cfg.NavTimeout).Navigate(url); navErr != nil {
		return backend.NavigationResult{}, &backend.Error{Code: protocol.ErrNavigation, Message: navErr.Error()}
	}
	return b.navResult(page)
}

func (b *Backend) navResult(page *rod.Page) (backend.NavigationResult, error) {
	info, err := page.Info()
	if err != nil {
		return backend.NavigationResult{}, &backend.Error{Code: protocol.ErrNavigation, Message: err.Error()}
	}
	return backend.NavigationResult{URL: info.URL, Title: info.Title, Status: 200}, nil
}

func (b *Backend) GoBack(ctx context.Context) (backend.NavigationResult, error) {
	page, err := b.page()
	if err != nil {
		return backend.NavigationResult{}, err
	}
	if err := page.Context(ctx).NavigateBack(); err != nil {
		return backend.NavigationResult{}, &backend.Error{Code: protocol.ErrNavigation, Message: err.Error()}
	}
	return b.navResult(page)
}

func (b *Backend) GoForward(ctx context.Context) (backend.NavigationResult, error) {
	page, err := b.page()
	if err != nil {
		return backend.NavigationResult{}, err
	}
	if err := page.Context(ctx).NavigateForward(); err != nil {
		return backend.NavigationResult{}, &backend.Error{Code: protocol.ErrNavigation, Message: err.Error()}
	}
	return b.navResult(page)
}

func (b *Backend) Refresh(ctx context.Context, hard bool) (backend.NavigationResult, error) {
	page, err := b.page()
	if err != nil {
		return backend.NavigationResult{}, err
	}
	if err := page.Context(ctx).Reload(); err != nil {
		return backend.NavigationResult{}, &backend.Error{Code: protocol.ErrNavigation, Message: err.Error()}
	}
	return b.navResult(page)
}

func (b *Backend) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	page, err := b.page()
	if err != nil {
		return nil, err
	}
	data, shotErr := page.Context(ctx).Screenshot(fullPage, nil)
	if shotErr != nil {
		return nil, &backend.Error{Code: protocol.ErrScanner, Message: shotErr.Error()}
	}
	return data, nil
}

func (b *Backend) PDF(ctx context.Context) ([]byte, error) {
	page, err := b.page()
	if err != nil {
		return nil, err
	}
	reader, pdfErr := page.Context(ctx).PDF(&proto.PagePrintToPDF{})
	if pdfErr != nil {
		return nil, &backend.Error{Code: protocol.ErrScanner, Message: pdfErr.Error()}
	}
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, readErr := reader.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if readErr != nil {
			break
		}
	}
	return buf, nil
}

func (b *Backend) GetCookies(ctx context.Context) ([]protocol.Cookie, error) {
	page, err := b.page()
	if err != nil {
		return nil, err
	}
	res, getErr := proto.NetworkGetCookies{}.Call(page)
	if getErr != nil {
		return nil, &backend.Error{Code: protocol.ErrScanner, Message: getErr.Error()}
	}
	out := make([]protocol.Cookie, 0, len(res.Cookies))
	for _, c := range res.Cookies {
		out = append(out, protocol.Cookie{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Expires: int64(c.Expires), Secure: c.Secure, HTTPOnly: c.HTTPOnly, SameSite: string(c.SameSite),
		})
	}
	return out, nil
}

func (b *Backend) SetCookie(ctx context.Context, c protocol.Cookie) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	param := &proto.NetworkCookieParam{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path, Secure: c.Secure, HTTPOnly: c.HTTPOnly}
	if setErr := page.SetCookies([]*proto.NetworkCookieParam{param}); setErr != nil {
		return &backend.Error{Code: protocol.ErrScanner, Message: setErr.Error()}
	}
	return nil
}

func (b *Backend) DeleteCookie(ctx context.Context, name string) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	if delErr := (proto.NetworkDeleteCookies{Name: name}).Call(page); delErr != nil {
		return &backend.Error{Code: protocol.ErrScanner, Message: delErr.Error()}
	}
	return nil
}

func (b *Backend) ClearCookies(ctx context.Context) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	if clrErr := (proto.NetworkClearBrowserCookies{}).Call(page); clrErr != nil {
		return &backend.Error{Code: protocol.ErrScanner, Message: clrErr.Error()}
	}
	return nil
}

func (b *Backend) GetTabs(ctx context.Context) ([]protocol.TabInfo, error) {
	out := make([]protocol.TabInfo, 0, len(b.tabs))
	for i, p := range b.tabs {
		info, _ := p.Info()
		ti := protocol.TabInfo{Index: i, Active: i == b.current}
		if info != nil {
			ti.ID = string(info.TargetID)
			ti.URL = info.URL
			ti.Title = info.Title
		}
		out = append(out, ti)
	}
	return out, nil
}

func (b *Backend) NewTab(ctx context.Context, url string) error {
	if b.browser == nil {
		return &backend.Error{Code: protocol.ErrNotReady, Message: "browser not launched"}
	}
	if url == "" {
		url = "about:blank"
	}
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return &backend.Error{Code: protocol.ErrNavigation, Message: err.Error()}
	}
	b.tabs = append(b.tabs, page)
	b.current = len(b.tabs) - 1
	return nil
}

func (b *Backend) SwitchTab(ctx context.Context, index int) error {
	if index < 0 || index >= len(b.tabs) {
		return &backend.Error{Code: protocol.ErrInvalidRequest, Message: fmt.Sprintf("no tab at index %d", index)}
	}
	b.current = index
	return nil
}

func (b *Backend) CloseTab(ctx context.Context, index *int) error {
	idx := b.current
	if index != nil {
		idx = *index
	}
	if idx < 0 || idx >= len(b.tabs) {
		return &backend.Error{Code: protocol.ErrInvalidRequest, Message: fmt.Sprintf("no tab at index %d", idx)}
	}
	_ = b.tabs[idx].Close()
	b.tabs = append(b.tabs[:idx], b.tabs[idx+1:]...)
	if b.current >= len(b.tabs) {
		b.current = len(b.tabs) - 1
	}
	return nil
}

func (b *Backend) PressKey(ctx context.Context, keys []string) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if pressErr := page.Context(ctx).Keyboard.Press(keyCode(k)); pressErr != nil {
			return &backend.Error{Code: protocol.ErrScanner, Message: pressErr.Error()}
		}
	}
	return nil
}

func (b *Backend) Keydown(ctx context.Context, key string) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	return page.Context(ctx).Keyboard.Down(keyCode(key))
}

func (b *Backend) Keyup(ctx context.Context, key string) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	return page.Context(ctx).Keyboard.Up(keyCode(key))
}

func (b *Backend) SetViewport(ctx context.Context, width, height int) error {
	page, err := b.page()
	if err != nil {
		return err
	}
	return (proto.EmulationSetDeviceMetricsOverride{Width: width, Height: height, DeviceScaleFactor: 1}).Call(page)
}

func (b *Backend) Execute(ctx context.Context, script string) (interface{}, error) {
	page, err := b.page()
	if err != nil {
		return nil, err
	}
	res, evalErr := page.Context(ctx).Evaluate(&rod.EvalOptions{JS: script, ByValue: true, AwaitPromise: true})
	if evalErr != nil {
		return nil, &backend.Error{Code: protocol.ErrScript, Message: evalErr.Error()}
	}
	if res == nil || res.Value.Nil() {
		return nil, nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return res.Value.String(), nil
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return res.Value.String(), nil
	}
	return out, nil
}

var namedKeys = map[string]input.Key{
	"enter":     input.Enter,
	"tab":       input.Tab,
	"escape":    input.Escape,
	"esc":       input.Escape,
	"space":     input.Space,
	"backspace": input.Backspace,
	"delete":    input.Delete,
	"arrowup":   input.ArrowUp,
	"arrowdown": input.ArrowDown,
	"arrowleft": input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"up":        input.ArrowUp,
	"down":      input.ArrowDown,
	"left":      input.ArrowLeft,
	"right":     input.ArrowRight,
	"control":   input.ControlLeft,
	"ctrl":      input.ControlLeft,
	"shift":     input.ShiftLeft,
	"alt":       input.AltLeft,
	"meta":      input.MetaLeft,
}

func keyCode(name string) input.Key {
	if k, ok := namedKeys[strings.ToLower(name)]; ok {
		return k
	}
	if len(name) == 1 {
		return input.Key(name[0])
	}
	return 0
}
