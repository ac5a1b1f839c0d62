// Package backend defines the driver surface every browser implementation
// (real CDP session or in-memory fixture) must satisfy, and the structured
// error taxonomy the executor maps onto protocol.ErrorCode.
package backend

import (
	"context"
	"fmt"

	"oryn/internal/oryn/protocol"
)

// NavigationResult is the summary a navigation-producing call returns.
type NavigationResult struct {
	URL    string
	Title  string
	Status int
}

// Error is the structured error a Backend returns; Code maps directly onto
// protocol.ErrorCode via Code field reuse.
type Error struct {
	Code    protocol.ErrorCode
	Message string
	ID      int // element id, when applicable
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func notSupported(op string) error {
	return &Error{Code: protocol.ErrNotSupported, Message: op}
}

// Backend is the unified interface every driver (real browser, fixture)
// implements; optional capabilities default to NotSupported so callers can
// probe with errors.As instead of type-switching on concrete backends.
type Backend interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	IsReady(ctx context.Context) bool
	Navigate(ctx context.Context, url string) (NavigationResult, error)
	ExecuteScanner(ctx context.Context, action protocol.ScannerAction) (protocol.ScannerProtocolResponse, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)

	PDF(ctx context.Context) ([]byte, error)
	GetCookies(ctx context.Context) ([]protocol.Cookie, error)
	SetCookie(ctx context.Context, c protocol.Cookie) error
	DeleteCookie(ctx context.Context, name string) error
	ClearCookies(ctx context.Context) error
	GetTabs(ctx context.Context) ([]protocol.TabInfo, error)
	NewTab(ctx context.Context, url string) error
	SwitchTab(ctx context.Context, index int) error
	CloseTab(ctx context.Context, index *int) error
	GoBack(ctx context.Context) (NavigationResult, error)
	GoForward(ctx context.Context) (NavigationResult, error)
	Refresh(ctx context.Context, hard bool) (NavigationResult, error)
	PressKey(ctx context.Context, keys []string) error
	Keydown(ctx context.Context, key string) error
	Keyup(ctx context.Context, key string) error
	SetViewport(ctx context.Context, width, height int) error
	Execute(ctx context.Context, script string) (interface{}, error)
}

// Unimplemented is embedded by backends that only implement a subset of the
// optional capability surface; every method returns NotSupported.
type Unimplemented struct{}

func (Unimplemented) PDF(ctx context.Context) ([]byte, error) { return nil, notSupported("pdf") }
func (Unimplemented) GetCookies(ctx context.Context) ([]protocol.Cookie, error) {
	return nil, notSupported("get_cookies")
}
func (Unimplemented) SetCookie(ctx context.Context, c protocol.Cookie) error {
	return notSupported("set_cookie")
}
func (Unimplemented) DeleteCookie(ctx context.Context, name string) error {
	return notSupported("delete_cookie")
}
func (Unimplemented) ClearCookies(ctx context.Context) error { return notSupported("clear_cookies") }
func (Unimplemented) GetTabs(ctx context.Context) ([]protocol.TabInfo, error) {
	return nil, notSupported("get_tabs")
}
func (Unimplemented) NewTab(ctx context.Context, url string) error { return notSupported("new_tab") }
func (Unimplemented) SwitchTab(ctx context.Context, index int) error {
	return notSupported("switch_tab")
}
func (Unimplemented) CloseTab(ctx context.Context, index *int) error {
	return notSupported("close_tab")
}
func (Unimplemented) GoBack(ctx context.Context) (NavigationResult, error) {
	return NavigationResult{}, notSupported("go_back")
}
func (Unimplemented) GoForward(ctx context.Context) (NavigationResult, error) {
	return NavigationResult{}, notSupported("go_forward")
}
func (Unimplemented) Refresh(ctx context.Context, hard bool) (NavigationResult, error) {
	return NavigationResult{}, notSupported("refresh")
}
func (Unimplemented) PressKey(ctx context.Context, keys []string) error {
	return notSupported("press_key")
}
func (Unimplemented) Keydown(ctx context.Context, key string) error { return notSupported("keydown") }
func (Unimplemented) Keyup(ctx context.Context, key string) error   { return notSupported("keyup") }
func (Unimplemented) SetViewport(ctx context.Context, width, height int) error {
	return notSupported("viewport")
}
func (Unimplemented) Execute(ctx context.Context, script string) (interface{}, error) {
	return nil, notSupported("execute")
}
