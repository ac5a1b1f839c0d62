package executor

import (
	"context"
	"fmt"
	"os"

	"oryn/internal/oryn/format"
	"oryn/internal/oryn/obslog"
	"oryn/internal/oryn/protocol"
)

// dispatchBrowser sends a BrowserAction straight to the backend driver:
// these bypass the scanner entirely.
func (e *Executor) dispatchBrowser(ctx context.Context, a protocol.BrowserAction) string {
	obslog.Get(obslog.CategoryExecutor).Debug("browser dispatch: %s", a.BrowserActionKind())
	switch act := a.(type) {
	case protocol.GotoAction:
		nav, err := e.backend.Navigate(ctx, act.URL)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Navigated to %s %q", nav.URL, nav.Title)
	case protocol.BackAction:
		nav, err := e.backend.GoBack(ctx)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Back to %s %q", nav.URL, nav.Title)
	case protocol.ForwardAction:
		nav, err := e.backend.GoForward(ctx)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Forward to %s %q", nav.URL, nav.Title)
	case protocol.RefreshAction:
		nav, err := e.backend.Refresh(ctx, act.Hard)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Refreshed %s %q", nav.URL, nav.Title)
	case protocol.ScreenshotAction:
		data, err := e.backend.Screenshot(ctx, act.FullPage)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return e.writeBinary(act.Output, "screenshot.png", data)
	case protocol.PDFAction:
		data, err := e.backend.PDF(ctx)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return e.writeBinary(act.Output, "page.pdf", data)
	case protocol.PressKeyAction:
		if err := e.backend.PressKey(ctx, act.Keys); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Pressed %v", act.Keys)
	case protocol.KeydownAction:
		if err := e.backend.Keydown(ctx, act.Key); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Key down %s", act.Key)
	case protocol.KeyupAction:
		if err := e.backend.Keyup(ctx, act.Key); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Key up %s", act.Key)
	case protocol.ViewportAction:
		if err := e.backend.SetViewport(ctx, act.Width, act.Height); err != nil {
			return formatErr(asTaxonomyError(err))
		}
		return fmt.Sprintf("Viewport set to %dx%d", act.Width, act.Height)
	case protocol.FrameSwitchAction:
		return formatErr(protocol.NewError(protocol.ErrNotSupported, "frame switching is not part of the backend capability surface"))
	case protocol.DialogAction:
		return formatErr(protocol.NewError(protocol.ErrNotSupported, "dialog handling is not part of the backend capability surface"))
	}
	return "Translation Error: unrecognized browser action"
}

func (e *Executor) writeBinary(output, fallbackName string, data []byte) string {
	path := output
	if path == "" {
		path = fallbackName
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
	}
	return format.Action(protocol.ActionResult{Success: true, Message: fmt.Sprintf("wrote %d bytes to %s", len(data), path)})
}
