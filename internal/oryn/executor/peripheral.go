package executor

import (
	"context"
	"fmt"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/obslog"
)

// runPeripheral handles the verbs translator.Translate always refuses:
// process control (exit, help) and the devtools-adjacent stubs (intercept,
// requests, console, errors, frames, device, devices, media, trace, record)
// that sit outside the backend's capability surface but still need to be
// accepted and answered directly by the REPL.
func (e *Executor) runPeripheral(ctx context.Context, cmd ast.Command) (string, bool) {
	switch c := cmd.(type) {
	case ast.Exit:
		return "Goodbye.", true
	case ast.Help:
		return helpText(c.Topic), true
	case ast.Learn:
		return e.runLearnToggle(c.Name), true
	case ast.Intercept:
		return fmt.Sprintf("Request interception is not supported by this backend (pattern %q ignored).", c.Pattern), true
	case ast.Requests:
		return "Request logging is not supported by this backend.", true
	case ast.Console:
		return "Console capture is not supported by this backend.", true
	case ast.Errors:
		return "Page error capture is not supported by this backend.", true
	case ast.Frames:
		return "Frame enumeration is not supported by this backend.", true
	case ast.Device:
		return fmt.Sprintf("Device emulation (%s) is not supported by this backend.", c.Name), true
	case ast.Devices:
		return "No emulated devices are registered.", true
	case ast.Media:
		return fmt.Sprintf("Media emulation (%s) is not supported by this backend.", c.Scheme), true
	case ast.Trace:
		return fmt.Sprintf("Tracing is not supported by this backend (%s ignored).", c.Action), true
	case ast.Record:
		return fmt.Sprintf("Recording is not supported by this backend (%s ignored).", c.Action), true
	}
	return "", false
}

func helpText(topic string) string {
	obslog.Get(obslog.CategoryExecutor).Debug("help requested: %q", topic)
	if topic == "" {
		return "oryn: a line-oriented command language for driving a browser.\n" +
			"Type a command verb (goto, click, type, observe, login, search, exit, ...).\n" +
			"Run 'help <verb>' for detail on a specific command."
	}
	return fmt.Sprintf("No extended help is registered for %q.", topic)
}
