// Package executor drives one line of input through the full pipeline —
// normalize, parse, resolve, translate, dispatch, format — and owns a soft
// resolver-context cache: it is refreshed on demand, not on every command,
// and retried exactly once on a resolution miss or stale-context signal.
package executor

import (
	"context"
	"fmt"
	"strings"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/backend"
	"oryn/internal/oryn/format"
	"oryn/internal/oryn/learner"
	"oryn/internal/oryn/mangle"
	"oryn/internal/oryn/normalizer"
	"oryn/internal/oryn/obslog"
	"oryn/internal/oryn/orynconfig"
	"oryn/internal/oryn/parser"
	"oryn/internal/oryn/protocol"
	"oryn/internal/oryn/resolver"
	"oryn/internal/oryn/session"
	"oryn/internal/oryn/translator"
)

// Executor holds the single piece of state carried between commands: the
// most recent scan, wrapped in its resolver context.
type Executor struct {
	backend   backend.Backend
	cfg       *orynconfig.Config
	rctx      *resolver.Context
	sessions  *session.Manager
	learn     *learner.Store
	patterns  *mangle.Engine
	recording *recordingState
}

// recordingState tracks an in-progress "learn" session: every successfully
// parsed line is appended until the matching define/learn stops it.
type recordingState struct {
	domain string
	name   string
	lines  []string
}

// New builds an Executor against the given backend. cfg may be nil, in
// which case orynconfig.DefaultConfig() applies.
func New(b backend.Backend, cfg *orynconfig.Config) *Executor {
	if cfg == nil {
		cfg = orynconfig.DefaultConfig()
	}
	engine, err := resolver.NewPatternEngine()
	if err != nil {
		obslog.Get(obslog.CategoryExecutor).Error("pattern engine unavailable: %v", err)
		engine = nil
	}
	return &Executor{
		backend:  b,
		cfg:      cfg,
		sessions: session.NewManager(),
		learn:    learner.NewStore(cfg.Learner.StorePath),
		patterns: engine,
	}
}

// LastScan exposes the cached scan, mainly for tests and the REPL's
// "observe"-less introspection.
func (e *Executor) LastScan() (protocol.ScanResult, bool) {
	if e.rctx == nil {
		return protocol.ScanResult{}, false
	}
	return e.rctx.ScanResult(), true
}

// setScan runs pattern detection over the fresh scan (when the pattern
// engine is available) before wrapping it in a resolver context, so
// login/search/modal/cookie-banner inference rules have patterns to match.
func (e *Executor) setScan(ctx context.Context, s protocol.ScanResult) {
	if e.patterns != nil {
		patterns, err := resolver.DetectPatterns(ctx, e.patterns, s)
		if err != nil {
			obslog.Get(obslog.CategoryExecutor).Warn("pattern detection failed: %v", err)
		} else {
			s.Patterns = patterns
		}
	}
	e.rctx = resolver.NewContext(s)
}

func (e *Executor) ensureContext(ctx context.Context) error {
	if e.rctx != nil {
		return nil
	}
	return e.refreshScan(ctx)
}

func (e *Executor) refreshScan(ctx context.Context) error {
	obslog.Get(obslog.CategoryExecutor).Info("refreshing scan context")
	resp, err := e.backend.ExecuteScanner(ctx, protocol.ScanAction{})
	if err != nil {
		return asTaxonomyError(err)
	}
	if !resp.IsOk() {
		return resp.Err()
	}
	if resp.Data == nil || resp.Data.Scan == nil {
		return protocol.NewError(protocol.ErrScanner, "scan response carried no scan payload")
	}
	e.setScan(ctx, *resp.Data.Scan)
	return nil
}

// ExecuteScript runs a batch of raw input lines (e.g. a script file or a
// multi-line paste) through the pipeline, concatenating per-command output
// with newlines.
func (e *Executor) ExecuteScript(ctx context.Context, rawLines []string) string {
	canon := normalizer.Lines(rawLines)
	cmds, errs := parser.Lines(canon)
	var out []string
	for _, err := range errs {
		out = append(out, "Parse Error: "+err.Error())
	}
	for _, cmd := range cmds {
		out = append(out, e.runCommand(ctx, cmd))
	}
	return strings.Join(out, "\n")
}

// ExecuteLine runs a single raw input line (the REPL's unit of work).
func (e *Executor) ExecuteLine(ctx context.Context, raw string) string {
	canon := normalizer.Line(raw)
	if strings.TrimSpace(canon) == "" {
		return ""
	}
	cmd, err := parser.Line(canon)
	if err != nil {
		return "Parse Error: " + err.Error()
	}
	e.recordLine(cmd, canon)
	return e.runCommand(ctx, cmd)
}

func (e *Executor) runCommand(ctx context.Context, cmd ast.Command) string {
	obslog.Get(obslog.CategoryExecutor).Debug("dispatching verb %s", cmd.Verb())

	if out, handled := e.runPeripheral(ctx, cmd); handled {
		return out
	}

	if isIntent(cmd) {
		out, err := e.runIntent(ctx, cmd)
		if err != nil {
			return formatErr(err)
		}
		return out
	}

	resolved, err := e.resolveWithRetry(ctx, cmd)
	if err != nil {
		return formatErr(err)
	}

	result, err := translator.Translate(resolved)
	if err != nil {
		return fmt.Sprintf("Translation Error: %v", err)
	}

	return e.dispatch(ctx, result)
}

// resolveWithRetry refreshes the scan context on first use, then retries
// resolution exactly once after a forced rescan on NoMatch or StaleContext.
func (e *Executor) resolveWithRetry(ctx context.Context, cmd ast.Command) (ast.Command, error) {
	if !commandNeedsResolution(cmd) {
		return cmd, nil
	}
	if err := e.ensureContext(ctx); err != nil {
		return nil, err
	}
	resolved, err := resolveTargets(e.rctx, cmd)
	if err == nil {
		return resolved, nil
	}
	if !isRetryable(err) {
		return nil, err
	}
	obslog.Get(obslog.CategoryExecutor).Info("resolution failed (%v); rescanning and retrying once", err)
	if err := e.refreshScan(ctx); err != nil {
		return nil, err
	}
	return resolveTargets(e.rctx, cmd)
}

func isRetryable(err error) bool {
	re, ok := err.(*resolver.ResolveError)
	if !ok {
		return false
	}
	return re.IsNoMatch() || re.IsStaleContext()
}

func formatErr(err error) string {
	if re, ok := err.(*resolver.ResolveError); ok {
		return fmt.Sprintf("Resolution Error: %s (hint: run 'observe' first)", re.Error())
	}
	if pe, ok := err.(*protocol.Error); ok {
		return pe.Error()
	}
	return err.Error()
}

// dispatch sends a translated Result to the right subsystem and formats the
// response for display.
func (e *Executor) dispatch(ctx context.Context, r translator.Result) string {
	switch {
	case r.Scanner != nil:
		resp, err := e.backend.ExecuteScanner(ctx, r.Scanner)
		if err != nil {
			return formatErr(asTaxonomyError(err))
		}
		if !resp.IsOk() {
			return formatErr(resp.Err())
		}
		if resp.Data != nil && resp.Data.Scan != nil {
			e.setScan(ctx, *resp.Data.Scan)
		}
		return format.Response(resp)
	case r.Browser != nil:
		return e.dispatchBrowser(ctx, r.Browser)
	case r.Session != nil:
		return e.dispatchSession(ctx, r.Session)
	case r.Meta != nil:
		return e.dispatchMeta(ctx, r.Meta)
	}
	return "Translation Error: empty result"
}
