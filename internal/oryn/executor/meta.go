package executor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/learner"
	"oryn/internal/oryn/obslog"
	"oryn/internal/oryn/protocol"
)

// currentDomain returns the host of the page the cached scan was taken
// from, falling back to "default" when there is no scan yet.
func (e *Executor) currentDomain() string {
	if e.rctx == nil {
		return "default"
	}
	u, err := url.Parse(e.rctx.ScanResult().Page.URL)
	if err != nil || u.Host == "" {
		return "default"
	}
	return u.Host
}

// recordLine appends a line to the in-progress recording, skipping the
// meta/peripheral verbs that manage recording itself.
func (e *Executor) recordLine(cmd ast.Command, canon string) {
	if e.recording == nil {
		return
	}
	switch cmd.(type) {
	case ast.Learn, ast.Define, ast.Undefine, ast.Exit, ast.Help:
		return
	}
	e.recording.lines = append(e.recording.lines, canon)
}

// runLearnToggle implements the "learn [name]" peripheral verb: starting a
// recording when none is active, and stopping+saving the current one
// otherwise.
func (e *Executor) runLearnToggle(name string) string {
	if e.recording == nil {
		if name == "" {
			name = "unnamed"
		}
		e.recording = &recordingState{domain: e.currentDomain(), name: name}
		return fmt.Sprintf("Recording started for %q on %s. Run 'learn' again to stop and save.", name, e.recording.domain)
	}
	rec := e.recording
	e.recording = nil
	if len(rec.lines) == 0 {
		return fmt.Sprintf("Recording %q stopped with no commands; nothing saved.", rec.name)
	}
	intent := learner.Intent{Name: rec.name, Domain: rec.domain, Lines: rec.lines}
	if err := e.learn.Save(intent); err != nil {
		return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
	}
	return fmt.Sprintf("Saved intent %q (%d commands) for %s", rec.name, len(rec.lines), rec.domain)
}

// dispatchMeta handles the pack/intent/learning management verbs, backed by
// the learner.Store.
func (e *Executor) dispatchMeta(ctx context.Context, a protocol.MetaAction) string {
	obslog.Get(obslog.CategoryExecutor).Debug("meta dispatch: %s", a.MetaActionKind())
	domain := e.currentDomain()
	switch act := a.(type) {
	case protocol.PacksListAction:
		intents, err := e.learn.List(domain)
		if err != nil {
			return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
		}
		return fmt.Sprintf("%s has %d recorded pack(s) (intents act as one-entry packs).", domain, len(intents))
	case protocol.PackActionAction:
		return fmt.Sprintf("Pack %s: %q acknowledged (intents are loaded from disk on demand; no separate pack state to toggle).", act.Action, act.Name)
	case protocol.IntentsListAction:
		intents, err := e.learn.List(domain)
		if err != nil {
			return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
		}
		return formatIntents(domain, intents)
	case protocol.DefineAction:
		if e.recording == nil || e.recording.name != act.Name {
			return fmt.Sprintf("No active recording named %q; use 'learn %s' first.", act.Name, act.Name)
		}
		return e.runLearnToggle(act.Name)
	case protocol.UndefineAction:
		if err := e.learn.Delete(domain, act.Name); err != nil {
			return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
		}
		return fmt.Sprintf("Removed intent %q for %s", act.Name, domain)
	case protocol.ExportAction:
		if err := e.learn.Export(domain, act.Name, act.Path); err != nil {
			return formatErr(protocol.NewError(protocol.ErrIO, err.Error()))
		}
		return fmt.Sprintf("Exported intent %q to %s", act.Name, act.Path)
	case protocol.RunAction:
		return e.runIntentByName(ctx, domain, act.Name)
	}
	return "Translation Error: unrecognized meta action"
}

func (e *Executor) runIntentByName(ctx context.Context, domain, name string) string {
	intent, err := e.learn.Load(domain, name)
	if err != nil {
		return formatErr(protocol.NewError(protocol.ErrInvalidRequest, err.Error()))
	}
	if err := e.ensureContext(ctx); err != nil {
		return formatErr(err)
	}
	return e.ExecuteScript(ctx, intent.Lines)
}

func formatIntents(domain string, intents []learner.Intent) string {
	if len(intents) == 0 {
		return fmt.Sprintf("No recorded intents for %s", domain)
	}
	var b strings.Builder
	for _, intent := range intents {
		fmt.Fprintf(&b, "%s (%d commands)\n", intent.Name, len(intent.Lines))
	}
	return strings.TrimRight(b.String(), "\n")
}
