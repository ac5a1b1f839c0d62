package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/backend"
	"oryn/internal/oryn/obslog"
	"oryn/internal/oryn/protocol"
	"oryn/internal/oryn/resolver"
)

// isIntent reports whether cmd is one of the five verbs the translator
// refuses to lower directly: the executor expands each into a sequence of
// ordinary commands against the current scan context first.
func isIntent(cmd ast.Command) bool {
	switch cmd.(type) {
	case ast.Login, ast.Search, ast.Dismiss, ast.AcceptCookies, ast.ScrollUntil:
		return true
	}
	return false
}

// runIntent expands and executes one of the five intent verbs, returning
// its display output. It always works from a freshly ensured scan context.
func (e *Executor) runIntent(ctx context.Context, cmd ast.Command) (string, error) {
	if err := e.ensureContext(ctx); err != nil {
		return "", err
	}
	switch c := cmd.(type) {
	case ast.Login:
		return e.runLogin(ctx, c)
	case ast.Search:
		return e.runSearch(ctx, c)
	case ast.Dismiss:
		return e.runDismissLike(ctx, c.Target, resolver.ReqDismissable, "dismissed")
	case ast.AcceptCookies:
		return e.runDismissLike(ctx, c.Target, resolver.ReqAcceptable, "accepted cookies")
	case ast.ScrollUntil:
		return e.runScrollUntil(ctx, c)
	}
	return "", fmt.Errorf("not an intent: %s", cmd.Verb())
}

// runLogin types the username/password and, unless NoSubmit, submits.
// Field targeting uses Role atomics scored against input type/autocomplete;
// the submit target comes from Submittable inference (the login pattern's
// submit member first) and is sent a SubmitAction.
func (e *Executor) runLogin(ctx context.Context, c ast.Login) (string, error) {
	userAtomic, err := resolver.Resolve(e.rctx, ast.Leaf(ast.Role("username")), resolver.ReqTypeable, resolver.StrategyPreferInput, false)
	if err != nil {
		userAtomic, err = resolver.Resolve(e.rctx, ast.Leaf(ast.Role("email")), resolver.ReqTypeable, resolver.StrategyPreferInput, false)
		if err != nil {
			return "", fmt.Errorf("login: could not find a username/email field: %w", err)
		}
	}
	if err := e.dispatchScanner(ctx, protocol.TypeAction{ID: userAtomic.ID, Text: c.User, Clear: true}); err != nil {
		return "", err
	}

	passAtomic, err := resolver.Resolve(e.rctx, ast.Leaf(ast.Role("password")), resolver.ReqTypeable, resolver.StrategyPreferInput, false)
	if err != nil {
		return "", fmt.Errorf("login: could not find a password field: %w", err)
	}
	if err := e.dispatchScanner(ctx, protocol.TypeAction{ID: passAtomic.ID, Text: c.Pass, Clear: true}); err != nil {
		return "", err
	}

	if c.NoSubmit {
		return "Logged in fields filled (submit skipped)", nil
	}

	submitID, err := resolver.Resolve(e.rctx, ast.Leaf(ast.Infer()), resolver.ReqSubmittable, resolver.StrategyBest, true)
	if err != nil {
		return "", fmt.Errorf("login: could not find a submit control: %w", err)
	}
	if err := e.dispatchScanner(ctx, protocol.SubmitAction{ID: submitID.ID}); err != nil {
		return "", err
	}
	return "Login submitted", nil
}

// runSearch types the query into the search-pattern input and submits it.
func (e *Executor) runSearch(ctx context.Context, c ast.Search) (string, error) {
	searchAtomic, err := resolver.Resolve(e.rctx, ast.Leaf(ast.Role("search")), resolver.ReqTypeable, resolver.StrategyPreferInput, false)
	if err != nil {
		return "", fmt.Errorf("search: could not find a search field: %w", err)
	}
	if err := e.dispatchScanner(ctx, protocol.TypeAction{ID: searchAtomic.ID, Text: c.Query, Clear: true, Submit: true}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Searched for %q", c.Query), nil
}

// runDismissLike resolves a dismissable/acceptable target (falling back to
// inference when none was supplied) and clicks it.
func (e *Executor) runDismissLike(ctx context.Context, target *ast.Target, req resolver.Requirement, verb string) (string, error) {
	var a ast.Atomic
	var err error
	if target != nil {
		a, err = resolver.Resolve(e.rctx, *target, req, resolver.StrategyBest, false)
	} else {
		a, err = resolver.Resolve(e.rctx, ast.Leaf(ast.Infer()), req, resolver.StrategyBest, true)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", verb, err)
	}
	if err := e.dispatchScanner(ctx, protocol.ClickAction{ID: a.ID, Button: "left"}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (element %d)", capitalize(verb), a.ID), nil
}

// runScrollUntil scrolls the page downward, rescanning between attempts,
// until the target text/role resolves or the timeout elapses.
func (e *Executor) runScrollUntil(ctx context.Context, c ast.ScrollUntil) (string, error) {
	timeout := 10 * time.Second
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout + "ms"); err == nil {
			timeout = d
		}
	}
	deadline := time.Now().Add(timeout)
	for {
		if a, err := resolver.Resolve(e.rctx, c.Target, resolver.ReqAny, resolver.StrategyBest, false); err == nil {
			if err := e.dispatchScanner(ctx, protocol.ScrollAction{ID: &a.ID, Direction: "down", Amount: "element"}); err != nil {
				return "", err
			}
			return fmt.Sprintf("Scrolled %s into view (element %d)", c.Target.String(), a.ID), nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("scroll until %s: timed out after %s", c.Target.String(), timeout)
		}
		if err := e.dispatchScanner(ctx, protocol.ScrollAction{Direction: "down", Amount: "page"}); err != nil {
			return "", err
		}
		if err := e.refreshScan(ctx); err != nil {
			return "", err
		}
	}
}

// dispatchScanner sends a single ScannerAction, updates the scan context if
// the response carries one, and surfaces a structured error otherwise.
func (e *Executor) dispatchScanner(ctx context.Context, action protocol.ScannerAction) error {
	obslog.Get(obslog.CategoryExecutor).Debug("intent scanner dispatch: %s", action.ScannerActionKind())
	resp, err := e.backend.ExecuteScanner(ctx, action)
	if err != nil {
		return asTaxonomyError(err)
	}
	if !resp.IsOk() {
		return resp.Err()
	}
	if resp.Data != nil && resp.Data.Scan != nil {
		e.setScan(ctx, *resp.Data.Scan)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func asTaxonomyError(err error) error {
	if be, ok := err.(*backend.Error); ok {
		return protocol.NewError(be.Code, be.Message)
	}
	return protocol.NewError(protocol.ErrInternal, err.Error())
}
