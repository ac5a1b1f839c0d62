package learner

import (
	"fmt"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/normalizer"
	"oryn/internal/oryn/parser"
	"oryn/internal/oryn/resolver"
)

// VerificationError reports that a recorded intent's targets no longer
// resolve against the current page, grounded on oryn-common's
// VerifierContext.resolve_target_exists.
type VerificationError struct {
	Line   string
	Reason error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("intent line %q no longer resolves: %v", e.Line, e.Reason)
}

func (e *VerificationError) Unwrap() error { return e.Reason }

// Verify checks that every Target an intent's recorded lines carry still
// resolves against ctx, without executing anything. It reports the first
// line whose target cannot be found; a nil return means the intent is safe
// to replay as-is.
func Verify(ctx *resolver.Context, intent Intent) error {
	for _, line := range intent.Lines {
		canon := normalizer.Line(line)
		if canon == "" {
			continue
		}
		cmd, err := parser.Line(canon)
		if err != nil {
			return &VerificationError{Line: line, Reason: err}
		}
		if t, req, ok := targetRequirement(cmd); ok {
			if _, err := resolver.Resolve(ctx, t, req, resolver.StrategyBest, false); err != nil {
				return &VerificationError{Line: line, Reason: err}
			}
		}
	}
	return nil
}

// targetRequirement extracts the Target a command needs resolved and the
// requirement it should satisfy, mirroring the resolution table the
// executor itself applies; composite/peripheral verbs have no single
// target to check and are skipped.
func targetRequirement(cmd ast.Command) (ast.Target, resolver.Requirement, bool) {
	switch c := cmd.(type) {
	case ast.Click:
		return c.Target, resolver.ReqClickable, true
	case ast.Type:
		return c.Target, resolver.ReqTypeable, true
	case ast.Clear:
		return c.Target, resolver.ReqTypeable, true
	case ast.Select:
		return c.Target, resolver.ReqSelectable, true
	case ast.Check:
		return c.Target, resolver.ReqCheckable, true
	case ast.Uncheck:
		return c.Target, resolver.ReqCheckable, true
	case ast.Hover:
		return c.Target, resolver.ReqAny, true
	case ast.Focus:
		return c.Target, resolver.ReqTypeable, true
	case ast.Submit:
		if c.Target != nil {
			return *c.Target, resolver.ReqSubmittable, true
		}
	}
	return ast.Target{}, resolver.ReqAny, false
}
