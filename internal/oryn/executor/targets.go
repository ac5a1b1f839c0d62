package executor

import (
	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/resolver"
)

// needsResolution reports whether t is anything other than an already-bound
// id or a raw selector: those two pass straight through to the translator.
func needsResolution(t ast.Target) bool {
	if !t.IsAtomic() {
		return true
	}
	return t.Atomic.Kind != ast.AtomicID && t.Atomic.Kind != ast.AtomicSelector
}

// commandNeedsResolution reports whether any Target carried by cmd requires
// the resolver (and therefore a scan context) before it can be translated.
func commandNeedsResolution(cmd ast.Command) bool {
	switch c := cmd.(type) {
	case ast.Click:
		return needsResolution(c.Target)
	case ast.Type:
		return needsResolution(c.Target)
	case ast.Clear:
		return needsResolution(c.Target)
	case ast.Select:
		return needsResolution(c.Target)
	case ast.Check:
		return needsResolution(c.Target)
	case ast.Uncheck:
		return needsResolution(c.Target)
	case ast.Hover:
		return needsResolution(c.Target)
	case ast.Focus:
		return needsResolution(c.Target)
	case ast.Box:
		return needsResolution(c.Target)
	case ast.Highlight:
		return needsResolution(c.Target)
	case ast.Scroll:
		return c.Target != nil && needsResolution(*c.Target)
	case ast.Submit:
		return c.Target == nil || needsResolution(*c.Target)
	case ast.TextCmd:
		return c.Target != nil && needsResolution(*c.Target)
	case ast.Screenshot:
		return c.Target != nil && needsResolution(*c.Target)
	}
	return false
}

// resolveTargets resolves every semantic Target a command carries against
// ctx, using the per-command requirement/strategy table, returning a
// command whose Targets are now Atomic::Id or Atomic::Selector.
func resolveTargets(ctx *resolver.Context, cmd ast.Command) (ast.Command, error) {
	one := func(t ast.Target, req resolver.Requirement, strat resolver.Strategy, allowInfer bool) (ast.Target, error) {
		if !needsResolution(t) {
			return t, nil
		}
		a, err := resolver.Resolve(ctx, t, req, strat, allowInfer)
		if err != nil {
			return ast.Target{}, err
		}
		return ast.Leaf(a), nil
	}
	optTarget := func(t *ast.Target, req resolver.Requirement, strat resolver.Strategy) (*ast.Target, error) {
		if t == nil {
			return nil, nil
		}
		r, err := one(*t, req, strat, false)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
	inferrable := func(t *ast.Target, req resolver.Requirement) (*ast.Target, error) {
		if t == nil {
			a, err := resolver.Resolve(ctx, ast.Leaf(ast.Infer()), req, resolver.StrategyBest, true)
			if err != nil {
				return nil, err
			}
			r := ast.Leaf(a)
			return &r, nil
		}
		return optTarget(t, req, resolver.StrategyBest)
	}

	switch c := cmd.(type) {
	case ast.Click:
		t, err := one(c.Target, resolver.ReqClickable, resolver.StrategyPreferClickable, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Type:
		t, err := one(c.Target, resolver.ReqTypeable, resolver.StrategyPreferInput, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Clear:
		t, err := one(c.Target, resolver.ReqTypeable, resolver.StrategyPreferInput, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Select:
		t, err := one(c.Target, resolver.ReqSelectable, resolver.StrategyBest, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Check:
		t, err := one(c.Target, resolver.ReqCheckable, resolver.StrategyPreferCheckable, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Uncheck:
		t, err := one(c.Target, resolver.ReqCheckable, resolver.StrategyPreferCheckable, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Hover:
		t, err := one(c.Target, resolver.ReqAny, resolver.StrategyFirst, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Focus:
		t, err := one(c.Target, resolver.ReqTypeable, resolver.StrategyPreferInput, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Box:
		t, err := one(c.Target, resolver.ReqAny, resolver.StrategyBest, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Highlight:
		t, err := one(c.Target, resolver.ReqAny, resolver.StrategyBest, false)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Scroll:
		t, err := optTarget(c.Target, resolver.ReqAny, resolver.StrategyFirst)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Submit:
		t, err := inferrable(c.Target, resolver.ReqSubmittable)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.TextCmd:
		t, err := optTarget(c.Target, resolver.ReqAny, resolver.StrategyBest)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	case ast.Screenshot:
		t, err := optTarget(c.Target, resolver.ReqAny, resolver.StrategyBest)
		if err != nil {
			return nil, err
		}
		c.Target = t
		return c, nil
	}
	return cmd, nil
}
