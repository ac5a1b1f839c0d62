package resolver

import (
	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/protocol"
)

// Resolve converts a semantic Target into an Atomic ready for translation:
// either Atomic::Id(n) (bound against ctx), or Atomic::Selector (left for
// the in-page runtime to resolve itself). Relational targets never survive;
// the result is always a single leaf atomic.
func Resolve(ctx *Context, target ast.Target, req Requirement, strategy Strategy, allowInference bool) (ast.Atomic, error) {
	if target.IsAtomic() {
		return resolveAtomic(ctx, target.Atomic, req, strategy, allowInference)
	}

	anchorAtomic, err := Resolve(ctx, *target.Anchor, ReqAny, StrategyFirst, allowInference)
	if err != nil {
		return ast.Atomic{}, err
	}
	if anchorAtomic.Kind != ast.AtomicID {
		return ast.Atomic{}, noMatch(target.Anchor.String(), "anchor did not resolve to a concrete id")
	}
	anchorEl, ok := ctx.Get(anchorAtomic.ID)
	if !ok {
		return ast.Atomic{}, staleContext(target.Anchor.String())
	}

	cands := relationalCandidates(ctx, target.Relation, target.Atomic, anchorEl)
	if len(cands) == 0 {
		return ast.Atomic{}, noMatch(target.String(), string(target.Relation))
	}
	id := cands[0].ID
	el, ok := ctx.Get(id)
	if !ok {
		return ast.Atomic{}, staleContext(target.String())
	}
	if !Satisfies(el, req) {
		if resolved, ok := resolveViaAssociation(ctx, el, req); ok {
			return ast.ID(resolved), nil
		}
		return ast.Atomic{}, noMatch(target.String(), "candidate failed requirement "+req.String())
	}
	return ast.ID(id), nil
}

func resolveAtomic(ctx *Context, a ast.Atomic, req Requirement, strategy Strategy, allowInference bool) (ast.Atomic, error) {
	switch a.Kind {
	case ast.AtomicID:
		if _, ok := ctx.Get(a.ID); !ok {
			return ast.Atomic{}, staleContext(a.String())
		}
		return a, nil
	case ast.AtomicSelector:
		return a, nil
	case ast.AtomicInfer:
		if !allowInference {
			return ast.Atomic{}, noMatch("<infer>", "inference already attempted")
		}
		id, err := infer(ctx, req)
		if err != nil {
			return ast.Atomic{}, err
		}
		return Resolve(ctx, ast.Leaf(ast.ID(id)), req, strategy, false)
	case ast.AtomicText, ast.AtomicRole:
		cands := scoreAtomic(ctx, a, strategy)
		id, err := pick(cands, strategy, a.String())
		if err != nil {
			return ast.Atomic{}, err
		}
		el, ok := ctx.Get(id)
		if !ok {
			return ast.Atomic{}, staleContext(a.String())
		}
		if Satisfies(el, req) {
			return ast.ID(id), nil
		}
		if resolved, ok := resolveViaAssociation(ctx, el, req); ok {
			return ast.ID(resolved), nil
		}
		return ast.Atomic{}, noMatch(a.String(), "best candidate failed requirement "+req.String())
	}
	return ast.Atomic{}, noMatch(a.String(), "unrecognized atomic kind")
}

// resolveViaAssociation applies the label->control fallback chain, and as a
// last resort permits an actionable label to stand in for itself.
func resolveViaAssociation(ctx *Context, chosen protocol.Element, req Requirement) (int, bool) {
	if !IsLabelLike(chosen) {
		return 0, false
	}
	if el, ok := associate(ctx, chosen, req); ok {
		return el.ID, true
	}
	if (req == ReqClickable || req == ReqCheckable) && isActionableLabel(ctx, chosen) {
		return chosen.ID, true
	}
	return 0, false
}
