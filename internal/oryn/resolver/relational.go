package resolver

import (
	"math"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/protocol"
)

// relationalCandidates scores the elements matching the target atomic that
// also satisfy the relation's predicate against the already-resolved anchor.
func relationalCandidates(ctx *Context, rel ast.RelationKind, target ast.Atomic, anchor protocol.Element) []candidate {
	pool := atomicPool(ctx, target)
	ax, ay := anchor.Rect.Center()
	var out []candidate
	for _, el := range pool {
		if el.ID == anchor.ID {
			continue
		}
		switch rel {
		case ast.RelNear:
			ex, ey := el.Rect.Center()
			dist := math.Hypot(ex-ax, ey-ay)
			out = append(out, candidate{ID: el.ID, Score: int(10000 / (dist + 1))})
		case ast.RelInside:
			if anchor.Rect.Contains(el.Rect) {
				out = append(out, candidate{ID: el.ID, Score: 100})
			}
		case ast.RelContains:
			if el.Rect.Contains(anchor.Rect) {
				out = append(out, candidate{ID: el.ID, Score: 100})
			}
		case ast.RelAfter:
			if isAfter(el.Rect, anchor.Rect) {
				out = append(out, candidate{ID: el.ID, Score: int(10000 / (l1(el.Rect, anchor.Rect) + 1))})
			}
		case ast.RelBefore:
			if isBefore(el.Rect, anchor.Rect) {
				out = append(out, candidate{ID: el.ID, Score: int(10000 / (l1(el.Rect, anchor.Rect) + 1))})
			}
		}
	}
	sortCandidatesDesc(out)
	return out
}

// atomicPool returns the elements a relational target atomic could possibly
// bind to, before the relation predicate narrows them down.
func atomicPool(ctx *Context, a ast.Atomic) []protocol.Element {
	switch a.Kind {
	case ast.AtomicID:
		if el, ok := ctx.Get(a.ID); ok {
			return []protocol.Element{el}
		}
		return nil
	case ast.AtomicText, ast.AtomicRole:
		cands := scoreAtomic(ctx, a, StrategyFirst)
		pool := make([]protocol.Element, 0, len(cands))
		for _, c := range cands {
			if el, ok := ctx.Get(c.ID); ok {
				pool = append(pool, el)
			}
		}
		return pool
	default:
		return ctx.Elements()
	}
}

func isAfter(t, a protocol.Rect) bool {
	return t.Y >= a.Y+a.H || (t.Y >= a.Y && t.X > a.X+a.W)
}

func isBefore(t, a protocol.Rect) bool {
	return t.Y+t.H <= a.Y || (t.Y <= a.Y+a.H && t.X+t.W < a.X)
}

func l1(t, a protocol.Rect) float64 {
	tx, ty := t.Center()
	ax, ay := a.Center()
	return math.Abs(tx-ax) + math.Abs(ty-ay)
}

func sortCandidatesDesc(c []candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].Score > c[j-1].Score; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}
