package resolver

import (
	"sort"
	"strings"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/protocol"
)

type candidate struct {
	ID    int
	Score int
}

// scoreAtomic scores every element in the context against a Text or Role
// atomic, applying the strategy's category bonus, and discards zero scores.
func scoreAtomic(ctx *Context, a ast.Atomic, strategy Strategy) []candidate {
	var out []candidate
	for _, el := range ctx.Elements() {
		var score int
		switch a.Kind {
		case ast.AtomicText:
			score = TextScore(el, a.Text)
		case ast.AtomicRole:
			score = RoleScore(el, a.Role)
		}
		if score <= 0 {
			continue
		}
		score += categoryBonusFor(el, strategy)
		out = append(out, candidate{ID: el.ID, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func categoryBonusFor(e protocol.Element, strategy Strategy) int {
	switch strategy {
	case StrategyPreferInput:
		if e.ElementType == "input" || e.ElementType == "textarea" {
			return categoryBonus
		}
	case StrategyPreferClickable:
		if Satisfies(e, ReqClickable) {
			return categoryBonus
		}
	case StrategyPreferCheckable:
		if Satisfies(e, ReqCheckable) {
			return categoryBonus
		}
	}
	return 0
}

// pick selects the winning candidate per strategy. Unique errors if the top
// two scores tie.
func pick(cands []candidate, strategy Strategy, desc string) (int, error) {
	if len(cands) == 0 {
		return 0, noMatch(desc, strategy.String())
	}
	if strategy == StrategyUnique && len(cands) > 1 && cands[0].Score == cands[1].Score {
		return 0, tie(desc, []int{cands[0].ID, cands[1].ID})
	}
	return cands[0].ID, nil
}
