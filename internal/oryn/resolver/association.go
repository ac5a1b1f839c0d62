package resolver

import (
	"math"
	"sort"
	"strings"

	"oryn/internal/oryn/protocol"
)

// associate attempts the three label->control fallbacks, in order, when the
// chosen element is label-like but fails the requirement.
func associate(ctx *Context, label protocol.Element, req Requirement) (protocol.Element, bool) {
	if el, ok := associateFor(ctx, label); ok && Satisfies(el, req) {
		return el, true
	}
	if el, ok := associateNested(ctx, label, req); ok {
		return el, true
	}
	if el, ok := associateAdjacent(ctx, label, req); ok {
		return el, true
	}
	return protocol.Element{}, false
}

func associateFor(ctx *Context, label protocol.Element) (protocol.Element, bool) {
	forID, ok := label.Attr("for")
	if !ok {
		return protocol.Element{}, false
	}
	for _, el := range ctx.Elements() {
		if id, ok := el.Attr("id"); ok && id == forID {
			return el, true
		}
	}
	return protocol.Element{}, false
}

func associateNested(ctx *Context, label protocol.Element, req Requirement) (protocol.Element, bool) {
	best := protocol.Element{}
	found := false
	for _, el := range ctx.Elements() {
		if el.ID == label.ID || !Satisfies(el, req) {
			continue
		}
		if !label.Rect.Contains(el.Rect) {
			continue
		}
		if !found || el.ID < best.ID {
			best, found = el, true
		}
	}
	return best, found
}

func associateAdjacent(ctx *Context, label protocol.Element, req Requirement) (protocol.Element, bool) {
	lx, ly := label.Rect.Center()
	type scored struct {
		el   protocol.Element
		prox float64
	}
	var candidates []scored
	for _, el := range ctx.Elements() {
		if el.ID == label.ID || !Satisfies(el, req) {
			continue
		}
		ex, ey := el.Rect.Center()
		prox := 2*math.Abs(ey-ly) + math.Abs(ex-lx)
		candidates = append(candidates, scored{el, prox})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].prox < candidates[j].prox })
	limit := 5
	if len(candidates) < limit {
		limit = len(candidates)
	}
	for _, c := range candidates[:limit] {
		_, cy := c.el.Rect.Center()
		if math.Abs(cy-ly) <= 50 {
			return c.el, true
		}
	}
	return protocol.Element{}, false
}

// isActionableLabel reports whether a label-like element may itself stand in
// for a Clickable/Checkable requirement via native event bubbling.
func isActionableLabel(ctx *Context, label protocol.Element) bool {
	if forID, ok := label.Attr("for"); ok {
		for _, el := range ctx.Elements() {
			if id, ok := el.Attr("id"); ok && id == forID {
				return true
			}
		}
	}
	for _, el := range ctx.Elements() {
		if el.ID != label.ID && label.Rect.Contains(el.Rect) && (el.ElementType == "input" || el.ElementType == "select" || el.ElementType == "textarea") {
			return true
		}
	}
	for _, el := range ctx.Elements() {
		if !containsChild(el, label.ID) {
			continue
		}
		role, _ := el.Attr("role")
		if role == "" {
			role = el.Role
		}
		switch strings.ToLower(role) {
		case "checkbox", "radio", "switch", "button":
			return true
		}
	}
	return false
}

func containsChild(parent protocol.Element, childID int) bool {
	for _, id := range parent.Children {
		if id == childID {
			return true
		}
	}
	return false
}
