package resolver

import (
	"sort"
	"strings"

	"oryn/internal/oryn/protocol"
)

type inferenceRule struct {
	priority int
	try      func(ctx *Context) (int, bool)
}

// infer runs the ordered rule table for req, returning the winning element
// id from the first rule that fires.
func infer(ctx *Context, req Requirement) (int, error) {
	var rules []inferenceRule
	switch req {
	case ReqSubmittable:
		rules = submittableRules()
	case ReqContainerForm, ReqContainerAny:
		rules = formContainerRules()
	case ReqDismissable:
		rules = dismissableRules()
	case ReqAcceptable:
		rules = acceptableRules()
	default:
		return 0, noMatch("<infer>", "no inference rules for "+req.String())
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].priority > rules[j].priority })
	for _, r := range rules {
		if id, ok := r.try(ctx); ok {
			return id, nil
		}
	}
	return 0, noMatch("<infer>", req.String())
}

func submittableRules() []inferenceRule {
	return []inferenceRule{
		{100, func(ctx *Context) (int, bool) { return patternMember(ctx, "login", "submit") }},
		{95, func(ctx *Context) (int, bool) { return patternMember(ctx, "search", "submit") }},
		{80, func(ctx *Context) (int, bool) { return soleElementOfType(ctx, "form") }},
		{60, func(ctx *Context) (int, bool) { return firstMatching(ctx, func(e protocol.Element) bool { return isSubmittable(e) }) }},
	}
}

func formContainerRules() []inferenceRule {
	return []inferenceRule{
		{100, func(ctx *Context) (int, bool) {
			f, ok := ctx.Focused()
			if !ok {
				return 0, false
			}
			return enclosingForm(ctx, f)
		}},
		{90, func(ctx *Context) (int, bool) { return patternMember(ctx, "login", "form") }},
		{80, func(ctx *Context) (int, bool) { return soleElementOfType(ctx, "form") }},
	}
}

func dismissableRules() []inferenceRule {
	return []inferenceRule{
		{100, func(ctx *Context) (int, bool) { return patternMember(ctx, "modal", "close") }},
		{95, func(ctx *Context) (int, bool) { return patternMember(ctx, "cookie_banner", "reject") }},
		{80, func(ctx *Context) (int, bool) {
			modalID, ok := patternMember(ctx, "modal", "root")
			if !ok {
				return 0, false
			}
			modal, ok := ctx.Get(modalID)
			if !ok {
				return 0, false
			}
			return firstMatching(ctx, func(e protocol.Element) bool {
				return e.ID != modal.ID && modal.Rect.Contains(e.Rect) && closeLike(e)
			})
		}},
	}
}

func acceptableRules() []inferenceRule {
	return []inferenceRule{
		{100, func(ctx *Context) (int, bool) { return patternMember(ctx, "cookie_banner", "accept") }},
		{95, func(ctx *Context) (int, bool) { return patternMember(ctx, "modal", "confirm") }},
		{60, func(ctx *Context) (int, bool) {
			return firstMatching(ctx, func(e protocol.Element) bool {
				t := strings.ToLower(e.Text)
				return strings.Contains(t, "accept") || strings.Contains(t, "allow all") || strings.Contains(t, "agree")
			})
		}},
	}
}

func patternMember(ctx *Context, kind, member string) (int, bool) {
	p, ok := ctx.Pattern(kind)
	if !ok {
		return 0, false
	}
	id, ok := p.Members[member]
	return id, ok
}

func soleElementOfType(ctx *Context, elementType string) (int, bool) {
	found := -1
	count := 0
	for _, el := range ctx.Elements() {
		if el.ElementType == elementType {
			count++
			found = el.ID
		}
	}
	if count == 1 {
		return found, true
	}
	return 0, false
}

func firstMatching(ctx *Context, pred func(protocol.Element) bool) (int, bool) {
	for _, el := range ctx.Elements() {
		if pred(el) {
			return el.ID, true
		}
	}
	return 0, false
}

func enclosingForm(ctx *Context, el protocol.Element) (int, bool) {
	for _, form := range ctx.Elements() {
		if form.ElementType == "form" && form.Rect.Contains(el.Rect) {
			return form.ID, true
		}
	}
	return 0, false
}

func closeLike(e protocol.Element) bool {
	t := strings.ToLower(e.Text)
	aria, _ := e.Attr("aria-label")
	return strings.Contains(t, "close") || strings.Contains(t, "×") || strings.Contains(t, "dismiss") ||
		strings.Contains(strings.ToLower(aria), "close")
}
