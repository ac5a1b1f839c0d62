package resolver

import (
	"context"
	"strings"

	omangle "oryn/internal/oryn/mangle"
	"oryn/internal/oryn/protocol"
)

// patternSchema declares the extensional facts the Go side pushes per scan
// and the derived (rule-headed) predicates pattern detection queries.
const patternSchema = `
Decl element(Id, Type) bound [/number, /string].
Decl parent(Child, Parent) bound [/number, /number].
Decl is_password(Id) bound [/number].
Decl is_submit(Id) bound [/number].
Decl is_search_input(Id) bound [/number].
Decl is_modal_root(Id) bound [/number].
Decl is_close_like(Id) bound [/number].
Decl is_accept_like(Id) bound [/number].
Decl is_reject_like(Id) bound [/number].
Decl is_cookie_banner_root(Id) bound [/number].

Decl login_form(Form) bound [/number].
login_form(Form) :- element(Form, /form), parent(Pw, Form), is_password(Pw).

Decl login_submit(Id) bound [/number].
login_submit(Id) :- parent(Id, Form), login_form(Form), is_submit(Id).

Decl search_form(Form) bound [/number].
search_form(Form) :- element(Form, /form), parent(Input, Form), is_search_input(Input).

Decl search_submit(Id) bound [/number].
search_submit(Id) :- parent(Id, Form), search_form(Form), is_submit(Id).

Decl modal_close(Id) bound [/number].
modal_close(Id) :- parent(Id, Modal), is_modal_root(Modal), is_close_like(Id).

Decl modal_root(Id) bound [/number].
modal_root(Id) :- is_modal_root(Id).

Decl is_confirm_like(Id) bound [/number].

Decl modal_confirm(Id) bound [/number].
modal_confirm(Id) :- parent(Id, Modal), is_modal_root(Modal), is_confirm_like(Id).

Decl cookie_reject(Id) bound [/number].
cookie_reject(Id) :- parent(Id, Banner), is_cookie_banner_root(Banner), is_reject_like(Id).

Decl cookie_accept(Id) bound [/number].
cookie_accept(Id) :- parent(Id, Banner), is_cookie_banner_root(Banner), is_accept_like(Id).
`

// NewPatternEngine builds the Mangle engine used for semantic pattern
// detection and loads its schema once; callers Clear() and re-push facts
// for every fresh scan.
func NewPatternEngine() (*omangle.Engine, error) {
	engine, err := omangle.NewEngine(omangle.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := engine.LoadSchemaString(patternSchema); err != nil {
		return nil, err
	}
	return engine, nil
}

// DetectPatterns pushes per-element classification facts from scan into
// engine and evaluates the rule set, returning the Pattern list a ScanResult
// carries (login form, search box, modal, cookie banner).
func DetectPatterns(ctx context.Context, engine *omangle.Engine, scan protocol.ScanResult) ([]protocol.Pattern, error) {
	engine.Clear()
	var facts []omangle.Fact
	for _, el := range scan.Elements {
		facts = append(facts, omangle.Fact{Predicate: "element", Args: []interface{}{el.ID, "/" + el.ElementType}})
		for _, child := range el.Children {
			facts = append(facts, omangle.Fact{Predicate: "parent", Args: []interface{}{child, el.ID}})
		}
		if isPasswordInput(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_password", Args: []interface{}{el.ID}})
		}
		if isSubmitLike(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_submit", Args: []interface{}{el.ID}})
		}
		if isSearchInput(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_search_input", Args: []interface{}{el.ID}})
		}
		if isModalRoot(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_modal_root", Args: []interface{}{el.ID}})
		}
		if closeLike(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_close_like", Args: []interface{}{el.ID}})
		}
		if confirmLike(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_confirm_like", Args: []interface{}{el.ID}})
		}
		if textMatchesAny(el, "accept", "allow all", "agree") {
			facts = append(facts, omangle.Fact{Predicate: "is_accept_like", Args: []interface{}{el.ID}})
		}
		if textMatchesAny(el, "reject", "decline", "deny") {
			facts = append(facts, omangle.Fact{Predicate: "is_reject_like", Args: []interface{}{el.ID}})
		}
		if isCookieBannerRoot(el) {
			facts = append(facts, omangle.Fact{Predicate: "is_cookie_banner_root", Args: []interface{}{el.ID}})
		}
	}
	if err := engine.AddFacts(facts); err != nil {
		return nil, err
	}

	var patterns []protocol.Pattern
	if p, ok := buildPattern(engine, "login", map[string]string{"form": "login_form", "submit": "login_submit"}); ok {
		patterns = append(patterns, p)
	}
	if p, ok := buildPattern(engine, "search", map[string]string{"form": "search_form", "submit": "search_submit"}); ok {
		patterns = append(patterns, p)
	}
	if p, ok := buildPattern(engine, "modal", map[string]string{"close": "modal_close", "root": "modal_root", "confirm": "modal_confirm"}); ok {
		patterns = append(patterns, p)
	}
	if p, ok := buildPattern(engine, "cookie_banner", map[string]string{"reject": "cookie_reject", "accept": "cookie_accept"}); ok {
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func buildPattern(engine *omangle.Engine, kind string, roles map[string]string) (protocol.Pattern, bool) {
	members := map[string]int{}
	for role, predicate := range roles {
		facts := engine.EvaluateRule(predicate)
		if len(facts) == 0 {
			continue
		}
		if id, ok := asInt(facts[0].Args[0]); ok {
			members[role] = id
		}
	}
	if len(members) == 0 {
		return protocol.Pattern{}, false
	}
	confidence := float64(len(members)) / float64(len(roles))
	return protocol.Pattern{Kind: kind, Members: members, Confidence: confidence}, true
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func isSubmitLike(e protocol.Element) bool {
	return isSubmittable(e)
}

func isPasswordInput(e protocol.Element) bool {
	typ, _ := e.Attr("type")
	return e.ElementType == "input" && strings.EqualFold(typ, "password")
}

func isSearchInput(e protocol.Element) bool {
	if e.ElementType != "input" {
		return false
	}
	typ, _ := e.Attr("type")
	if strings.EqualFold(typ, "search") {
		return true
	}
	return textMatchesAny(e, "search") || strings.Contains(strings.ToLower(e.Placeholder), "search")
}

func isModalRoot(e protocol.Element) bool {
	role, _ := e.Attr("role")
	return strings.EqualFold(role, "dialog") || strings.EqualFold(role, "alertdialog") || e.ElementType == "dialog"
}

func isCookieBannerRoot(e protocol.Element) bool {
	id, _ := e.Attr("id")
	cls, _ := e.Attr("class")
	hay := strings.ToLower(id + " " + cls)
	return strings.Contains(hay, "cookie") || strings.Contains(hay, "consent")
}

func confirmLike(e protocol.Element) bool {
	if closeLike(e) {
		return false
	}
	return textMatchesAny(e, "confirm", "ok", "yes", "continue")
}

func textMatchesAny(e protocol.Element, needles ...string) bool {
	hay := strings.ToLower(e.Text + " " + e.Label)
	for _, n := range needles {
		if strings.Contains(hay, n) {
			return true
		}
	}
	return false
}
