package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/protocol"
)

func el(id int, typ, text string, rect protocol.Rect) protocol.Element {
	return protocol.Element{ID: id, ElementType: typ, Text: text, Rect: rect}
}

func scanOf(els ...protocol.Element) protocol.ScanResult {
	return protocol.ScanResult{Elements: els}
}

func TestResolveExactTextWins(t *testing.T) {
	ctx := NewContext(scanOf(
		el(1, "button", "Sign In", protocol.Rect{}),
		el(2, "button", "Sign In to Account", protocol.Rect{}),
	))
	atomic, err := Resolve(ctx, ast.Leaf(ast.Text("Sign In")), ReqClickable, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, ast.AtomicID, atomic.Kind)
	assert.Equal(t, 1, atomic.ID)
}

func TestResolveNoMatchReturnsResolveError(t *testing.T) {
	ctx := NewContext(scanOf(el(1, "button", "Cancel", protocol.Rect{})))
	_, err := Resolve(ctx, ast.Leaf(ast.Text("Sign In")), ReqClickable, StrategyBest, false)
	require.Error(t, err)
	rerr, ok := err.(*ResolveError)
	require.True(t, ok)
	assert.True(t, rerr.IsNoMatch())
}

func TestResolveStaleContextForUnknownID(t *testing.T) {
	ctx := NewContext(scanOf(el(1, "button", "Cancel", protocol.Rect{})))
	_, err := Resolve(ctx, ast.Leaf(ast.ID(99)), ReqAny, StrategyFirst, false)
	require.Error(t, err)
	rerr := err.(*ResolveError)
	assert.True(t, rerr.IsStaleContext())
}

func TestResolveUniqueStrategyTiesError(t *testing.T) {
	ctx := NewContext(scanOf(
		el(1, "button", "Submit", protocol.Rect{}),
		el(2, "button", "Submit", protocol.Rect{}),
	))
	_, err := Resolve(ctx, ast.Leaf(ast.Text("Submit")), ReqClickable, StrategyUnique, false)
	require.Error(t, err)
	rerr := err.(*ResolveError)
	assert.False(t, rerr.IsNoMatch())
	assert.False(t, rerr.IsStaleContext())
}

func TestResolveRoleScoring(t *testing.T) {
	els := []protocol.Element{
		{ID: 1, ElementType: "input", Attributes: map[string]string{"type": "email"}},
		{ID: 2, ElementType: "input", Attributes: map[string]string{"type": "password"}},
	}
	ctx := NewContext(scanOf(els...))
	atomic, err := Resolve(ctx, ast.Leaf(ast.Role("email")), ReqTypeable, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, 1, atomic.ID)
}

func TestResolveDisabledElementScoresLower(t *testing.T) {
	a := protocol.Element{ID: 1, ElementType: "button", Role: "button", State: protocol.ElementState{Disabled: true}}
	b := protocol.Element{ID: 2, ElementType: "button", Role: "button"}
	ctx := NewContext(scanOf(a, b))
	atomic, err := Resolve(ctx, ast.Leaf(ast.Role("button")), ReqAny, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, atomic.ID)
}

func TestResolveRelationalInside(t *testing.T) {
	form := el(1, "form", "", protocol.Rect{X: 0, Y: 0, W: 100, H: 100})
	inner := el(2, "button", "Submit", protocol.Rect{X: 10, Y: 10, W: 20, H: 10})
	outer := el(3, "button", "Submit", protocol.Rect{X: 200, Y: 200, W: 20, H: 10})
	ctx := NewContext(scanOf(form, inner, outer))

	target := ast.Relational(ast.RelInside, ast.Text("Submit"), ast.Leaf(ast.ID(1)))
	atomic, err := Resolve(ctx, target, ReqClickable, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, atomic.ID)
}

func TestResolveRelationalNearPicksClosest(t *testing.T) {
	anchor := el(1, "label", "Price", protocol.Rect{X: 0, Y: 0, W: 10, H: 10})
	near := el(2, "button", "Buy", protocol.Rect{X: 15, Y: 0, W: 10, H: 10})
	far := el(3, "button", "Buy", protocol.Rect{X: 500, Y: 500, W: 10, H: 10})
	ctx := NewContext(scanOf(anchor, near, far))

	target := ast.Relational(ast.RelNear, ast.Text("Buy"), ast.Leaf(ast.ID(1)))
	atomic, err := Resolve(ctx, target, ReqClickable, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, atomic.ID)
}

func TestResolveLabelAssociationByFor(t *testing.T) {
	label := protocol.Element{ID: 1, ElementType: "label", Text: "Email", Attributes: map[string]string{"for": "email-input"}}
	input := protocol.Element{ID: 2, ElementType: "input", Attributes: map[string]string{"id": "email-input"}}
	ctx := NewContext(scanOf(label, input))

	atomic, err := Resolve(ctx, ast.Leaf(ast.Text("Email")), ReqTypeable, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, atomic.ID)
}

func TestResolveLabelAssociationNested(t *testing.T) {
	label := protocol.Element{ID: 1, ElementType: "label", Text: "Subscribe", Rect: protocol.Rect{X: 0, Y: 0, W: 100, H: 20}}
	checkbox := protocol.Element{ID: 2, ElementType: "input", Attributes: map[string]string{"type": "checkbox"}, Rect: protocol.Rect{X: 5, Y: 5, W: 10, H: 10}}
	ctx := NewContext(scanOf(label, checkbox))

	atomic, err := Resolve(ctx, ast.Leaf(ast.Text("Subscribe")), ReqCheckable, StrategyBest, false)
	require.NoError(t, err)
	assert.Equal(t, 2, atomic.ID)
}

func TestResolveInferSubmittableViaSolePattern(t *testing.T) {
	form := protocol.Element{ID: 1, ElementType: "form"}
	ctx := NewContext(scanOf(form))

	atomic, err := Resolve(ctx, ast.Leaf(ast.Infer()), ReqSubmittable, StrategyFirst, true)
	require.NoError(t, err)
	assert.Equal(t, 1, atomic.ID)
}

func TestResolveInferDisallowedOnRetry(t *testing.T) {
	ctx := NewContext(scanOf())
	_, err := Resolve(ctx, ast.Leaf(ast.Infer()), ReqSubmittable, StrategyFirst, false)
	require.Error(t, err)
}

func TestResolveSelectorPassesThroughUnresolved(t *testing.T) {
	ctx := NewContext(scanOf())
	atomic, err := Resolve(ctx, ast.Leaf(ast.Selector("css", ".btn")), ReqAny, StrategyFirst, false)
	require.NoError(t, err)
	assert.Equal(t, ast.AtomicSelector, atomic.Kind)
	assert.Equal(t, ".btn", atomic.SelectorValue)
}

func TestTextScorePrefersExactOverContains(t *testing.T) {
	e := protocol.Element{Text: "Sign In to Continue"}
	assert.Greater(t, TextScore(protocol.Element{Text: "Sign In"}, "Sign In"), TextScore(e, "Sign In"))
}

func TestTextScoreIsCaseAndWhitespaceInsensitive(t *testing.T) {
	e := protocol.Element{Text: "  Sign   In  "}
	assert.Equal(t, 100, TextScore(e, "sign in"))
}

func TestSatisfiesClickableCoversCommonTags(t *testing.T) {
	for _, typ := range []string{"button", "a", "input", "select", "label"} {
		assert.True(t, Satisfies(protocol.Element{ElementType: typ}, ReqClickable), typ)
	}
	assert.False(t, Satisfies(protocol.Element{ElementType: "div"}, ReqClickable))
}

func TestSatisfiesSubmittableButtonTypeDefaultsTrue(t *testing.T) {
	assert.True(t, Satisfies(protocol.Element{ElementType: "button"}, ReqSubmittable))
	assert.False(t, Satisfies(protocol.Element{ElementType: "button", Attributes: map[string]string{"type": "button"}}, ReqSubmittable))
}
