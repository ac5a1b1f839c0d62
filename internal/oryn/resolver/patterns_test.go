package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oryn/internal/oryn/protocol"
)

func TestDetectPatternsModalCarriesRootCloseAndConfirm(t *testing.T) {
	engine, err := NewPatternEngine()
	require.NoError(t, err)

	modal := protocol.Element{ID: 1, ElementType: "dialog", Attributes: map[string]string{"role": "dialog"}}
	closeBtn := protocol.Element{ID: 2, ElementType: "button", Text: "Close"}
	confirmBtn := protocol.Element{ID: 3, ElementType: "button", Text: "Confirm"}
	modal.Children = []int{2, 3}
	scan := protocol.ScanResult{Elements: []protocol.Element{modal, closeBtn, confirmBtn}}

	patterns, err := DetectPatterns(context.Background(), engine, scan)
	require.NoError(t, err)

	var modalPattern protocol.Pattern
	found := false
	for _, p := range patterns {
		if p.Kind == "modal" {
			modalPattern, found = p, true
		}
	}
	require.True(t, found, "expected a modal pattern")
	assert.Equal(t, 1, modalPattern.Members["root"])
	assert.Equal(t, 2, modalPattern.Members["close"])
	assert.Equal(t, 3, modalPattern.Members["confirm"])
}

func TestDetectPatternsLoginFormCarriesSubmit(t *testing.T) {
	engine, err := NewPatternEngine()
	require.NoError(t, err)

	form := protocol.Element{ID: 1, ElementType: "form", Children: []int{2, 3}}
	password := protocol.Element{ID: 2, ElementType: "input", Attributes: map[string]string{"type": "password"}}
	submit := protocol.Element{ID: 3, ElementType: "button"}
	scan := protocol.ScanResult{Elements: []protocol.Element{form, password, submit}}

	patterns, err := DetectPatterns(context.Background(), engine, scan)
	require.NoError(t, err)

	var loginPattern protocol.Pattern
	found := false
	for _, p := range patterns {
		if p.Kind == "login" {
			loginPattern, found = p, true
		}
	}
	require.True(t, found, "expected a login pattern")
	assert.Equal(t, 1, loginPattern.Members["form"])
	assert.Equal(t, 3, loginPattern.Members["submit"])
}

func TestDismissableRuleReachesModalRootFallback(t *testing.T) {
	engine, err := NewPatternEngine()
	require.NoError(t, err)

	modal := protocol.Element{ID: 1, ElementType: "dialog", Attributes: map[string]string{"role": "dialog"}, Rect: protocol.Rect{X: 0, Y: 0, W: 100, H: 100}}
	stray := protocol.Element{ID: 2, ElementType: "button", Text: "Dismiss", Rect: protocol.Rect{X: 10, Y: 10, W: 10, H: 10}}
	modal.Children = nil
	scan := protocol.ScanResult{Elements: []protocol.Element{modal, stray}}

	patterns, err := DetectPatterns(context.Background(), engine, scan)
	require.NoError(t, err)
	scan.Patterns = patterns

	ctx := NewContext(scan)
	id, err := infer(ctx, ReqDismissable)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}
