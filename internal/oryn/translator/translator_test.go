package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oryn/internal/oryn/ast"
	"oryn/internal/oryn/protocol"
)

func resolvedID(id int) ast.Target { return ast.Leaf(ast.ID(id)) }

func TestTranslateGotoCarriesHeadersAndTimeout(t *testing.T) {
	res, err := Translate(ast.Goto{URL: "example.com", Headers: "x=1; y=2", Timeout: "5000"})
	require.NoError(t, err)
	g, ok := res.Browser.(protocol.GotoAction)
	require.True(t, ok)
	assert.Equal(t, "example.com", g.URL)
	assert.Equal(t, uint64(5000), g.TimeoutMs)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, g.Headers)
}

func TestTranslateClickCarriesButtonAndModifiers(t *testing.T) {
	res, err := Translate(ast.Click{Target: resolvedID(4), Right: true, Ctrl: true, Shift: true})
	require.NoError(t, err)
	c := res.Scanner.(protocol.ClickAction)
	assert.Equal(t, 4, c.ID)
	assert.Equal(t, "right", c.Button)
	assert.ElementsMatch(t, []string{"ctrl", "shift"}, c.Modifiers)
}

func TestTranslateClickUnresolvedTargetErrors(t *testing.T) {
	_, err := Translate(ast.Click{Target: ast.Leaf(ast.Text("Sign In"))})
	require.Error(t, err)
}

func TestTranslateTypeDefaultsClearUnlessAppend(t *testing.T) {
	res, err := Translate(ast.Type{Target: resolvedID(1), Text: "hi"})
	require.NoError(t, err)
	ty := res.Scanner.(protocol.TypeAction)
	assert.True(t, ty.Clear)

	res2, err := Translate(ast.Type{Target: resolvedID(1), Text: "hi", Append: true})
	require.NoError(t, err)
	ty2 := res2.Scanner.(protocol.TypeAction)
	assert.False(t, ty2.Clear)
}

func TestTranslateSelectNumericValueUsesIndex(t *testing.T) {
	res, err := Translate(ast.Select{Target: resolvedID(1), Value: "3"})
	require.NoError(t, err)
	sel := res.Scanner.(protocol.SelectAction)
	require.NotNil(t, sel.Index)
	assert.Equal(t, 3, *sel.Index)
	assert.Empty(t, sel.Label)
}

func TestTranslateSelectNonNumericValueUsesLabel(t *testing.T) {
	res, err := Translate(ast.Select{Target: resolvedID(1), Value: "Red"})
	require.NoError(t, err)
	sel := res.Scanner.(protocol.SelectAction)
	assert.Nil(t, sel.Index)
	assert.Equal(t, "Red", sel.Label)
}

func TestTranslateWaitVisibleCarriesSelectorFromID(t *testing.T) {
	target := resolvedID(7)
	cond := ast.WaitCondition{Kind: ast.WaitVisible, Target: &target}
	res, err := Translate(ast.Wait{Condition: cond})
	require.NoError(t, err)
	w := res.Scanner.(protocol.WaitAction)
	assert.Equal(t, "visible", w.Condition)
	assert.Equal(t, "7", w.Selector)
}

func TestTranslateWaitItemsCarriesSelectorAndDefaultTimeout(t *testing.T) {
	cond := ast.WaitCondition{Kind: ast.WaitItems, Items: ".row"}
	res, err := Translate(ast.Wait{Condition: cond})
	require.NoError(t, err)
	w := res.Scanner.(protocol.WaitAction)
	assert.Equal(t, "items", w.Condition)
	assert.Equal(t, ".row", w.Selector)
	assert.Equal(t, uint64(defaultWaitTimeoutMs), w.TimeoutMs)
}

func TestTranslateStorageEscapesQuotesInScript(t *testing.T) {
	res, err := Translate(ast.Storage{Action: ast.StorageSet, Name: "it's", Value: "a'b"})
	require.NoError(t, err)
	exec := res.Scanner.(protocol.ExecuteAction)
	assert.Contains(t, exec.Script, `it\'s`)
	assert.Contains(t, exec.Script, `a\'b`)
	assert.Contains(t, exec.Script, "localStorage")
}

func TestTranslateStorageSessionArea(t *testing.T) {
	res, err := Translate(ast.Storage{Action: ast.StorageGet, Name: "k", Session: true})
	require.NoError(t, err)
	exec := res.Scanner.(protocol.ExecuteAction)
	assert.Contains(t, exec.Script, "sessionStorage")
}

func TestTranslateCookiesEachAction(t *testing.T) {
	cases := []struct {
		action ast.CookiesAction
	}{{ast.CookiesList}, {ast.CookiesGet}, {ast.CookiesSet}, {ast.CookiesDelete}, {ast.CookiesClear}}
	for _, c := range cases {
		res, err := Translate(ast.Cookies{Action: c.action, Name: "n", Value: "v"})
		require.NoError(t, err)
		assert.NotNil(t, res.Session)
	}
}

func TestTranslateIntentVerbsAreUnsupportedBeforeExpansion(t *testing.T) {
	for _, cmd := range []ast.Command{
		ast.Login{}, ast.Search{}, ast.Dismiss{}, ast.AcceptCookies{}, ast.ScrollUntil{},
	} {
		_, err := Translate(cmd)
		require.Error(t, err)
		_, ok := err.(*Unsupported)
		assert.True(t, ok)
	}
}

func TestTranslatePeripheralVerbsAreUnsupported(t *testing.T) {
	for _, cmd := range []ast.Command{
		ast.Exit{}, ast.Help{}, ast.Learn{}, ast.Intercept{}, ast.Requests{},
		ast.Console{}, ast.Errors{}, ast.Frames{}, ast.Device{}, ast.Devices{},
		ast.Media{}, ast.Trace{}, ast.Record{},
	} {
		_, err := Translate(cmd)
		require.Error(t, err)
	}
}

func TestTranslateScrollDefaultsAndSelector(t *testing.T) {
	res, err := Translate(ast.Scroll{})
	require.NoError(t, err)
	s := res.Scanner.(protocol.ScrollAction)
	assert.Equal(t, "down", s.Direction)
	assert.Equal(t, "page", s.Amount)
	assert.Nil(t, s.ID)
}

func TestTranslateTabActions(t *testing.T) {
	res, err := Translate(ast.Tab{Action: ast.TabNew, URL: "example.com"})
	require.NoError(t, err)
	n := res.Session.(protocol.TabNewAction)
	assert.Equal(t, "example.com", n.URL)

	res2, err := Translate(ast.Tab{Action: ast.TabClose, Index: 2, HasIdx: true})
	require.NoError(t, err)
	cl := res2.Session.(protocol.TabCloseAction)
	require.NotNil(t, cl.Index)
	assert.Equal(t, 2, *cl.Index)
}

func TestTranslateHeadersActionVariants(t *testing.T) {
	res, err := Translate(ast.Headers{Action: "set", Domain: "example.com", JSON: `{"x":"1"}`})
	require.NoError(t, err)
	set := res.Session.(protocol.HeadersSetAction)
	assert.Equal(t, "example.com", set.Domain)

	res2, err := Translate(ast.Headers{Action: "clear", Domain: "example.com"})
	require.NoError(t, err)
	_, ok := res2.Session.(protocol.HeadersClearAction)
	assert.True(t, ok)

	res3, err := Translate(ast.Headers{Action: ""})
	require.NoError(t, err)
	_, ok = res3.Session.(protocol.HeadersShowAction)
	assert.True(t, ok)
}
