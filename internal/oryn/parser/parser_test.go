package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oryn/internal/oryn/ast"
)

func TestClickTextTarget(t *testing.T) {
	cmd, err := Line(`click "Sign In"`)
	require.NoError(t, err)
	click, ok := cmd.(ast.Click)
	require.True(t, ok)
	assert.Equal(t, ast.Leaf(ast.Text("Sign In")), click.Target)
}

func TestClickIDTarget(t *testing.T) {
	cmd, err := Line(`click 5`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	assert.Equal(t, ast.Leaf(ast.ID(5)), click.Target)
}

func TestClickSelectorTarget(t *testing.T) {
	cmd, err := Line(`click css(".btn")`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	assert.Equal(t, ast.Leaf(ast.Selector("css", ".btn")), click.Target)
}

func TestRoleWordBecomesRoleAtomic(t *testing.T) {
	cmd, err := Line(`click email`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	assert.Equal(t, ast.Leaf(ast.Role("email")), click.Target)
}

func TestNonRoleBareWordBecomesText(t *testing.T) {
	cmd, err := Line(`click Continue`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	assert.Equal(t, ast.Leaf(ast.Text("Continue")), click.Target)
}

func TestRelationalTargetSingle(t *testing.T) {
	cmd, err := Line(`click "Delete" near "item 3"`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	want := ast.Relational(ast.RelNear, ast.Text("Delete"), ast.Leaf(ast.Text("item 3")))
	assert.Equal(t, want, click.Target)
}

// Relations fold right-associatively: "A near B inside C" means
// Near(A, Inside(B, C)), not Inside(Near(A, B), C).
func TestRelationalTargetRightAssociative(t *testing.T) {
	cmd, err := Line(`click "A" near "B" inside "C"`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	want := ast.Relational(ast.RelNear, ast.Text("A"),
		ast.Relational(ast.RelInside, ast.Text("B"), ast.Leaf(ast.Text("C"))))
	assert.Equal(t, want, click.Target)
	assert.Equal(t, ast.RelNear, click.Target.Relation)
	assert.Equal(t, ast.RelInside, click.Target.Anchor.Relation)
	assert.True(t, click.Target.Anchor.Anchor.IsAtomic())
}

func TestInRelationWordAliasesInside(t *testing.T) {
	cmd, err := Line(`click "Submit" in "Form"`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	assert.Equal(t, ast.RelInside, click.Target.Relation)
}

func TestClickOptionFlags(t *testing.T) {
	cmd, err := Line(`click "Sign In" --double --right --force`)
	require.NoError(t, err)
	click := cmd.(ast.Click)
	assert.True(t, click.Double)
	assert.True(t, click.Right)
	assert.True(t, click.Force)
	assert.False(t, click.Middle)
}

func TestFlagWithEqualsValue(t *testing.T) {
	cmd, err := Line(`goto example.com --timeout=5000`)
	require.NoError(t, err)
	g := cmd.(ast.Goto)
	assert.Equal(t, "5000", g.Timeout)
}

func TestFlagWithSpaceValue(t *testing.T) {
	cmd, err := Line(`goto example.com --timeout 5000`)
	require.NoError(t, err)
	g := cmd.(ast.Goto)
	assert.Equal(t, "5000", g.Timeout)
}

func TestBareFlagDefaultsTrue(t *testing.T) {
	cmd, err := Line(`refresh --hard`)
	require.NoError(t, err)
	r := cmd.(ast.Refresh)
	assert.True(t, r.Hard)
}

func TestTypeRequiresTargetThenText(t *testing.T) {
	cmd, err := Line(`type "email" "u@x.com"`)
	require.NoError(t, err)
	ty := cmd.(ast.Type)
	assert.Equal(t, ast.Leaf(ast.Text("email")), ty.Target)
	assert.Equal(t, "u@x.com", ty.Text)
}

func TestTypeMissingTextErrors(t *testing.T) {
	_, err := Line(`type "email"`)
	require.Error(t, err)
}

func TestTypeWithRelationalTargetAndText(t *testing.T) {
	cmd, err := Line(`type "email" inside "Form" "u@x.com"`)
	require.NoError(t, err)
	ty := cmd.(ast.Type)
	assert.Equal(t, "u@x.com", ty.Text)
	assert.Equal(t, ast.RelInside, ty.Target.Relation)
}

func TestWaitLoadCondition(t *testing.T) {
	cmd, err := Line(`wait load`)
	require.NoError(t, err)
	w := cmd.(ast.Wait)
	assert.Equal(t, ast.WaitLoad, w.Condition.Kind)
}

func TestWaitVisibleConditionCarriesTarget(t *testing.T) {
	cmd, err := Line(`wait visible "Banner"`)
	require.NoError(t, err)
	w := cmd.(ast.Wait)
	require.Equal(t, ast.WaitVisible, w.Condition.Kind)
	require.NotNil(t, w.Condition.Target)
	assert.Equal(t, ast.Leaf(ast.Text("Banner")), *w.Condition.Target)
}

func TestWaitExistsRequiresSelector(t *testing.T) {
	_, err := Line(`wait exists`)
	require.Error(t, err)
}

func TestWaitItemsParsesSelectorAndCount(t *testing.T) {
	cmd, err := Line(`wait items css(".row") 3`)
	require.NoError(t, err)
	w := cmd.(ast.Wait)
	assert.Equal(t, ast.WaitItems, w.Condition.Kind)
	assert.Equal(t, ".row", w.Condition.Items)
	assert.Equal(t, 3, w.Condition.Count)
}

func TestWaitUnknownConditionErrors(t *testing.T) {
	_, err := Line(`wait bogus`)
	require.Error(t, err)
}

func TestScrollUntilForm(t *testing.T) {
	cmd, err := Line(`scroll until "Footer"`)
	require.NoError(t, err)
	su := cmd.(ast.ScrollUntil)
	assert.Equal(t, ast.Leaf(ast.Text("Footer")), su.Target)
}

func TestScrollDirectionDefaultsDown(t *testing.T) {
	cmd, err := Line(`scroll`)
	require.NoError(t, err)
	s := cmd.(ast.Scroll)
	assert.Equal(t, "down", s.Direction)
	assert.Nil(t, s.Target)
}

func TestScrollWithDirectionWord(t *testing.T) {
	cmd, err := Line(`scroll up`)
	require.NoError(t, err)
	s := cmd.(ast.Scroll)
	assert.Equal(t, "up", s.Direction)
}

func TestScrollWithTargetThenDirection(t *testing.T) {
	cmd, err := Line(`scroll "Sidebar" down`)
	require.NoError(t, err)
	s := cmd.(ast.Scroll)
	require.NotNil(t, s.Target)
	assert.Equal(t, ast.Leaf(ast.Text("Sidebar")), *s.Target)
	assert.Equal(t, "down", s.Direction)
}

func TestSelectByIndexOrLabelPassThrough(t *testing.T) {
	cmd, err := Line(`select "Country" "3"`)
	require.NoError(t, err)
	sel := cmd.(ast.Select)
	assert.Equal(t, "3", sel.Value)
}

func TestCookiesDefaultsToList(t *testing.T) {
	cmd, err := Line(`cookies`)
	require.NoError(t, err)
	c := cmd.(ast.Cookies)
	assert.Equal(t, ast.CookiesList, c.Action)
}

func TestCookiesSetParsesNameAndValue(t *testing.T) {
	cmd, err := Line(`cookies set session abc123`)
	require.NoError(t, err)
	c := cmd.(ast.Cookies)
	assert.Equal(t, ast.CookiesSet, c.Action)
	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "abc123", c.Value)
}

func TestTabNewCarriesURL(t *testing.T) {
	cmd, err := Line(`tab new example.com`)
	require.NoError(t, err)
	tab := cmd.(ast.Tab)
	assert.Equal(t, ast.TabNew, tab.Action)
	assert.Equal(t, "example.com", tab.URL)
}

func TestTabSwitchParsesIndex(t *testing.T) {
	cmd, err := Line(`tab switch 2`)
	require.NoError(t, err)
	tab := cmd.(ast.Tab)
	assert.Equal(t, ast.TabSwitch, tab.Action)
	assert.True(t, tab.HasIdx)
	assert.Equal(t, 2, tab.Index)
}

func TestUnknownVerbErrors(t *testing.T) {
	_, err := Line(`frobnicate "X"`)
	require.Error(t, err)
}

func TestEmptyLineParsesToNil(t *testing.T) {
	cmd, err := Line("")
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestCommentOnlyLineParsesToNil(t *testing.T) {
	cmd, err := Line("# just a comment")
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestLinesSkipsBlanksAndCollectsErrors(t *testing.T) {
	cmds, errs := Lines([]string{`click "A"`, "", `bogus verb`, `back`})
	require.Len(t, errs, 1)
	require.Len(t, cmds, 2)
	assert.Equal(t, "click", cmds[0].Verb())
	assert.Equal(t, "back", cmds[1].Verb())
}

func TestDismissWithoutTargetLeavesTargetNil(t *testing.T) {
	cmd, err := Line(`dismiss`)
	require.NoError(t, err)
	d := cmd.(ast.Dismiss)
	assert.Nil(t, d.Target)
}

func TestDismissWithTarget(t *testing.T) {
	cmd, err := Line(`dismiss "Modal"`)
	require.NoError(t, err)
	d := cmd.(ast.Dismiss)
	require.NotNil(t, d.Target)
	assert.Equal(t, ast.Leaf(ast.Text("Modal")), *d.Target)
}
