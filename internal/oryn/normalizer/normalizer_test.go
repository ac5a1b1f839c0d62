package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliasFolding(t *testing.T) {
	cases := map[string]string{
		"nav example.com":      "goto example.com",
		"navigate example.com": "goto example.com",
		"go to example.com":    "goto example.com",
		"scan":                 "observe",
		"quit":                 "exit",
		"accept cookies":       "accept_cookies",
	}
	for in, want := range cases {
		assert.Equal(t, want, Line(in), "input %q", in)
	}
}

func TestQuoteConversion(t *testing.T) {
	assert.Equal(t, `click "Sign In"`, Line(`click 'Sign In'`))
	assert.Equal(t, `click "say \"hi\""`, Line(`click 'say "hi"'`))
}

func TestAutoQuoteBareWords(t *testing.T) {
	assert.Equal(t, `click "Add to Cart"`, Line(`click Add to Cart`))
	assert.Equal(t, `click #5`, Line(`click #5`))
}

func TestAutoQuoteSelectorUntouched(t *testing.T) {
	got := Line(`click css(.btn)`)
	assert.Equal(t, `click css(".btn")`, got)
}

func TestShortFlagToLong(t *testing.T) {
	assert.Equal(t, `click "Sign In" --force`, Line(`click "Sign In" -Force`))
	assert.Equal(t, `scroll -5`, Line(`scroll -5`))
}

func TestKeyComboCoalescing(t *testing.T) {
	assert.Equal(t, `keys control+shift+a`, Line(`keys Control + Shift + A`))
}

func TestCommentHandling(t *testing.T) {
	assert.Equal(t, `goto example.com #comment`, Line(`goto example.com # comment`))
	assert.Equal(t, `click "item#5"`, Line(`click "item#5"`))
}

func TestTypeAutoQuoteBothArgs(t *testing.T) {
	assert.Equal(t, `type "email" "u@x.com"`, Line(`type email u@x.com`))
	assert.Equal(t, `type "search" "running shoes"`, Line(`type search running shoes`))
}

func TestTypeOrderingFixup(t *testing.T) {
	got := Line(`type email "x" inside "Form"`)
	assert.Equal(t, `type "email" inside "Form" "x"`, got)
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		`click Add to Cart`,
		`nav example.com`,
		`type email u@x.com`,
		`type "email" inside "Form" "x"`,
		`keys Control + Shift + A`,
		`click 'Sign In'`,
		`scroll until "Footer"`,
	}
	for _, in := range inputs {
		once := Line(in)
		twice := Line(once)
		assert.Equal(t, once, twice, "not idempotent for %q", in)
	}
}

func TestLinesPreservesOrder(t *testing.T) {
	out := Lines([]string{"nav a.com", "scan", "quit"})
	assert.Equal(t, []string{"goto a.com", "observe", "exit"}, out)
}
