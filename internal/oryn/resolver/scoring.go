package resolver

import (
	"strings"

	"oryn/internal/oryn/protocol"
)

// normalize lowercases, trims, and collapses internal whitespace to single
// spaces, per the text-scoring contract.
func normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

type matchSite struct {
	value     func(protocol.Element) (string, bool)
	exact     int
	contains  int // 0 means "no contains bonus for this site"
}

var textSites = []matchSite{
	{func(e protocol.Element) (string, bool) { return e.Text, e.Text != "" }, 100, 50},
	{func(e protocol.Element) (string, bool) { return e.Label, e.Label != "" }, 90, 45},
	{func(e protocol.Element) (string, bool) { return e.Attr("aria-label") }, 85, 42},
	{func(e protocol.Element) (string, bool) { return e.Attr("name") }, 86, 43},
	{func(e protocol.Element) (string, bool) { return e.Placeholder, e.Placeholder != "" }, 80, 40},
	{func(e protocol.Element) (string, bool) { return e.Value, e.Value != "" }, 70, 0},
	{func(e protocol.Element) (string, bool) { return e.Attr("title") }, 75, 0},
}

// TextScore returns the element's best match score for search string s
// across all text sites, or 0 if none match.
func TextScore(e protocol.Element, s string) int {
	needle := normalize(s)
	if needle == "" {
		return 0
	}
	best := 0
	for _, site := range textSites {
		v, ok := site.value(e)
		if !ok {
			continue
		}
		hay := normalize(v)
		if hay == needle {
			if site.exact > best {
				best = site.exact
			}
			continue
		}
		if site.contains > 0 && strings.Contains(hay, needle) {
			if site.contains > best {
				best = site.contains
			}
		}
	}
	return best
}

// RoleScore scores an element against a role/keyword search term.
func RoleScore(e protocol.Element, role string) int {
	role = strings.ToLower(role)
	best := 0
	bump := func(v string, score int) {
		if strings.ToLower(v) == role && score > best {
			best = score
		}
	}
	bump(e.Role, 100)
	if v, ok := e.Attr("role"); ok {
		bump(v, 95)
	}
	if v, ok := e.Attr("type"); ok {
		bump(v, 90)
	}
	if v, ok := e.Attr("autocomplete"); ok {
		bump(v, 85)
	}
	bump(e.ElementType, 80)
	if role == "submit" {
		typ, _ := e.Attr("type")
		if e.ElementType == "button" || (e.ElementType == "input" && strings.EqualFold(typ, "submit")) {
			if 85 > best {
				best = 85
			}
		}
	}
	if best > 0 && e.State.Disabled {
		best -= 20
	}
	return best
}
