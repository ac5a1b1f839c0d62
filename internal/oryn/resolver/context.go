// Package resolver binds semantic Targets to concrete element IDs against a
// ResolverContext built from the latest page scan.
package resolver

import "oryn/internal/oryn/protocol"

// Context is an immutable view over a ScanResult exposing the accessors the
// resolution strategies need.
type Context struct {
	scan    protocol.ScanResult
	byID    map[int]protocol.Element
	focused int
	hasFoc  bool
}

func NewContext(scan protocol.ScanResult) *Context {
	byID := make(map[int]protocol.Element, len(scan.Elements))
	focused, hasFoc := 0, false
	for _, el := range scan.Elements {
		byID[el.ID] = el
		if el.State.Focused {
			focused, hasFoc = el.ID, true
		}
	}
	return &Context{scan: scan, byID: byID, focused: focused, hasFoc: hasFoc}
}

func (c *Context) Elements() []protocol.Element { return c.scan.Elements }

func (c *Context) Get(id int) (protocol.Element, bool) {
	el, ok := c.byID[id]
	return el, ok
}

func (c *Context) Pattern(kind string) (protocol.Pattern, bool) {
	return c.scan.Pattern(kind)
}

func (c *Context) Focused() (protocol.Element, bool) {
	if !c.hasFoc {
		return protocol.Element{}, false
	}
	return c.Get(c.focused)
}

func (c *Context) ScanResult() protocol.ScanResult { return c.scan }
