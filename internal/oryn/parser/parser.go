// Package parser turns canonical (normalized) lines into the typed
// Command/Target AST in package ast.
package parser

import (
	"strconv"
	"strings"

	"oryn/internal/oryn/ast"
)

var roleWords = map[string]bool{
	"email": true, "password": true, "search": true, "submit": true,
	"username": true, "phone": true, "url": true, "link": true,
	"button": true, "input": true, "checkbox": true, "radio": true,
}

var relationWords = map[string]ast.RelationKind{
	"near": ast.RelNear, "inside": ast.RelInside, "in": ast.RelInside,
	"after": ast.RelAfter, "before": ast.RelBefore, "contains": ast.RelContains,
}

type cursor struct {
	toks []token
	pos  int
}

func (c *cursor) peek() (token, bool) {
	if c.pos >= len(c.toks) {
		return token{}, false
	}
	return c.toks[c.pos], true
}

func (c *cursor) next() (token, bool) {
	t, ok := c.peek()
	if ok {
		c.pos++
	}
	return t, ok
}

// Lines parses already-normalized lines into Commands, one per non-empty
// line. A single-line diagnostic aborts parsing that line only.
func Lines(lines []string) ([]ast.Command, []error) {
	var cmds []ast.Command
	var errs []error
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		cmd, err := Line(l)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, errs
}

// Line parses one canonical command line into a Command.
func Line(line string) (ast.Command, error) {
	code := line
	if idx := strings.Index(line, " #"); idx >= 0 {
		code = line[:idx]
	} else if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return nil, nil
	}
	toks, err := tokenize(strings.TrimSpace(code))
	if err != nil {
		return nil, wrap(line, err)
	}
	if len(toks) == 0 {
		return nil, nil
	}
	if toks[0].kind != tokWord {
		return nil, wrap(line, errorf("expected a verb"))
	}
	verb := strings.ToLower(toks[0].text)
	c := &cursor{toks: toks[1:]}
	fn, ok := verbTable[verb]
	if !ok {
		return nil, wrap(line, errorf("unknown verb %q", verb))
	}
	cmd, err := fn(c)
	if err != nil {
		return nil, wrap(line, err)
	}
	return cmd, nil
}

// parseTarget consumes atomic (relation atomic)* and right-folds it.
func (c *cursor) parseTarget() (ast.Target, error) {
	var atoms []ast.Atomic
	var rels []ast.RelationKind
	a, err := c.parseAtomic()
	if err != nil {
		return ast.Target{}, err
	}
	atoms = append(atoms, a)
	for {
		t, ok := c.peek()
		if !ok || t.kind != tokWord {
			break
		}
		rel, isRel := relationWords[strings.ToLower(t.text)]
		if !isRel {
			break
		}
		c.next()
		next, err := c.parseAtomic()
		if err != nil {
			return ast.Target{}, err
		}
		atoms = append(atoms, next)
		rels = append(rels, rel)
	}
	result := ast.Leaf(atoms[len(atoms)-1])
	for i := len(atoms) - 2; i >= 0; i-- {
		result = ast.Relational(rels[i], atoms[i], result)
	}
	return result, nil
}

func (c *cursor) parseAtomic() (ast.Atomic, error) {
	t, ok := c.next()
	if !ok {
		return ast.Atomic{}, errorf("expected a target")
	}
	switch t.kind {
	case tokSelector:
		return ast.Selector(t.selKind, t.text), nil
	case tokString:
		return ast.Text(t.text), nil
	case tokWord:
		if n, err := strconv.Atoi(t.text); err == nil {
			return ast.ID(n), nil
		}
		if roleWords[strings.ToLower(t.text)] {
			return ast.Role(strings.ToLower(t.text)), nil
		}
		return ast.Text(t.text), nil
	default:
		return ast.Atomic{}, errorf("unexpected token in target position")
	}
}

// parseOptions consumes the remaining --flag [value] pairs into a map.
func (c *cursor) parseOptions() ast.Options {
	opts := ast.Options{}
	for {
		t, ok := c.peek()
		if !ok {
			break
		}
		if t.kind != tokFlag {
			c.pos++
			continue
		}
		c.next()
		if t.hasVal {
			opts[t.flagName] = t.flagVal
			continue
		}
		if nt, ok := c.peek(); ok && nt.kind != tokFlag {
			c.next()
			opts[t.flagName] = valueText(nt)
			continue
		}
		opts[t.flagName] = "true"
	}
	return opts
}

func valueText(t token) string {
	switch t.kind {
	case tokString, tokSelector:
		return t.text
	default:
		return t.text
	}
}

func optBool(o ast.Options, key string) bool {
	v, ok := o.Get(key)
	return ok && (v == "true" || v == "")
}

func optStr(o ast.Options, key string) string {
	v, _ := o.Get(key)
	return v
}
