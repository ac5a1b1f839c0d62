// Package ast defines the typed Command AST the Parser produces and the
// Resolver consumes, including the recursive Target algebra.
package ast

import "fmt"

// RelationKind is the closed set of spatial/structural relations a Target
// chain can fold over.
type RelationKind string

const (
	RelNear     RelationKind = "near"
	RelInside   RelationKind = "inside"
	RelContains RelationKind = "contains"
	RelAfter    RelationKind = "after"
	RelBefore   RelationKind = "before"
)

// AtomicKind discriminates the leaf of a Target tree.
type AtomicKind int

const (
	AtomicID AtomicKind = iota
	AtomicText
	AtomicRole
	AtomicSelector
	AtomicInfer
)

// Atomic is a Target leaf: an element id, free text, an ARIA/semantic role,
// a css()/xpath() selector, or Infer (no target supplied by the user).
type Atomic struct {
	Kind          AtomicKind
	ID            int
	Text          string
	Role          string
	SelectorKind  string // "css" or "xpath"
	SelectorValue string
}

func ID(id int) Atomic              { return Atomic{Kind: AtomicID, ID: id} }
func Text(s string) Atomic          { return Atomic{Kind: AtomicText, Text: s} }
func Role(s string) Atomic          { return Atomic{Kind: AtomicRole, Role: s} }
func Infer() Atomic                 { return Atomic{Kind: AtomicInfer} }
func Selector(kind, value string) Atomic {
	return Atomic{Kind: AtomicSelector, SelectorKind: kind, SelectorValue: value}
}

func (a Atomic) String() string {
	switch a.Kind {
	case AtomicID:
		return fmt.Sprintf("%d", a.ID)
	case AtomicText:
		return fmt.Sprintf("%q", a.Text)
	case AtomicRole:
		return a.Role
	case AtomicSelector:
		return fmt.Sprintf("%s(%q)", a.SelectorKind, a.SelectorValue)
	case AtomicInfer:
		return "<infer>"
	}
	return "<unknown atomic>"
}

// Target is a recursive semantic reference: Atomic, optionally wrapped in a
// Relation pointing at another Target (the "anchor"). Relational targets
// parse right-associatively: "A near B inside C" is Near(A, Inside(B, C)).
type Target struct {
	Atomic   Atomic
	Relation RelationKind // "" when this node is a bare Atomic
	Anchor   *Target      // nil when Relation == ""
}

func Leaf(a Atomic) Target { return Target{Atomic: a} }

func Relational(kind RelationKind, target Atomic, anchor Target) Target {
	return Target{Atomic: target, Relation: kind, Anchor: &anchor}
}

// IsAtomic reports whether this node carries no relation (a tree leaf).
func (t Target) IsAtomic() bool { return t.Relation == "" }

func (t Target) String() string {
	if t.IsAtomic() {
		return t.Atomic.String()
	}
	return fmt.Sprintf("%s %s (%s)", t.Atomic, t.Relation, t.Anchor)
}
