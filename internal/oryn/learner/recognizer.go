package learner

import (
	"fmt"

	"oryn/internal/oryn/ast"
)

// structuralKey reduces a Command to a string that ignores variable
// parameters (typed text, selected values, wait timeouts) but preserves the
// structural identity of the command and any Target it carries, the same
// distinction oryn-core's Recognizer draws between a Command's shape and
// its arguments.
func structuralKey(cmd ast.Command) string {
	switch c := cmd.(type) {
	case ast.Click:
		return "click:" + c.Target.String()
	case ast.Type:
		return "type:" + c.Target.String()
	case ast.Clear:
		return "clear:" + c.Target.String()
	case ast.Select:
		return "select:" + c.Target.String()
	case ast.Check:
		return "check:" + c.Target.String()
	case ast.Uncheck:
		return "uncheck:" + c.Target.String()
	case ast.Hover:
		return "hover:" + c.Target.String()
	case ast.Focus:
		return "focus:" + c.Target.String()
	case ast.Submit:
		if c.Target != nil {
			return "submit:" + c.Target.String()
		}
		return "submit:<infer>"
	case ast.Scroll:
		if c.Target != nil {
			return "scroll:" + c.Target.String()
		}
		return "scroll:page"
	case ast.Login:
		return "composite:login"
	case ast.Search:
		return "composite:search"
	case ast.Dismiss:
		return "composite:dismiss"
	case ast.AcceptCookies:
		return "composite:accept_cookies"
	case ast.ScrollUntil:
		return "composite:scroll_until:" + c.Target.String()
	}
	return "verb:" + cmd.Verb()
}

// Pattern is a repeated subsequence the Recognizer found in an action
// history, along with how many times it recurred.
type Pattern struct {
	Sequence    []ast.Command
	Occurrences int
}

type occurrence struct {
	start, length int
}

// Recognizer finds repeated command subsequences in a recorded history — a
// sliding window over each candidate length, grouped by structural key so
// typed text and selected values don't prevent two occurrences of "the same
// action" from being recognized as the same pattern.
type Recognizer struct {
	minObservations int
	maxWindow       int
}

// NewRecognizer returns a Recognizer that only reports patterns observed at
// least minObservations times, searching windows up to maxWindow commands long.
func NewRecognizer(minObservations, maxWindow int) *Recognizer {
	if minObservations < 2 {
		minObservations = 2
	}
	if maxWindow < 1 {
		maxWindow = 8
	}
	return &Recognizer{minObservations: minObservations, maxWindow: maxWindow}
}

// FindPatterns scans history for repeated structural subsequences.
func (r *Recognizer) FindPatterns(history []ast.Command) []Pattern {
	keys := make([]string, len(history))
	for i, cmd := range history {
		keys[i] = structuralKey(cmd)
	}

	seen := make(map[string][]occurrence)

	for length := r.maxWindow; length >= 2; length-- {
		for start := 0; start+length <= len(keys); start++ {
			sig := windowSignature(keys[start : start+length])
			seen[sig] = append(seen[sig], occurrence{start: start, length: length})
		}
	}

	var patterns []Pattern
	usedStarts := make(map[int]bool)
	for _, occs := range seen {
		if len(occs) < r.minObservations {
			continue
		}
		nonOverlapping := filterOverlapping(occs)
		if len(nonOverlapping) < r.minObservations {
			continue
		}
		first := nonOverlapping[0]
		if usedStarts[first.start] {
			continue
		}
		usedStarts[first.start] = true
		patterns = append(patterns, Pattern{
			Sequence:    append([]ast.Command(nil), history[first.start:first.start+first.length]...),
			Occurrences: len(nonOverlapping),
		})
	}
	return patterns
}

func windowSignature(keys []string) string {
	s := ""
	for _, k := range keys {
		s += k + "\x00"
	}
	return s
}

func filterOverlapping(occs []occurrence) []occurrence {
	var out []occurrence
	lastEnd := -1
	for _, o := range occs {
		if o.start >= lastEnd {
			out = append(out, o)
			lastEnd = o.start + o.length
		}
	}
	return out
}

// Describe renders a Pattern as a short human-readable summary.
func Describe(p Pattern) string {
	verbs := make([]string, len(p.Sequence))
	for i, cmd := range p.Sequence {
		verbs[i] = cmd.Verb()
	}
	return fmt.Sprintf("%v (seen %d times)", verbs, p.Occurrences)
}
