package resolver

import "fmt"

// ResolveError is the structured failure the resolver surfaces up to the
// executor: a target description, the reason it could not resolve, and the
// strategies that were attempted.
type ResolveError struct {
	TargetDescription   string
	Reason              string
	AttemptedStrategies []string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not resolve %s: %s (tried: %v)", e.TargetDescription, e.Reason, e.AttemptedStrategies)
}

// IsNoMatch / IsStaleContext classify a ResolveError for the executor's
// rescan-and-retry policy.
func (e *ResolveError) IsNoMatch() bool      { return e.Reason == "no_match" }
func (e *ResolveError) IsStaleContext() bool { return e.Reason == "stale_context" }

func noMatch(desc string, strategies ...string) error {
	return &ResolveError{TargetDescription: desc, Reason: "no_match", AttemptedStrategies: strategies}
}

func staleContext(desc string) error {
	return &ResolveError{TargetDescription: desc, Reason: "stale_context", AttemptedStrategies: []string{"lookup"}}
}

func tie(desc string, ids []int) error {
	return &ResolveError{
		TargetDescription:   desc,
		Reason:              fmt.Sprintf("ambiguous: candidates %v tied", ids),
		AttemptedStrategies: []string{"unique"},
	}
}
