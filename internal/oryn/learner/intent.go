// Package learner records, persists, recognizes, and verifies named
// "intents" — reusable sequences of oryn command lines a user has taught
// the system, grounded on the oryn-core learner subsystem (recognizer.rs,
// storage.rs) and the common intent verifier (verifier.rs).
package learner

import "time"

// Intent is a named, recorded sequence of canonical command lines for a
// domain. Commands are stored as the raw lines the parser already accepts,
// rather than a serialized AST: the executor replays an Intent the same way
// it runs any script, so no separate command-decoding path is needed.
type Intent struct {
	Name      string    `yaml:"name"`
	Domain    string    `yaml:"domain"`
	Lines     []string  `yaml:"lines"`
	CreatedAt time.Time `yaml:"created_at"`
	Notes     string    `yaml:"notes,omitempty"`
}
