package learner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"oryn/internal/oryn/obslog"
)

// Store persists Intents as one YAML file per domain/name, mirroring
// LearnerStorage's ~/.oryn/learned/<domain>/<name>.yaml layout.
type Store struct {
	basePath string
}

// NewStore returns a Store rooted at basePath. An empty basePath resolves
// to ~/.oryn/learned, falling back to ./.oryn/learned if the home
// directory cannot be determined.
func NewStore(basePath string) *Store {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		basePath = filepath.Join(home, ".oryn", "learned")
	}
	return &Store{basePath: basePath}
}

func (s *Store) domainDir(domain string) string {
	return filepath.Join(s.basePath, sanitize(domain))
}

func (s *Store) path(domain, name string) string {
	return filepath.Join(s.domainDir(domain), sanitize(name)+".yaml")
}

// sanitize keeps domain/name path segments from escaping basePath.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, string(filepath.Separator), "_")
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" {
		return "_"
	}
	return s
}

// Save writes intent to <domain>/<name>.yaml, creating the domain
// directory as needed.
func (s *Store) Save(intent Intent) error {
	if err := os.MkdirAll(s.domainDir(intent.Domain), 0755); err != nil {
		return fmt.Errorf("learner: create domain dir: %w", err)
	}
	data, err := yaml.Marshal(intent)
	if err != nil {
		return fmt.Errorf("learner: marshal intent: %w", err)
	}
	if err := os.WriteFile(s.path(intent.Domain, intent.Name), data, 0644); err != nil {
		return fmt.Errorf("learner: write intent: %w", err)
	}
	obslog.Get(obslog.CategoryIntent).Info("saved intent %s/%s (%d lines)", intent.Domain, intent.Name, len(intent.Lines))
	return nil
}

// Load reads a single named intent.
func (s *Store) Load(domain, name string) (Intent, error) {
	data, err := os.ReadFile(s.path(domain, name))
	if err != nil {
		return Intent{}, fmt.Errorf("learner: no such intent %s/%s: %w", domain, name, err)
	}
	var intent Intent
	if err := yaml.Unmarshal(data, &intent); err != nil {
		return Intent{}, fmt.Errorf("learner: parse intent %s/%s: %w", domain, name, err)
	}
	return intent, nil
}

// List returns every intent recorded for domain, skipping unreadable files
// rather than failing the whole listing.
func (s *Store) List(domain string) ([]Intent, error) {
	entries, err := os.ReadDir(s.domainDir(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("learner: list domain %s: %w", domain, err)
	}
	var out []Intent
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.domainDir(domain), e.Name()))
		if err != nil {
			continue
		}
		var intent Intent
		if err := yaml.Unmarshal(data, &intent); err != nil {
			obslog.Get(obslog.CategoryIntent).Warn("skipping malformed intent file %s: %v", e.Name(), err)
			continue
		}
		out = append(out, intent)
	}
	return out, nil
}

// Delete removes a named intent. Deleting a missing intent is not an error.
func (s *Store) Delete(domain, name string) error {
	err := os.Remove(s.path(domain, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("learner: delete intent %s/%s: %w", domain, name, err)
	}
	return nil
}

// Export copies a named intent's YAML to an arbitrary destination path.
func (s *Store) Export(domain, name, destPath string) error {
	data, err := os.ReadFile(s.path(domain, name))
	if err != nil {
		return fmt.Errorf("learner: export %s/%s: %w", domain, name, err)
	}
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("learner: export %s/%s: %w", domain, name, err)
		}
	}
	return os.WriteFile(destPath, data, 0644)
}
