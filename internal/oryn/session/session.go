// Package session tracks the named browser sessions, per-domain outbound
// headers, and cookie-jar snapshots oryn's "session"/"headers"/"state" verb
// families operate on. The underlying browser context lives in the backend;
// Manager only keeps the bookkeeping the core needs between commands.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Info is the metadata tracked for one named session.
type Info struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Mode      string    `json:"mode" yaml:"mode"` // "" or "incognito"
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Active    bool      `json:"active" yaml:"active"`
}

// Manager is the in-process registry of named sessions and per-domain
// headers; safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	byName  map[string]*Info
	order   []string
	current string
	headers map[string]map[string]string // domain -> header -> value
}

// NewManager returns an empty Manager with a single implicit "default"
// session already active, mirroring a freshly launched browser context.
func NewManager() *Manager {
	m := &Manager{
		byName:  make(map[string]*Info),
		headers: make(map[string]map[string]string),
	}
	m.byName["default"] = &Info{ID: uuid.NewString(), Name: "default", CreatedAt: time.Now(), Active: true}
	m.order = append(m.order, "default")
	m.current = "default"
	return m
}

// New registers a new named session, activating it.
func (m *Manager) New(name, mode string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		name = uuid.NewString()[:8]
	}
	if _, exists := m.byName[name]; exists {
		return Info{}, fmt.Errorf("session %q already exists", name)
	}
	info := &Info{ID: uuid.NewString(), Name: name, Mode: mode, CreatedAt: time.Now()}
	m.byName[name] = info
	m.order = append(m.order, name)
	m.activateLocked(name)
	return *info, nil
}

// Switch makes name the active session.
func (m *Manager) Switch(name string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.byName[name]
	if !ok {
		return Info{}, fmt.Errorf("no such session %q", name)
	}
	m.activateLocked(name)
	return *info, nil
}

func (m *Manager) activateLocked(name string) {
	for n, info := range m.byName {
		info.Active = n == name
	}
	m.current = name
}

// Close removes a named session. Closing the active session activates the
// oldest remaining session ("default" unless it was closed earlier); when no
// session remains, none is active.
func (m *Manager) Close(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[name]; !ok {
		return fmt.Errorf("no such session %q", name)
	}
	delete(m.byName, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.current == name {
		if len(m.order) > 0 {
			m.activateLocked(m.order[0])
		} else {
			m.current = ""
		}
	}
	return nil
}

// List returns every tracked session in creation order.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, *m.byName[n])
	}
	return out
}

// Current returns the active session, if any.
func (m *Manager) Current() (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.byName[m.current]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// SetHeaders records the outbound headers to apply for domain, decoded from
// the caller's JSON map.
func (m *Manager) SetHeaders(domain string, headers map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[domain] = headers
}

// Headers returns the outbound headers registered for domain.
func (m *Manager) Headers(domain string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.headers[domain]
}

// ClearHeaders removes every header registered for domain ("" clears all).
func (m *Manager) ClearHeaders(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if domain == "" {
		m.headers = make(map[string]map[string]string)
		return
	}
	delete(m.headers, domain)
}
