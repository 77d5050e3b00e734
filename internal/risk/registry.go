package risk

import (
	"sort"
	"sync"
)

// Registry holds one Manager per configured account. Managers are created at
// startup and live for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
}

func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

// Add registers a manager under its account name.
func (r *Registry) Add(m *Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[m.Account()] = m
}

// Get returns the manager for an account, nil when the account is unknown.
func (r *Registry) Get(account string) *Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.managers[account]
}

// Accounts returns the registered account names, sorted.
func (r *Registry) Accounts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatusAll reports every account's session state, keyed by account name.
func (r *Registry) StatusAll() map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Status, len(r.managers))
	for name, m := range r.managers {
		out[name] = m.Status()
	}
	return out
}
