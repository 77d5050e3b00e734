package broker

import (
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownVenue reports a venue name with no registered client. It is a
// configuration error, not a runtime one.
type ErrUnknownVenue struct {
	Venue string
}

func (e ErrUnknownVenue) Error() string {
	return fmt.Sprintf("venue %q not configured", e.Venue)
}

// Registry maps venue identifiers to Client implementations. Registration
// happens at startup; lookups are concurrency-safe.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register binds a venue name to a client, replacing any previous binding.
func (r *Registry) Register(venue string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[venue] = c
}

// Get returns the client for a venue or ErrUnknownVenue.
func (r *Registry) Get(venue string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[venue]
	if !ok {
		return nil, ErrUnknownVenue{Venue: venue}
	}
	return c, nil
}

// Venues returns the registered venue names, sorted.
func (r *Registry) Venues() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for v := range r.clients {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}
