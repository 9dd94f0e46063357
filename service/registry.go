// Package service provides the ordered registry the dispatcher resolves
// service instances from. Registration order is preserved because
// lifecycle hooks run across all services in that order.
package service

import (
	"fmt"
	"sync"
)

// Registry maps service identifiers to instances. It is safe for
// concurrent use, though registration is expected to finish before the
// container is prepared.
type Registry struct {
	mu    sync.RWMutex
	order []string
	items map[string]any
}

// NewRegistry creates an empty service registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]any)}
}

// Provide registers an instance under id. Registering the same id twice
// is an error.
func (r *Registry) Provide(id string, svc any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.items[id]; dup {
		return fmt.Errorf("service: %q already registered", id)
	}
	r.items[id] = svc
	r.order = append(r.order, id)
	return nil
}

// Get returns the instance registered under id.
func (r *Registry) Get(id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.items[id]
	return svc, ok
}

// MustGet returns the instance or panics. Use in wiring code where a
// missing service is a programming error.
func (r *Registry) MustGet(id string) any {
	svc, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("service: missing %q", id))
	}
	return svc
}

// Names returns the registered identifiers in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
