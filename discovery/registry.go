package discovery

import (
	"fmt"
	"sync"
)

// Registry maintains discoveries keyed by identifier. Registration order is
// preserved: it has no effect on matching (discoveries are independent) but
// determines apply-phase ordering, which callers rely on when one
// discovery's side effects must land before another's (taxonomies before
// the content types that reference them). The engine does not enforce
// dependency ordering — register in the order you need applied.
type Registry struct {
	mu          sync.RWMutex
	order       []string
	discoveries map[string]Discovery
}

// NewRegistry creates a new empty discovery registry.
func NewRegistry() *Registry {
	return &Registry{discoveries: make(map[string]Discovery)}
}

// Register adds a discovery under its identifier. Registering a second
// discovery under an existing identifier fails with ErrDuplicateIdentifier.
func (r *Registry) Register(d Discovery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := d.Identifier()
	if _, exists := r.discoveries[id]; exists {
		return fmt.Errorf("%q: %w", id, ErrDuplicateIdentifier)
	}

	r.discoveries[id] = d
	r.order = append(r.order, id)
	return nil
}

// Get returns the discovery registered under the identifier.
func (r *Registry) Get(identifier string) (Discovery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.discoveries[identifier]
	if !ok {
		return nil, fmt.Errorf("%q: %w", identifier, ErrNotFound)
	}
	return d, nil
}

// Has reports whether an identifier is registered.
func (r *Registry) Has(identifier string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.discoveries[identifier]
	return ok
}

// All returns every registered discovery in registration order.
func (r *Registry) All() []Discovery {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Discovery, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.discoveries[id])
	}
	return out
}

// Identifiers returns all registered identifiers in registration order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
