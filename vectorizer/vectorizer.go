// Package vectorizer defines the text-to-vector capability and a named
// registry of vectorizer instances.
//
// Concrete embedding backends live outside this module; callers register
// their own implementations and address them by name.
package vectorizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a named vectorizer is not registered.
var ErrNotFound = errors.New("vectorizer not found")

// Vectorizer converts text payloads to fixed-length numeric vectors.
type Vectorizer interface {
	// Vectorize converts one text payload to a vector.
	Vectorize(ctx context.Context, text string) ([]float64, error)

	// BulkVectorize converts many text payloads at once. Implementations
	// must preserve order and return exactly one vector per input.
	BulkVectorize(ctx context.Context, texts []string) ([][]float64, error)
}

// Registry is a named collection of vectorizers. The registry never
// constructs vectorizers; entries are shared references to caller-supplied
// instances.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Vectorizer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Vectorizer)}
}

// Register adds v under name, overwriting any prior registration.
func (r *Registry) Register(name string, v Vectorizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = v
}

// Get returns the vectorizer registered under name.
func (r *Registry) Get(name string) (Vectorizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[name]
	return v, ok
}

// Resolve returns the vectorizer registered under name, or an error
// satisfying errors.Is(err, ErrNotFound).
func (r *Registry) Resolve(name string) (Vectorizer, error) {
	v, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v, nil
}

// Unregister removes the registration under name, if any.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, name)
}
