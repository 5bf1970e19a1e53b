package store

import (
	"slices"
	"sync"
)

// Registry is a thread-safe name-keyed identity cache. Of returns the
// same instance for a given name for the lifetime of the registry,
// creating it on first request with the registry's factory.
type Registry[T any] struct {
	mu      sync.RWMutex
	create  func(name string) (T, error)
	entries map[string]T
}

// NewRegistry creates an empty registry. create is called at most once
// per name and is responsible for rejecting invalid names.
func NewRegistry[T any](create func(name string) (T, error)) *Registry[T] {
	return &Registry[T]{
		create:  create,
		entries: make(map[string]T),
	}
}

// Of returns the instance registered under name, creating it if needed.
// A factory error is returned unchanged and nothing is registered.
func (r *Registry[T]) Of(name string) (T, error) {
	r.mu.RLock()
	v, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if v, ok = r.entries[name]; ok {
		return v, nil
	}
	v, err := r.create(name)
	if err != nil {
		var zero T
		return zero, err
	}
	r.entries[name] = v
	return v, nil
}

// Lookup returns the instance registered under name without creating one.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// Names returns every registered name in lexicographic order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered instances.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
