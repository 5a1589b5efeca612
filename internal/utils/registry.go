package utils

import (
	"fmt"
	"iter"
	"sync"
)

// RegistryCheck vets an entry before it is stored. has reports whether the
// key is already present.
type RegistryCheck[K comparable, V any] func(key K, value V, has bool) error

// Registry is a concurrency-safe map that iterates in registration order
type Registry[K comparable, V any] struct {
	name   string
	checks []RegistryCheck[K, V]

	mu    sync.RWMutex
	items map[K]V
	keys  []K
}

// NewRegistry creates a registry whose errors are prefixed with name
func NewRegistry[K comparable, V any](name string, checks ...RegistryCheck[K, V]) *Registry[K, V] {
	return &Registry[K, V]{
		name:   name,
		checks: checks,
		items:  make(map[K]V),
	}
}

// Register stores value under key once every check passes. Replacing a key
// keeps its position.
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, has := r.items[key]
	for _, check := range r.checks {
		if err := check(key, value, has); err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
	}
	if !has {
		r.keys = append(r.keys, key)
	}
	r.items[key] = value
	return nil
}

// Get returns the value stored under key
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// Has reports whether key is registered
func (r *Registry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// Len returns the number of entries
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Keys returns a copy of the keys in registration order
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]K(nil), r.keys...)
}

// Values returns the values in registration order
func (r *Registry[K, V]) Values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]V, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.items[k]
	}
	return out
}

// All iterates over a snapshot of the entries in registration order
func (r *Registry[K, V]) All() iter.Seq2[K, V] {
	keys, values := r.snapshot()
	return func(yield func(K, V) bool) {
		for i, k := range keys {
			if !yield(k, values[i]) {
				return
			}
		}
	}
}

func (r *Registry[K, V]) snapshot() ([]K, []V) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := make([]V, len(r.keys))
	for i, k := range r.keys {
		values[i] = r.items[k]
	}
	return append([]K(nil), r.keys...), values
}

// Remove drops key, reporting whether it was present
func (r *Registry[K, V]) Remove(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		return false
	}
	delete(r.items, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Unique rejects a key that is already registered
func Unique[K comparable, V any](what string) RegistryCheck[K, V] {
	return func(key K, _ V, has bool) error {
		if has {
			return fmt.Errorf("%s %v is already registered", what, key)
		}
		return nil
	}
}

// NonZeroKey rejects the zero key
func NonZeroKey[K comparable, V any](what string) RegistryCheck[K, V] {
	return func(key K, _ V, _ bool) error {
		var zero K
		if key == zero {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}
