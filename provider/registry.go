package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry holds provider factories by name, plus instances the caller has
// chosen to cache and share. All methods are safe for concurrent use.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry returns an empty registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: map[string]Factory[T]{},
		instances: map[string]T{},
	}
}

// RegisterFactory makes a factory available under name, replacing any
// earlier registration with the same name.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds a fresh instance through the factory registered under
// name. The instance is not cached; use Set when it should be shared.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, fmt.Errorf("provider %q: no factory registered", name)
	}
	inst, err := factory(cfg)
	if err != nil {
		return zero, fmt.Errorf("provider %q: %w", name, err)
	}
	return inst, nil
}

// Get returns the cached instance under name, if one was Set.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches an instance under name for later Get calls.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	r.instances[name] = instance
	r.mu.Unlock()
}

// Remove drops the cached instance under name without closing it.
func (r *Registry[T]) Remove(name string) {
	r.mu.Lock()
	delete(r.instances, name)
	r.mu.Unlock()
}

// List returns the names of all registered factories, sorted.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases every cached instance implementing Closeable and clears
// the instance cache. Factories stay registered.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, inst := range r.instances {
		if c, ok := any(inst).(Closeable); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing provider %q: %w", name, err))
			}
		}
	}
	r.instances = map[string]T{}
	return errors.Join(errs...)
}
