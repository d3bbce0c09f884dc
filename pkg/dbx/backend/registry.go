package backend

import (
	"context"
	"fmt"
	"sync"
)

// Registry manages registration and retrieval of backend Factories, in the
// shape of redb-open's adapter.Registry: an RWMutex-guarded map, plus a
// package-level global registry for drivers that self-register via
// init().
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates a driver name with a Factory. A later Register call
// for the same name replaces the earlier one.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get retrieves a registered Factory by driver name.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("backend: no factory registered for driver %q", name)
	}
	return f, nil
}

// IsRegistered reports whether a driver name has a registered Factory.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// ListRegistered returns all registered driver names.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Open constructs a SessionBackend using the registered Factory for name.
func (r *Registry) Open(ctx context.Context, name, dsn string) (SessionBackend, error) {
	f, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return f(ctx, dsn)
}

var globalRegistry = NewRegistry()

// Register registers a Factory in the global registry. Driver packages
// call this from an init() func, e.g. backends/postgres.
func Register(name string, f Factory) { globalRegistry.Register(name, f) }

// Get retrieves a Factory from the global registry.
func Get(name string) (Factory, error) { return globalRegistry.Get(name) }

// Open constructs a SessionBackend from the global registry.
func Open(ctx context.Context, name, dsn string) (SessionBackend, error) {
	return globalRegistry.Open(ctx, name, dsn)
}

// IsRegistered reports whether name has a Factory in the global registry.
func IsRegistered(name string) bool { return globalRegistry.IsRegistered(name) }

// ListRegistered lists all driver names in the global registry.
func ListRegistered() []string { return globalRegistry.ListRegistered() }

// GlobalRegistry returns the shared default Registry.
func GlobalRegistry() *Registry { return globalRegistry }
