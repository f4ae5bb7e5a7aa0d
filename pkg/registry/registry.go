// Package registry keeps parsed log models addressable by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ccollicutt/oldtimer/pkg/analyzer"
)

var (
	// ErrDuplicateName is returned when a name is already registered.
	ErrDuplicateName = errors.New("log name already registered")

	// ErrEmptyName is returned for an empty name.
	ErrEmptyName = errors.New("log name is empty")

	// ErrNilModel is returned when registering a nil model.
	ErrNilModel = errors.New("log model is nil")

	// ErrNotFound is returned when a name is not registered.
	ErrNotFound = errors.New("log not found")
)

// Registry maps names to parsed log models. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*analyzer.LogModel
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{models: make(map[string]*analyzer.LogModel)}
}

// Create registers model under name. Names are never overwritten.
func (r *Registry) Create(name string, model *analyzer.LogModel) error {
	if name == "" {
		return ErrEmptyName
	}
	if model == nil {
		return fmt.Errorf("%s: %w", name, ErrNilModel)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.models[name] = model
	return nil
}

// Lookup returns the model registered under name.
func (r *Registry) Lookup(name string) (*analyzer.LogModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	model, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return model, nil
}

// List returns every registered name in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove unregisters name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.models, name)
	return nil
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// UniqueName returns base if it is free, otherwise the first free name of
// the form base#2, base#3, ...
func (r *Registry) UniqueName(base string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, taken := r.models[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s#%d", base, i)
		if _, taken := r.models[name]; !taken {
			return name
		}
	}
}
