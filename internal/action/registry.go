// Package action maps action kinds named in schedule definitions to the
// functions controllers run.
package action

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kingrea/legion/schedule"
)

// ErrUnknownKind is wrapped by Resolve when no factory is registered for a kind.
var ErrUnknownKind = errors.New("action: unknown kind")

// Factory builds an action from its definition config.
type Factory[C any] func(Config) (schedule.Action[C], error)

// Registry maintains known action factories keyed by kind.
type Registry[C any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[C]
}

// NewRegistry returns an empty registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{factories: map[string]Factory[C]{}}
}

// Register installs a factory. Returns an error if the kind already exists.
func (r *Registry[C]) Register(kind string, factory Factory[C]) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return fmt.Errorf("action: kind is required")
	}
	if factory == nil {
		return fmt.Errorf("action: factory is required for %s", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("action: %s already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry[C]) MustRegister(kind string, factory Factory[C]) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Resolve builds the action registered under kind.
func (r *Registry[C]) Resolve(kind string, cfg Config) (schedule.Action[C], error) {
	kind = strings.TrimSpace(kind)
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	act, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("action: %s: %w", kind, err)
	}
	if act == nil {
		return nil, fmt.Errorf("action: %s factory returned no action", kind)
	}
	return act, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry[C]) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
