package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/pitch"
)

// ErrEngineNotRegistered is returned by [Registry.CreateEngine] when no
// factory has been registered under the requested engine name.
var ErrEngineNotRegistered = errors.New("config: pitch engine not registered")

// Registry maps pitch engine names to their constructors. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]func(PitchConfig) (pitch.Engine, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]func(PitchConfig) (pitch.Engine, error))}
}

// RegisterEngine registers a pitch engine factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterEngine(name string, factory func(PitchConfig) (pitch.Engine, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = factory
}

// CreateEngine instantiates the engine registered under cfg.Engine.
// Returns [ErrEngineNotRegistered] if there is none.
func (r *Registry) CreateEngine(cfg PitchConfig) (pitch.Engine, error) {
	r.mu.RLock()
	factory, ok := r.engines[cfg.Engine]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrEngineNotRegistered, cfg.Engine, r.Engines())
	}
	return factory(cfg)
}

// Engines returns the registered engine names in sorted order.
func (r *Registry) Engines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
