// Package transform applies user-declared style transforms to compiled CSS.
//
// Transforms are looked up by name in a Registry and applied in declared
// order, each one receiving the output of the previous one.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Descriptor declares one transform in the project configuration.
type Descriptor struct {
	Name    string
	Options map[string]any
}

// Env describes the build a chain runs in.
type Env struct {
	// Root is the project directory relative paths in options refer to.
	Root string

	// Production is set for production builds.
	Production bool
}

// Args is passed to a transform on every application.
type Args struct {
	Env

	// Options are the descriptor's options; nil when none were given.
	Options map[string]any
}

// Transform rewrites stylesheet text.
type Transform interface {
	Name() string
	Apply(ctx context.Context, css string, args Args) (string, error)
}

// Func adapts a function to the Transform interface.
type Func struct {
	name string
	fn   func(ctx context.Context, css string, args Args) (string, error)
}

// NewFunc creates a named transform from fn.
func NewFunc(name string, fn func(ctx context.Context, css string, args Args) (string, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the transform name.
func (f *Func) Name() string { return f.name }

// Apply calls the wrapped function.
func (f *Func) Apply(ctx context.Context, css string, args Args) (string, error) {
	return f.fn(ctx, css, args)
}

// Registry maps transform names to implementations.
type Registry struct {
	mu         sync.RWMutex
	transforms map[string]Transform
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Transform)}
}

// DefaultRegistry returns a registry holding the built-in transforms.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewAutoprefixer())
	r.Register(NewBanner())
	r.Register(NewStarlark())
	return r
}

// Register adds t, replacing any transform registered under the same name.
func (r *Registry) Register(t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[t.Name()] = t
}

// Get returns the transform registered under name.
func (r *Registry) Get(name string) (Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[name]
	return t, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain applies descriptors against a registry.
type Chain struct {
	registry *Registry
	logger   *slog.Logger
}

// NewChain creates a chain resolving transforms from registry.
func NewChain(registry *Registry, logger *slog.Logger) *Chain {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Chain{registry: registry, logger: logger}
}

// Apply runs every descriptor over css in order. With no descriptors the
// input is returned unchanged. The first failure aborts the chain and no
// partial result is returned.
func (c *Chain) Apply(ctx context.Context, css string, descriptors []Descriptor, env Env) (string, error) {
	if len(descriptors) == 0 {
		return css, nil
	}

	// Resolve every name up front so an unknown plugin fails before any runs.
	resolved := make([]Transform, len(descriptors))
	for i, d := range descriptors {
		t, ok := c.registry.Get(d.Name)
		if !ok {
			return "", fmt.Errorf("unknown style transform %q (available: %v)", d.Name, c.registry.Names())
		}
		resolved[i] = t
	}

	out := css
	for i, t := range resolved {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c.logger.Debug("applying style transform", slog.String("name", t.Name()), slog.Int("index", i))

		next, err := t.Apply(ctx, out, Args{Env: env, Options: descriptors[i].Options})
		if err != nil {
			return "", fmt.Errorf("style transform %q failed: %w", t.Name(), err)
		}
		out = next
	}
	return out, nil
}
