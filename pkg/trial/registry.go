package trial

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gauntlet/pkg/logging"
)

// Provider initializes one fixture value. Providers run at most once per run,
// lazily, when the first trial requiring the fixture is scheduled.
type Provider func(ctx context.Context) (any, error)

// Registry is a process-wide collection of fixture providers and test
// builders. Hosts fill one explicitly and hand it to the harness; nothing is
// discovered at link time.
type Registry struct {
	mu       sync.Mutex
	builders []func(*Collector)
	fixtures map[FixtureKey]Provider
	errs     []error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fixtures: make(map[FixtureKey]Provider)}
}

// RegisterTests appends a test builder. Builders run in registration order
// during Collect, and the order trials are added is the default run order.
func (r *Registry) RegisterTests(build func(*Collector)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders = append(r.builders, build)
}

// RegisterFixture registers the provider for fixture type T. Registering the
// same type twice is a configuration error surfaced by Collect.
func RegisterFixture[T any](r *Registry, init func(ctx context.Context) (T, error)) {
	key := Key[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fixtures[key]; ok {
		r.errs = append(r.errs, fmt.Errorf("fixture %s registered twice", key))
		return
	}
	r.fixtures[key] = func(ctx context.Context) (any, error) {
		return init(ctx)
	}
}

// Providers returns a copy of the registered provider set, keyed by fixture
// type.
func (r *Registry) Providers() map[FixtureKey]Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[FixtureKey]Provider, len(r.fixtures))
	for k, p := range r.fixtures {
		out[k] = p
	}
	return out
}

// Collect runs all builders and returns the validated trial list in the order
// trials were added. Validation failures accumulate; the joined error covers
// every invalid trial, duplicate fixture registration, and requirement on an
// unregistered fixture type. Collect never executes a fixture provider.
func (r *Registry) Collect() ([]*Trial, error) {
	r.mu.Lock()
	builders := make([]func(*Collector), len(r.builders))
	copy(builders, r.builders)
	errs := make([]error, len(r.errs))
	copy(errs, r.errs)
	r.mu.Unlock()

	c := &Collector{reg: r, names: make(map[string]struct{}), errs: errs}
	for _, build := range builders {
		build(c)
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	logging.Debug("Registry", "Collected %d trials from %d builders", len(c.trials), len(builders))
	return c.trials, nil
}

// Collector is the handle passed to test builders. Add validates each trial
// against the registry's fixture providers.
type Collector struct {
	reg    *Registry
	trials []*Trial
	names  map[string]struct{}
	errs   []error
}

// Add validates the trial and appends it. Violations accumulate and fail the
// surrounding Collect; an invalid trial is not appended.
func (c *Collector) Add(t *Trial) {
	if err := t.validate(); err != nil {
		c.errs = append(c.errs, err)
		return
	}
	if _, ok := c.names[t.name]; ok {
		c.errs = append(c.errs, fmt.Errorf("trial %q added twice", t.name))
		return
	}
	missing := 0
	c.reg.mu.Lock()
	for _, key := range t.requires {
		if _, ok := c.reg.fixtures[key]; !ok {
			c.errs = append(c.errs, fmt.Errorf("trial %q requires fixture %s, but no provider is registered", t.name, key))
			missing++
		}
	}
	c.reg.mu.Unlock()
	if missing > 0 {
		return
	}
	c.names[t.name] = struct{}{}
	c.trials = append(c.trials, t)
}

var defaultRegistry = NewRegistry()

// Default returns the package-level registry used by the convenience
// functions below.
func Default() *Registry {
	return defaultRegistry
}

// RegisterTests appends a test builder to the default registry.
func RegisterTests(build func(*Collector)) {
	defaultRegistry.RegisterTests(build)
}

// Fixture registers a provider for fixture type T on the default registry.
func Fixture[T any](init func(ctx context.Context) (T, error)) {
	RegisterFixture(defaultRegistry, init)
}
