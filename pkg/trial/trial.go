package trial

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Trial is one schedulable test: a unique name, an optional kind label, and a
// body function. Bodies have the shape
//
//	func(ctx context.Context, f1 T1, f2 T2, ...) error
//
// with zero or more fixture parameters after the context. Each parameter type
// declares a requirement on the fixture registered for that type; duplicate
// parameter types collapse to a single requirement.
//
// A Trial must not be mutated after it has been added to a Collector.
type Trial struct {
	name    string
	kind    string
	bench   bool
	ignored bool

	rawBody any

	// Filled in by validation during Collector.Add.
	body     reflect.Value
	params   []reflect.Type
	requires []FixtureKey
}

// New creates a trial with the given name and body. The body shape is
// validated when the trial is added to a Collector.
func New(name string, body any) *Trial {
	return &Trial{name: name, rawBody: body}
}

// NewBench creates a benchmark trial. Benchmarks schedule and execute like
// tests; the flag only affects kind filtering and the measured count.
func NewBench(name string, body any) *Trial {
	return &Trial{name: name, rawBody: body, bench: true}
}

// WithKind sets a free-form kind label, rendered as "[kind] name" in output.
func (t *Trial) WithKind(kind string) *Trial {
	t.kind = kind
	return t
}

// WithIgnored marks the trial as ignored. Ignored trials are skipped unless
// --ignored or --include-ignored is given.
func (t *Trial) WithIgnored(ignored bool) *Trial {
	t.ignored = ignored
	return t
}

// Name returns the trial name.
func (t *Trial) Name() string {
	return t.name
}

// Kind returns the kind label, empty when unset.
func (t *Trial) Kind() string {
	return t.kind
}

// Bench reports whether the trial is a benchmark.
func (t *Trial) Bench() bool {
	return t.bench
}

// Ignored reports whether the trial is marked ignored.
func (t *Trial) Ignored() bool {
	return t.ignored
}

// DisplayName returns the name prefixed with the kind label when one is set.
func (t *Trial) DisplayName() string {
	if t.kind == "" {
		return t.name
	}
	return fmt.Sprintf("[%s] %s", t.kind, t.name)
}

// Requires returns the distinct fixture keys the body depends on, in
// parameter order. Valid only after the trial passed collection.
func (t *Trial) Requires() []FixtureKey {
	out := make([]FixtureKey, len(t.requires))
	copy(out, t.requires)
	return out
}

// validate checks the body shape and derives the requirement set.
func (t *Trial) validate() error {
	if t.name == "" {
		return fmt.Errorf("trial has no name")
	}
	if t.rawBody == nil {
		return fmt.Errorf("trial %q has no body", t.name)
	}
	rt := reflect.TypeOf(t.rawBody)
	if rt.Kind() != reflect.Func {
		return fmt.Errorf("trial %q: body is %T, want func(context.Context, ...) error", t.name, t.rawBody)
	}
	if rt.IsVariadic() {
		return fmt.Errorf("trial %q: body must not be variadic", t.name)
	}
	if rt.NumIn() < 1 || rt.In(0) != contextType {
		return fmt.Errorf("trial %q: body must take context.Context as its first parameter", t.name)
	}
	if rt.NumOut() != 1 || rt.Out(0) != errorType {
		return fmt.Errorf("trial %q: body must return exactly one error", t.name)
	}

	t.body = reflect.ValueOf(t.rawBody)
	t.params = t.params[:0]
	t.requires = t.requires[:0]
	seen := make(map[FixtureKey]struct{})
	for i := 1; i < rt.NumIn(); i++ {
		p := rt.In(i)
		t.params = append(t.params, p)
		key := keyForType(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		t.requires = append(t.requires, key)
	}
	return nil
}

// Invoke runs the body with the resolved fixture values, keyed by
// requirement. Panics propagate to the caller; the scheduler recovers them at
// its execution boundary.
func (t *Trial) Invoke(ctx context.Context, fixtures map[FixtureKey]any) error {
	args := make([]reflect.Value, 0, len(t.params)+1)
	args = append(args, reflect.ValueOf(ctx))
	for _, p := range t.params {
		v, ok := fixtures[keyForType(p)]
		if !ok {
			return fmt.Errorf("trial %q: no resolved fixture for %s", t.name, p)
		}
		rv := reflect.ValueOf(v)
		if !rv.IsValid() {
			rv = reflect.Zero(p)
		}
		args = append(args, rv)
	}
	out := t.body.Call(args)
	if err, ok := out[0].Interface().(error); ok && err != nil {
		return err
	}
	return nil
}
