// Package fixture implements the shared fixture table: type-keyed slots that
// are initialized lazily, at most once per run, and handed to every trial
// that requires them.
package fixture

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gauntlet/pkg/logging"
	"gauntlet/pkg/trial"
)

// Notice reports the completion of one fixture initialization: the key, how
// long the initializer ran, and its error if it failed.
type Notice struct {
	Key     trial.FixtureKey
	Elapsed time.Duration
	Err     error
}

// InitError wraps a failed fixture initialization. It is fatal to the run and
// maps to its own exit code.
type InitError struct {
	Key trial.FixtureKey
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("fixture %s failed to initialize: %v", e.Key, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// entry is one write-once fixture slot.
type entry struct {
	provider trial.Provider

	// flightKey disambiguates the singleflight group. Reflected type names
	// are not unique across packages, so each entry gets its own key.
	flightKey string

	done  bool
	value any
	err   error
}

// Table holds one slot per registered fixture key. Resolve is safe for
// concurrent use; a slot's provider runs at most once for the lifetime of the
// table, however many trials require it.
type Table struct {
	observer func(Notice)

	mu      sync.RWMutex
	entries map[trial.FixtureKey]*entry

	// group deduplicates concurrent first resolutions of the same slot.
	group singleflight.Group
}

// NewTable builds a table over the registered providers. No provider runs
// until the first Resolve for its key. The observer, when non-nil, is called
// exactly once per slot when its initialization completes.
func NewTable(providers map[trial.FixtureKey]trial.Provider, observer func(Notice)) *Table {
	t := &Table{
		observer: observer,
		entries:  make(map[trial.FixtureKey]*entry, len(providers)),
	}
	n := 0
	for key, p := range providers {
		t.entries[key] = &entry{
			provider:  p,
			flightKey: key.String() + "#" + strconv.Itoa(n),
		}
		n++
	}
	return t
}

// Len returns the number of registered slots.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Resolve returns the fixture value for key, initializing it on first use.
// Concurrent callers for the same key block until the single initialization
// completes and then observe the identical stored value or error. The context
// is passed through to the provider.
func (t *Table) Resolve(ctx context.Context, key trial.FixtureKey) (any, error) {
	t.mu.RLock()
	e, ok := t.entries[key]
	if !ok {
		t.mu.RUnlock()
		return nil, fmt.Errorf("no provider registered for fixture %s", key)
	}
	if e.done {
		value, err := e.value, e.err
		t.mu.RUnlock()
		return value, wrapInitErr(key, err)
	}
	t.mu.RUnlock()

	// Deduplicate concurrent first resolutions of this slot.
	value, err, _ := t.group.Do(e.flightKey, func() (interface{}, error) {
		// Double-check the slot after acquiring the flight.
		t.mu.RLock()
		if e.done {
			value, err := e.value, e.err
			t.mu.RUnlock()
			return value, err
		}
		t.mu.RUnlock()

		logging.Debug("Fixture", "Initializing %s", key)
		start := time.Now()
		value, err := runProvider(ctx, e.provider)
		elapsed := time.Since(start)

		t.mu.Lock()
		e.done = true
		e.value = value
		e.err = err
		t.mu.Unlock()

		if err != nil {
			logging.Error("Fixture", err, "Initialization of %s failed after %s", key, elapsed)
		} else {
			logging.Debug("Fixture", "%s ready in %s", key, elapsed)
		}
		if t.observer != nil {
			t.observer(Notice{Key: key, Elapsed: elapsed, Err: err})
		}
		return value, err
	})
	return value, wrapInitErr(key, err)
}

func wrapInitErr(key trial.FixtureKey, err error) error {
	if err == nil {
		return nil
	}
	return &InitError{Key: key, Err: err}
}

// runProvider executes a provider with panic isolation. A panicking
// initializer surfaces as an error, never as a crashed run.
func runProvider(ctx context.Context, p trial.Provider) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case string:
				err = fmt.Errorf("initializer panicked: %s", v)
			case error:
				err = fmt.Errorf("initializer panicked: %w", v)
			default:
				err = fmt.Errorf("initializer panicked: %v", v)
			}
		}
	}()
	return p(ctx)
}
