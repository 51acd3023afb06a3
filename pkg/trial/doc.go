// Package trial provides the public test-definition API for gauntlet: trials,
// outcomes, fixture keys, and the registry that collects them.
//
// A Trial pairs a unique name with a body function. The body receives a
// context followed by zero or more fixture parameters and returns an error:
//
//	trial.New("db/migrate", func(ctx context.Context, db *DB) error {
//	    return db.Migrate(ctx)
//	})
//
// Each fixture parameter type declares a requirement on the fixture registered
// for that type. Fixtures are registered once per Registry and initialized
// lazily, at most once per run, when the first trial requiring them is
// scheduled:
//
//	reg := trial.NewRegistry()
//	trial.RegisterFixture(reg, func(ctx context.Context) (*DB, error) {
//	    return OpenDB(ctx)
//	})
//	reg.RegisterTests(func(c *trial.Collector) {
//	    c.Add(trial.New("db/migrate", migrateBody))
//	})
//
// Registration is explicit: the host process builds a Registry (or uses
// Default) and hands it to the harness. Nothing is discovered at link time.
//
// Collection validates every trial up front. A body with the wrong shape, a
// duplicate or empty name, or a requirement on a fixture type that no
// provider was registered for is a configuration error reported by Collect
// before anything runs.
package trial
