// Package scheduler runs the filtered trial set concurrently: it resolves
// fixtures, admits trial bodies under the concurrency budget, isolates
// panics, probes for slow trials, and emits the ordered lifecycle event
// stream.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gauntlet/internal/events"
	"gauntlet/internal/fixture"
	"gauntlet/pkg/logging"
	"gauntlet/pkg/trial"
)

// DefaultProbePeriod is the interval between liveness probes for a running
// trial when no override is configured.
const DefaultProbePeriod = 15 * time.Second

// maxStackLines caps the captured panic stack attached to a failure.
const maxStackLines = 24

// Sink receives every lifecycle event, in order, from the single event loop.
// A sink error is fatal to the run.
type Sink func(events.Event) error

// Options tune one run.
type Options struct {
	// Budget is the maximum number of trial bodies executing at once.
	// Fixture waits and probe timers do not count against it. Values below 1
	// are clamped to 1.
	Budget int

	// ProbePeriod is the interval between slow notices for a running trial.
	// Zero selects DefaultProbePeriod.
	ProbePeriod time.Duration
}

// Scheduler drives one run over an already-filtered trial set.
type Scheduler struct {
	run       []*trial.Trial
	skipped   []trial.Skip
	providers map[trial.FixtureKey]trial.Provider
	opts      Options
	sink      Sink
}

// New builds a scheduler. The trial split comes out of trial.Filter; the
// providers come from the registry.
func New(run []*trial.Trial, skipped []trial.Skip, providers map[trial.FixtureKey]trial.Provider, opts Options, sink Sink) *Scheduler {
	if opts.Budget < 1 {
		opts.Budget = 1
	}
	if opts.ProbePeriod <= 0 {
		opts.ProbePeriod = DefaultProbePeriod
	}
	return &Scheduler{run: run, skipped: skipped, providers: providers, opts: opts, sink: sink}
}

// noticeKind discriminates messages from trial goroutines to the event loop.
type noticeKind int

const (
	noticeStarted noticeKind = iota
	noticeSlow
	noticeFinished
	noticeFixture
)

// notice is one message from a trial goroutine (or the fixture observer) to
// the event loop.
type notice struct {
	kind    noticeKind
	tr      *trial.Trial
	start   time.Time
	elapsed time.Duration
	outcome trial.Outcome
	slow    bool
	fixture fixture.Notice
}

// Run executes every runnable trial and returns the final statistics. The
// event loop inside Run is the only writer of the statistics and the only
// caller of the sink, so events arrive ordered and carry consistent
// snapshots.
//
// Canceling ctx stops admitting new trials; trials already executing finish
// and the run still closes with RunFinished. A fixture initialization
// failure or a sink error aborts the run without RunFinished.
func (s *Scheduler) Run(ctx context.Context) (events.RunStats, error) {
	stats := events.RunStats{InitialRunCount: len(s.run)}
	for range s.skipped {
		stats.RecordSkipped()
	}
	logging.Debug("Scheduler", "Run starting: %d to run, %d skipped, budget %d, probe period %s",
		len(s.run), len(s.skipped), s.opts.Budget, s.opts.ProbePeriod)

	runStart := time.Now()
	if err := s.sink(events.NewRunStarted(stats)); err != nil {
		return stats, err
	}
	for _, sk := range s.skipped {
		if err := s.sink(events.NewTestSkipped(sk.Trial.Name(), sk.Trial.Kind(), sk.Reason, stats)); err != nil {
			return stats, err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	notices := make(chan notice)
	table := fixture.NewTable(s.providers, func(n fixture.Notice) {
		notices <- notice{kind: noticeFixture, fixture: n}
	})
	sem := semaphore.NewWeighted(int64(s.opts.Budget))

	g, gctx := errgroup.WithContext(runCtx)
	for _, tr := range s.run {
		tr := tr
		g.Go(func() error {
			return s.runTrial(gctx, tr, table, sem, notices)
		})
	}

	// Close the notice stream once every trial goroutine has returned. The
	// loop below must keep draining until then, even after a sink error,
	// because trial goroutines block sending.
	wait := make(chan error, 1)
	go func() {
		wait <- g.Wait()
		close(notices)
	}()

	var runErr error
	for n := range notices {
		ev, ok := s.fold(&stats, n)
		if !ok || runErr != nil {
			continue
		}
		if err := s.sink(ev); err != nil {
			runErr = err
			cancel()
		}
	}
	if gerr := <-wait; runErr == nil && gerr != nil {
		runErr = gerr
	}
	if runErr != nil {
		return stats, runErr
	}

	if err := s.sink(events.NewRunFinished(time.Since(runStart), stats)); err != nil {
		return stats, err
	}
	logging.Debug("Scheduler", "Run finished: %d passed, %d failed in %s", stats.Passed, stats.Failed, time.Since(runStart))
	return stats, nil
}

// fold applies one notice to the statistics and builds the outgoing event.
func (s *Scheduler) fold(stats *events.RunStats, n notice) (events.Event, bool) {
	switch n.kind {
	case noticeStarted:
		return events.NewTestStarted(n.tr.Name(), n.tr.Kind(), *stats), true
	case noticeSlow:
		return events.NewTestSlow(n.tr.Name(), n.tr.Kind(), n.elapsed, *stats), true
	case noticeFinished:
		stats.RecordFinished(n.outcome.Failed(), n.slow)
		return events.NewTestFinished(n.tr.Name(), n.tr.Kind(), n.tr.Bench(), n.start, n.elapsed, n.outcome, n.slow, *stats), true
	case noticeFixture:
		if n.fixture.Err != nil {
			// The failure propagates through the resolving trials; no event.
			return events.Event{}, false
		}
		return events.NewFixtureReady(n.fixture.Key.String(), n.fixture.Elapsed, *stats), true
	}
	return events.Event{}, false
}

// runTrial drives one trial through its lifecycle. All of the trial's
// notices are sent from this goroutine, so its started, slow, and finished
// events stay ordered.
func (s *Scheduler) runTrial(ctx context.Context, tr *trial.Trial, table *fixture.Table, sem *semaphore.Weighted, notices chan<- notice) error {
	requires := tr.Requires()
	resolved := make(map[trial.FixtureKey]any, len(requires))
	for _, key := range requires {
		v, err := table.Resolve(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				// The run was canceled while this trial waited; it never
				// started and emits nothing.
				return nil
			}
			return err
		}
		resolved[key] = v
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	defer sem.Release(1)

	notices <- notice{kind: noticeStarted, tr: tr}

	start := time.Now()
	bodyDone := make(chan trial.Outcome, 1)
	go func() {
		bodyDone <- s.execute(ctx, tr, resolved)
	}()

	ticker := time.NewTicker(s.opts.ProbePeriod)
	defer ticker.Stop()
	slow := false
	for {
		select {
		case outcome := <-bodyDone:
			notices <- notice{
				kind:    noticeFinished,
				tr:      tr,
				start:   start,
				elapsed: time.Since(start),
				outcome: outcome,
				slow:    slow,
			}
			return nil
		case <-ticker.C:
			slow = true
			notices <- notice{kind: noticeSlow, tr: tr, elapsed: time.Since(start)}
		}
	}
}

// execute runs the body behind the run's single panic boundary. A panic
// becomes a failing outcome carrying the payload message and a truncated
// stack; it never tears down the process.
func (s *Scheduler) execute(ctx context.Context, tr *trial.Trial, resolved map[trial.FixtureKey]any) (out trial.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = trial.FailWithStack(panicMessage(r), truncatedStack())
		}
	}()
	if err := tr.Invoke(ctx, resolved); err != nil {
		return trial.Fail(err.Error())
	}
	return trial.Pass()
}

// panicMessage maps a recovered panic payload to a failure message.
func panicMessage(r any) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncatedStack captures the current stack, capped to maxStackLines lines.
func truncatedStack() string {
	lines := strings.Split(strings.TrimRight(string(debug.Stack()), "\n"), "\n")
	if len(lines) > maxStackLines {
		lines = append(lines[:maxStackLines], "...")
	}
	return strings.Join(lines, "\n")
}
