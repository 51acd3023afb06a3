package events

import (
	"time"

	"gauntlet/pkg/trial"
)

// Kind identifies the lifecycle stage an event reports.
type Kind string

const (
	// KindRunStarted is emitted exactly once, before any trial event.
	KindRunStarted Kind = "RunStarted"

	// KindTestStarted indicates a trial entered execution: its fixtures were
	// resolved and it was admitted under the concurrency budget.
	KindTestStarted Kind = "TestStarted"

	// KindTestSlow is an advisory liveness notice for a trial that has been
	// running longer than a probe period. It never cancels the trial.
	KindTestSlow Kind = "TestSlow"

	// KindFixtureReady indicates a shared fixture finished initializing.
	// Emitted at most once per fixture key per run.
	KindFixtureReady Kind = "FixtureReady"

	// KindTestFinished carries a trial's terminal outcome.
	KindTestFinished Kind = "TestFinished"

	// KindTestSkipped indicates a trial was excluded before execution.
	KindTestSkipped Kind = "TestSkipped"

	// KindRunFinished is emitted exactly once, after every trial event.
	KindRunFinished Kind = "RunFinished"
)

// Event is one entry on the run lifecycle stream. Which fields are meaningful
// depends on Kind; constructors populate the right subset. Stats is always a
// snapshot taken when the event was emitted.
type Event struct {
	Kind  Kind
	Time  time.Time
	Stats RunStats

	// TestName and TestKind identify the trial for test-scoped kinds.
	TestName string
	TestKind string

	// Start is the moment the trial body began executing (TestFinished).
	Start time.Time

	// Elapsed is the cumulative running time for TestSlow, the body duration
	// for TestFinished, the initialization duration for FixtureReady, and the
	// total run duration for RunFinished.
	Elapsed time.Duration

	// Outcome and Slow describe the terminal result (TestFinished). Slow is
	// set when at least one slow notice was emitted for the trial. Bench
	// marks a finished benchmark trial.
	Outcome trial.Outcome
	Slow    bool
	Bench   bool

	// Reason explains the exclusion (TestSkipped).
	Reason trial.SkipReason

	// Fixture names the fixture key (FixtureReady).
	Fixture string
}

// NewRunStarted returns the run-opening event.
func NewRunStarted(stats RunStats) Event {
	return Event{Kind: KindRunStarted, Time: time.Now(), Stats: stats}
}

// NewTestStarted returns a start event for one trial.
func NewTestStarted(name, kind string, stats RunStats) Event {
	return Event{Kind: KindTestStarted, Time: time.Now(), Stats: stats, TestName: name, TestKind: kind}
}

// NewTestSlow returns an advisory slow notice with the trial's cumulative
// running time.
func NewTestSlow(name, kind string, elapsed time.Duration, stats RunStats) Event {
	return Event{Kind: KindTestSlow, Time: time.Now(), Stats: stats, TestName: name, TestKind: kind, Elapsed: elapsed}
}

// NewFixtureReady returns a readiness event for a fixture that finished
// initializing.
func NewFixtureReady(fixture string, elapsed time.Duration, stats RunStats) Event {
	return Event{Kind: KindFixtureReady, Time: time.Now(), Stats: stats, Fixture: fixture, Elapsed: elapsed}
}

// NewTestFinished returns the terminal event for one executed trial.
func NewTestFinished(name, kind string, bench bool, start time.Time, elapsed time.Duration, outcome trial.Outcome, slow bool, stats RunStats) Event {
	return Event{
		Kind:     KindTestFinished,
		Time:     time.Now(),
		Stats:    stats,
		TestName: name,
		TestKind: kind,
		Bench:    bench,
		Start:    start,
		Elapsed:  elapsed,
		Outcome:  outcome,
		Slow:     slow,
	}
}

// NewTestSkipped returns an exclusion event for a trial that will not run.
func NewTestSkipped(name, kind string, reason trial.SkipReason, stats RunStats) Event {
	return Event{Kind: KindTestSkipped, Time: time.Now(), Stats: stats, TestName: name, TestKind: kind, Reason: reason}
}

// NewRunFinished returns the run-closing event with the total elapsed time.
func NewRunFinished(elapsed time.Duration, stats RunStats) Event {
	return Event{Kind: KindRunFinished, Time: time.Now(), Stats: stats, Elapsed: elapsed}
}
