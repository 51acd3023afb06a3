package reporter

import (
	"encoding/json"
	"time"

	"gauntlet/internal/events"
)

// TrialRecord is one executed trial in the structured run report.
type TrialRecord struct {
	Name      string        `json:"name"`
	Kind      string        `json:"kind,omitempty"`
	Status    string        `json:"status"`
	Slow      bool          `json:"slow,omitempty"`
	Bench     bool          `json:"bench,omitempty"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Message   string        `json:"message,omitempty"`
	Stack     string        `json:"stack,omitempty"`
}

// SkippedRecord notes a trial that was excluded before execution.
type SkippedRecord struct {
	Name   string `json:"name"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason"`
}

// FixtureRecord notes one shared fixture initialization.
type FixtureRecord struct {
	Key      string        `json:"key"`
	Duration time.Duration `json:"duration"`
}

// RunReport is the complete structured result of one run, written as a
// single JSON document when the run finishes.
type RunReport struct {
	RunID         string          `json:"run_id"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Duration      time.Duration   `json:"duration"`
	InitialTrials int             `json:"initial_trials"`
	Passed        int             `json:"passed"`
	PassedSlow    int             `json:"passed_slow"`
	Failed        int             `json:"failed"`
	Skipped       int             `json:"skipped"`
	Trials        []TrialRecord   `json:"trial_results"`
	SkippedTrials []SkippedRecord `json:"skipped_trials,omitempty"`
	Fixtures      []FixtureRecord `json:"fixtures,omitempty"`
}

// jsonReporter accumulates a RunReport from the event stream and persists
// it atomically on RunFinished.
type jsonReporter struct {
	path   string
	report RunReport
}

// NewJSONReport creates a reporter that writes the structured run report to
// path.
func NewJSONReport(path, runID string) Reporter {
	return &jsonReporter{
		path:   path,
		report: RunReport{RunID: runID, Trials: make([]TrialRecord, 0)},
	}
}

func (r *jsonReporter) Report(ev events.Event) error {
	switch ev.Kind {
	case events.KindRunStarted:
		r.report.StartTime = ev.Time
	case events.KindFixtureReady:
		r.report.Fixtures = append(r.report.Fixtures, FixtureRecord{
			Key:      ev.Fixture,
			Duration: ev.Elapsed,
		})
	case events.KindTestFinished:
		status := "passed"
		if ev.Outcome.Failed() {
			status = "failed"
		}
		r.report.Trials = append(r.report.Trials, TrialRecord{
			Name:      ev.TestName,
			Kind:      ev.TestKind,
			Status:    status,
			Slow:      ev.Slow,
			Bench:     ev.Bench,
			StartTime: ev.Start,
			Duration:  ev.Elapsed,
			Message:   ev.Outcome.Message(),
			Stack:     ev.Outcome.Stack(),
		})
	case events.KindTestSkipped:
		r.report.SkippedTrials = append(r.report.SkippedTrials, SkippedRecord{
			Name:   ev.TestName,
			Kind:   ev.TestKind,
			Reason: string(ev.Reason),
		})
	case events.KindRunFinished:
		r.report.EndTime = ev.Time
		r.report.Duration = ev.Elapsed
		r.report.InitialTrials = ev.Stats.InitialRunCount
		r.report.Passed = ev.Stats.Passed
		r.report.PassedSlow = ev.Stats.PassedSlow
		r.report.Failed = ev.Stats.Failed
		r.report.Skipped = ev.Stats.Skipped
		return r.write()
	}
	return nil
}

func (r *jsonReporter) write() error {
	data, err := json.MarshalIndent(r.report, "", "  ")
	if err != nil {
		return &WriteError{Err: err}
	}
	data = append(data, '\n')

	if err := writeFileAtomic(r.path, data); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
