package reporter

import (
	"io"

	"gauntlet/internal/events"
	"gauntlet/pkg/trial"
)

// terseFailure holds what the failures blocks need for one failed trial.
type terseFailure struct {
	name    string
	message string
}

// terseReporter renders the compact format: one short line per finished
// trial, the failure blocks, and a single result line at the end.
type terseReporter struct {
	w        io.Writer
	failures []terseFailure
	ignored  int
	filtered int
	measured int
}

// NewTerse creates the terse console reporter writing to w.
func NewTerse(w io.Writer) Reporter {
	return &terseReporter{w: w}
}

func (r *terseReporter) Report(ev events.Event) error {
	ew := &errWriter{w: r.w}

	switch ev.Kind {
	case events.KindTestFinished:
		verdict := "ok"
		if ev.Outcome.Failed() {
			verdict = "FAILED"
			r.failures = append(r.failures, terseFailure{
				name:    displayName(ev.TestName, ev.TestKind),
				message: failureText(ev.Outcome),
			})
		} else if ev.Bench {
			r.measured++
		}
		ew.printf("test %s ... %s\n", displayName(ev.TestName, ev.TestKind), verdict)
	case events.KindTestSkipped:
		if ev.Reason == trial.SkipReasonIgnored {
			r.ignored++
		} else {
			r.filtered++
		}
	case events.KindRunFinished:
		r.writeResult(ew, ev)
	}

	if ew.err != nil {
		return &WriteError{Err: ew.err}
	}
	return nil
}

func (r *terseReporter) writeResult(ew *errWriter, ev events.Event) {
	if len(r.failures) > 0 {
		ew.printf("\nfailures:\n")
		for _, f := range r.failures {
			if f.message != "" {
				ew.printf("%s\n\n", f.message)
			}
		}

		ew.printf("\nfailures:\n")
		for _, f := range r.failures {
			ew.printf("    %s\n", f.name)
		}
	}

	verdict := "ok"
	if ev.Stats.HasFailed() {
		verdict = "FAILED"
	}
	ew.printf("\ntest result: %s. %d passed; %d failed; %d ignored; %d measured; %d filtered out; finished in %.2fs\n",
		verdict, ev.Stats.Passed, ev.Stats.Failed, r.ignored, r.measured, r.filtered, ev.Elapsed.Seconds())
}

// failureText joins an outcome's message and captured stack into the block
// printed under the first failures heading.
func failureText(oc trial.Outcome) string {
	msg := oc.Message()
	if stack := oc.Stack(); stack != "" {
		if msg != "" {
			msg += "\n"
		}
		msg += stack
	}
	return msg
}
