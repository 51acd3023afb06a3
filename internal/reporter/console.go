package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"gauntlet/internal/events"
	"gauntlet/pkg/trial"
)

// StatusLevel controls which live lines the console prints while the run is
// in flight. Levels are cumulative: each one includes everything below it.
type StatusLevel int

const (
	// StatusLevelDefault selects the standard level, StatusLevelPass.
	StatusLevelDefault StatusLevel = iota
	// StatusLevelNone prints no live lines.
	StatusLevelNone
	// StatusLevelFail prints failures only.
	StatusLevelFail
	// StatusLevelSlow adds slow-test notices.
	StatusLevelSlow
	// StatusLevelPass adds passing tests and fixture readiness.
	StatusLevelPass
	// StatusLevelSkip adds every skipped test.
	StatusLevelSkip
	// StatusLevelAll prints everything.
	StatusLevelAll
)

// FinalStatusLevel controls which statuses are replayed after the summary
// line. The ordering differs from StatusLevel in that skips rank below
// passes, so the replay always ends with the failures.
type FinalStatusLevel int

const (
	// FinalStatusLevelDefault selects the standard level, FinalStatusLevelSlow.
	FinalStatusLevelDefault FinalStatusLevel = iota
	// FinalStatusLevelNone replays nothing.
	FinalStatusLevelNone
	// FinalStatusLevelFail replays failures only.
	FinalStatusLevelFail
	// FinalStatusLevelSlow adds tests that passed slowly.
	FinalStatusLevelSlow
	// FinalStatusLevelSkip adds skipped tests.
	FinalStatusLevelSkip
	// FinalStatusLevelPass adds every passing test.
	FinalStatusLevelPass
	// FinalStatusLevelAll replays everything.
	FinalStatusLevelAll
)

// ConsoleOptions configures the pretty console reporter.
type ConsoleOptions struct {
	// Color enables ANSI styling on the output.
	Color bool

	// Spinner shows an animated progress indicator between events. Only
	// useful when the output is an interactive terminal.
	Spinner bool

	// Status and FinalStatus pick the live and replay verbosity. Zero
	// values select the defaults.
	Status      StatusLevel
	FinalStatus FinalStatusLevel
}

// consoleStyles is the color palette for the pretty format. The zero value
// renders everything unstyled.
type consoleStyles struct {
	count text.Colors
	pass  text.Colors
	fail  text.Colors
	skip  text.Colors
}

func (s *consoleStyles) colorize() {
	s.count = text.Colors{text.Bold}
	s.pass = text.Colors{text.FgGreen, text.Bold}
	s.fail = text.Colors{text.FgRed, text.Bold}
	s.skip = text.Colors{text.FgYellow, text.Bold}
}

// finalEntry is one buffered status for the replay block after the summary.
type finalEntry struct {
	name    string
	kind    string
	elapsed time.Duration
	outcome trial.Outcome
	slow    bool
	skipped bool

	// messageFinal forces the entry into the replay regardless of level so
	// its failure message is shown at the end of the run.
	messageFinal bool

	level FinalStatusLevel
}

// consoleReporter renders the pretty line-per-test format.
type consoleReporter struct {
	w      io.Writer
	styles consoleStyles
	status StatusLevel
	final  FinalStatusLevel
	spin   *spinner.Spinner
	finals []finalEntry
}

// NewConsole creates the pretty console reporter writing to w.
func NewConsole(w io.Writer, opts ConsoleOptions) Reporter {
	r := &consoleReporter{
		w:      w,
		status: opts.Status,
		final:  opts.FinalStatus,
	}
	if r.status == StatusLevelDefault {
		r.status = StatusLevelPass
	}
	if r.final == FinalStatusLevelDefault {
		r.final = FinalStatusLevelSlow
	}
	if opts.Color {
		r.styles.colorize()
		text.EnableColors()
	}
	if opts.Spinner {
		r.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	}
	return r
}

func (r *consoleReporter) Report(ev events.Event) error {
	if ev.Kind == events.KindTestStarted {
		return nil
	}

	r.suspendSpinner()
	ew := &errWriter{w: r.w}

	switch ev.Kind {
	case events.KindRunStarted:
		r.writeStarting(ew, ev.Stats)
	case events.KindTestSlow:
		if r.status >= StatusLevelSlow {
			ew.printf("%s ", r.statusWord(r.styles.skip, "SLOW"))
			ew.printf("[>%7.3fs] ", ev.Elapsed.Seconds())
			ew.printf("%s\n", displayName(ev.TestName, ev.TestKind))
		}
	case events.KindFixtureReady:
		if r.status >= StatusLevelPass {
			ew.printf("%s ", r.statusWord(r.styles.pass, "READY"))
			r.writeDuration(ew, ev.Elapsed)
			ew.printf("%s\n", ev.Fixture)
		}
	case events.KindTestFinished:
		r.reportFinished(ew, ev)
	case events.KindTestSkipped:
		r.reportSkipped(ew, ev)
	case events.KindRunFinished:
		r.writeSummary(ew, ev)
	}

	if ew.err != nil {
		r.suspendSpinner()
		return &WriteError{Err: ew.err}
	}
	if ev.Kind != events.KindRunFinished {
		r.resumeSpinner(ev.Stats)
	}
	return nil
}

func (r *consoleReporter) reportFinished(ew *errWriter, ev events.Event) {
	if r.status >= r.liveLevel(ev.Outcome) {
		r.writeStatusLine(ew, ev)
		if ev.Outcome.Failed() {
			r.writeMessageBlock(ew, ev.TestName, ev.TestKind, ev.Outcome)
		}
	}

	entry := finalEntry{
		name:         ev.TestName,
		kind:         ev.TestKind,
		elapsed:      ev.Elapsed,
		outcome:      ev.Outcome,
		slow:         ev.Slow,
		messageFinal: ev.Outcome.Failed(),
		level:        FinalStatusLevelPass,
	}
	switch {
	case ev.Outcome.Failed():
		entry.level = FinalStatusLevelFail
	case ev.Slow:
		entry.level = FinalStatusLevelSlow
	}
	if entry.messageFinal || r.final >= entry.level {
		r.finals = append(r.finals, entry)
	}
}

func (r *consoleReporter) reportSkipped(ew *errWriter, ev events.Event) {
	// Trials the user explicitly marked ignored surface even at the default
	// level; filter exclusions only show up in the counts.
	visible := r.status >= StatusLevelSkip ||
		(r.status >= StatusLevelPass && ev.Reason == trial.SkipReasonIgnored)
	if visible {
		r.writeSkipLine(ew, ev.TestName, ev.TestKind)
	}
	if r.final >= FinalStatusLevelSkip {
		r.finals = append(r.finals, finalEntry{
			name:    ev.TestName,
			kind:    ev.TestKind,
			skipped: true,
			level:   FinalStatusLevelSkip,
		})
	}
}

func (r *consoleReporter) writeStarting(ew *errWriter, stats events.RunStats) {
	ew.printf("%s ", r.statusWord(r.styles.pass, "Starting"))

	word := "tests"
	if stats.InitialRunCount == 1 {
		word = "test"
	}
	ew.printf("%s %s", r.styles.count.Sprint(stats.InitialRunCount), word)

	if stats.Skipped > 0 {
		ew.printf(" (%s skipped)", r.styles.count.Sprint(stats.Skipped))
	}
	ew.printf("\n")
}

func (r *consoleReporter) writeSummary(ew *errWriter, ev events.Event) {
	stats := ev.Stats

	style := r.styles.pass
	if stats.HasFailed() {
		style = r.styles.fail
	}
	ew.printf("------------\n%s ", r.statusWord(style, "Summary"))
	r.writeDuration(ew, ev.Elapsed)

	ew.printf("%s", r.styles.count.Sprint(stats.FinishedCount))
	if stats.FinishedCount != stats.InitialRunCount {
		ew.printf("/%s", r.styles.count.Sprint(stats.InitialRunCount))
	}

	word := "tests"
	if stats.FinishedCount == 1 && stats.InitialRunCount == 1 {
		word = "test"
	}
	ew.printf(" %s run: %s\n", word, r.summaryStr(stats))

	sort.Slice(r.finals, func(i, j int) bool {
		if r.finals[i].level != r.finals[j].level {
			return r.finals[i].level > r.finals[j].level
		}
		return r.finals[i].name < r.finals[j].name
	})

	for _, fe := range r.finals {
		if fe.skipped {
			r.writeSkipLine(ew, fe.name, fe.kind)
			continue
		}
		if fe.messageFinal || r.final >= fe.level {
			r.writeFinalStatusLine(ew, fe)
		}
		if fe.messageFinal {
			r.writeMessageBlock(ew, fe.name, fe.kind, fe.outcome)
		}
	}
}

// summaryStr composes the aggregate fragment of the summary line. Slow and
// failed segments appear only when non-zero; the skip count always closes
// the line.
func (r *consoleReporter) summaryStr(stats events.RunStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", r.styles.count.Sprint(stats.Passed), r.styles.pass.Sprint("passed"))
	if stats.PassedSlow > 0 {
		fmt.Fprintf(&b, " (%s %s)", r.styles.count.Sprint(stats.PassedSlow), r.styles.skip.Sprint("slow"))
	}
	b.WriteString(", ")

	if stats.Failed > 0 {
		fmt.Fprintf(&b, "%s %s, ", r.styles.count.Sprint(stats.Failed), r.styles.fail.Sprint("failed"))
	}

	fmt.Fprintf(&b, "%s %s", r.styles.count.Sprint(stats.Skipped), r.styles.skip.Sprint("skipped"))
	return b.String()
}

func (r *consoleReporter) liveLevel(oc trial.Outcome) StatusLevel {
	if oc.Failed() {
		return StatusLevelFail
	}
	return StatusLevelPass
}

func (r *consoleReporter) writeStatusLine(ew *errWriter, ev events.Event) {
	if ev.Outcome.Failed() {
		ew.printf("%s ", r.statusWord(r.styles.fail, "FAIL"))
	} else {
		ew.printf("%s ", r.statusWord(r.styles.pass, "PASS"))
	}
	r.writeDuration(ew, ev.Elapsed)
	ew.printf("%s\n", displayName(ev.TestName, ev.TestKind))
}

func (r *consoleReporter) writeFinalStatusLine(ew *errWriter, fe finalEntry) {
	switch {
	case fe.outcome.Failed():
		ew.printf("%s ", r.statusWord(r.styles.fail, "FAIL"))
	case fe.slow:
		ew.printf("%s ", r.statusWord(r.styles.skip, "SLOW"))
	default:
		ew.printf("%s ", r.statusWord(r.styles.pass, "PASS"))
	}
	r.writeDuration(ew, fe.elapsed)
	ew.printf("%s\n", displayName(fe.name, fe.kind))
}

func (r *consoleReporter) writeSkipLine(ew *errWriter, name, kind string) {
	ew.printf("%s ", r.statusWord(r.styles.skip, "SKIP"))
	ew.printf("[         ] ")
	ew.printf("%s\n", displayName(name, kind))
}

func (r *consoleReporter) writeMessageBlock(ew *errWriter, name, kind string, oc trial.Outcome) {
	ew.printf("\n%s", r.styles.fail.Sprint("--- "))
	ew.printf("%s", r.styles.fail.Sprint(fmt.Sprintf("%-21s", "MESSAGE:")))
	ew.printf("%s", displayName(name, kind))
	ew.printf("%s\n", r.styles.fail.Sprint(" ---"))

	if msg := oc.Message(); msg != "" {
		ew.printf("%s\n", msg)
	}
	if stack := oc.Stack(); stack != "" {
		ew.printf("%s\n", stack)
	}
}

// statusWord pads before styling so escape sequences do not break column
// alignment.
func (r *consoleReporter) statusWord(c text.Colors, word string) string {
	return c.Sprint(fmt.Sprintf("%12s", word))
}

func (r *consoleReporter) writeDuration(ew *errWriter, d time.Duration) {
	ew.printf("[%8.3fs] ", d.Seconds())
}

func (r *consoleReporter) suspendSpinner() {
	if r.spin != nil && r.spin.Active() {
		r.spin.Stop()
	}
}

func (r *consoleReporter) resumeSpinner(stats events.RunStats) {
	if r.spin == nil {
		return
	}
	r.spin.Suffix = fmt.Sprintf(" %d/%d tests run: %d passed, %d failed, %d skipped",
		stats.FinishedCount, stats.InitialRunCount, stats.Passed, stats.Failed, stats.Skipped)
	r.spin.Start()
}
