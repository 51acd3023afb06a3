// Package harness is the public entry point of the test engine. A binary
// registers its tests and fixtures with a trial.Registry and hands control to
// Main, which parses the command line, runs the selected tests through the
// scheduler and exits with a code describing the outcome. Run exposes the
// same pipeline for programmatic use.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gauntlet/internal/config"
	"gauntlet/internal/events"
	"gauntlet/internal/fixture"
	"gauntlet/internal/reporter"
	"gauntlet/internal/scheduler"
	"gauntlet/pkg/logging"
	"gauntlet/pkg/trial"
)

const (
	// ExitCodeSuccess indicates every selected test passed.
	ExitCodeSuccess = 0
	// ExitCodeTestsFailed indicates at least one test failed.
	ExitCodeTestsFailed = 101
	// ExitCodeConfig indicates invalid flags, a broken profile, an invalid
	// trial definition or a missing fixture provider.
	ExitCodeConfig = 2
	// ExitCodeReportIO indicates a report or the logfile could not be
	// written.
	ExitCodeReportIO = 3
	// ExitCodeFixture indicates a shared fixture failed to initialize.
	ExitCodeFixture = 4
)

// ConfigError marks an error as a configuration problem for exit code
// mapping.
type ConfigError struct {
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// exitCodeForError maps a Run error to the process exit code.
func exitCodeForError(err error) int {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}
	var writeErr *reporter.WriteError
	if errors.As(err, &writeErr) {
		return ExitCodeReportIO
	}
	var initErr *fixture.InitError
	if errors.As(err, &initErr) {
		return ExitCodeFixture
	}
	return ExitCodeConfig
}

// Conclusion sums up a finished run.
type Conclusion struct {
	// FilteredOut counts tests excluded by name filters, skip patterns or
	// kind selection.
	FilteredOut int
	// Passed and Failed count finished tests by outcome.
	Passed int
	Failed int
	// Ignored counts tests excluded by the ignore polarity.
	Ignored int
	// Measured counts benchmarks that finished without failing.
	Measured int
}

// HasFailed reports whether any test failed.
func (c Conclusion) HasFailed() bool {
	return c.Failed > 0
}

// ExitCode returns the process exit code describing the conclusion.
func (c Conclusion) ExitCode() int {
	if c.HasFailed() {
		return ExitCodeTestsFailed
	}
	return ExitCodeSuccess
}

// Exit terminates the process with the conclusion's exit code.
func (c Conclusion) Exit() {
	os.Exit(c.ExitCode())
}

// ExitIfFailed terminates the process when any test failed and returns
// otherwise.
func (c Conclusion) ExitIfFailed() {
	if c.HasFailed() {
		os.Exit(ExitCodeTestsFailed)
	}
}

// conclusionCollector folds the event stream into a Conclusion. It rides at
// the end of the reporter chain so it only counts events every other
// reporter accepted.
type conclusionCollector struct {
	conclusion Conclusion
}

func (c *conclusionCollector) Report(ev events.Event) error {
	switch ev.Kind {
	case events.KindTestFinished:
		if ev.Outcome.Failed() {
			c.conclusion.Failed++
		} else {
			c.conclusion.Passed++
			if ev.Bench {
				c.conclusion.Measured++
			}
		}
	case events.KindTestSkipped:
		if ev.Reason == trial.SkipReasonIgnored {
			c.conclusion.Ignored++
		} else {
			c.conclusion.FilteredOut++
		}
	}
	return nil
}

// Run executes the registered tests as selected by args and reports the
// conclusion. The returned error is nil when the run completed, even if
// tests failed; failures are conveyed through the Conclusion. Cancelling ctx
// stops admission and returns once the in-flight tests finished.
func Run(ctx context.Context, registry *trial.Registry, args Arguments) (Conclusion, error) {
	args = args.withDefaults()
	if args.TestThreads < 0 || args.TestTasks < 0 {
		return Conclusion{}, &ConfigError{Err: fmt.Errorf("test-threads and test-tasks must not be negative")}
	}

	initLogging()

	profile, err := config.LoadProfile(config.DefaultProfilePath())
	if err != nil {
		return Conclusion{}, &ConfigError{Err: err}
	}
	probePeriod, err := profile.ProbePeriod()
	if err != nil {
		return Conclusion{}, &ConfigError{Err: err}
	}

	trials, err := registry.Collect()
	if err != nil {
		return Conclusion{}, &ConfigError{Err: err}
	}

	out, logfile, err := openOutput(args.Logfile)
	if err != nil {
		return Conclusion{}, err
	}
	if logfile != nil {
		defer logfile.Close()
	}

	if args.List {
		if err := writeList(out, trials, args); err != nil {
			return Conclusion{}, &reporter.WriteError{Err: err}
		}
		return Conclusion{}, nil
	}

	run, skipped := trial.Filter(trials, trial.FilterOptions{
		Filters:        args.Filters,
		Skip:           args.Skip,
		Exact:          args.Exact,
		RunIgnored:     args.Ignored,
		IncludeIgnored: args.IncludeIgnored,
		BenchOnly:      args.Bench,
		TestOnly:       args.Test,
	})

	threads := args.TestThreads
	if threads == 0 {
		threads = profile.TestThreads
	}
	if threads > 0 {
		runtime.GOMAXPROCS(threads)
	}
	tasks := args.TestTasks
	if tasks == 0 {
		tasks = profile.TestTasks
	}
	budget := tasks
	if budget == 0 {
		budget = runtime.GOMAXPROCS(0)
	}
	logging.Debug("Harness", "Running %d of %d tests with budget %d", len(run), len(trials), budget)

	collector := &conclusionCollector{}
	sink := buildReporters(out, logfile == nil, profile, args, collector).Report

	sched := scheduler.New(run, skipped, registry.Providers(), scheduler.Options{
		Budget:      budget,
		ProbePeriod: probePeriod,
	}, sink)
	if _, err := sched.Run(ctx); err != nil {
		return collector.conclusion, err
	}
	return collector.conclusion, nil
}

// openOutput resolves the writer every reporter prints to. The second return
// is non-nil when a logfile was opened and must be closed by the caller.
func openOutput(path string) (*os.File, *os.File, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	logfile, err := os.Create(path)
	if err != nil {
		return nil, nil, &reporter.WriteError{Err: fmt.Errorf("creating logfile: %w", err)}
	}
	return logfile, logfile, nil
}

// buildReporters assembles the reporter chain: the console or terse writer,
// the configured file reports and finally the conclusion collector.
func buildReporters(out *os.File, toTerminal bool, profile config.Profile, args Arguments, collector *conclusionCollector) reporter.Reporter {
	interactive := toTerminal && term.IsTerminal(int(out.Fd()))

	var reporters []reporter.Reporter
	if args.Format == FormatTerse {
		reporters = append(reporters, reporter.NewTerse(out))
	} else {
		color := args.Color == ColorAlways || (args.Color == ColorAuto && interactive)
		reporters = append(reporters, reporter.NewConsole(out, reporter.ConsoleOptions{
			Color:   color,
			Spinner: interactive,
		}))
	}

	runID := uuid.New().String()
	if profile.JUnit.Path != "" {
		reporters = append(reporters, reporter.NewJUnit(profile.JUnit.Path, profile.JUnit.ReportName, runID))
	}
	if profile.Report.Path != "" {
		reporters = append(reporters, reporter.NewJSONReport(profile.Report.Path, runID))
	}
	reporters = append(reporters, collector)
	return reporter.Multi(reporters...)
}

// initLogging routes engine diagnostics to stderr so they never mix into
// reporter output. Diagnostics are warnings only by default; GAUNTLET_LOG
// names an explicit level and GAUNTLET_DEBUG is a shorthand for debug.
func initLogging() {
	level := logging.LevelWarn
	if v := os.Getenv("GAUNTLET_LOG"); v != "" {
		level = logging.ParseLogLevel(v)
	}
	if os.Getenv("GAUNTLET_DEBUG") != "" {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)
}

// Main parses the command line, runs the registered tests and exits the
// process with the resulting code. It is the last call of a test binary's
// main function.
func Main(registry *trial.Registry) {
	os.Exit(mainWith(registry, os.Args[1:]))
}

// mainWith is Main with argv and the exit code lifted out for testing.
func mainWith(registry *trial.Registry, argv []string) int {
	args := Arguments{Color: ColorAuto, Format: FormatPretty}

	var conclusion Conclusion
	cmd := newRootCommand(&args, func(cmd *cobra.Command, positional []string) error {
		args.Filters = positional

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var err error
		conclusion, err = Run(ctx, registry, args)
		return err
	})
	cmd.SetArgs(argv)

	if err := cmd.Execute(); err != nil {
		return exitCodeForError(err)
	}
	return conclusion.ExitCode()
}
