package harness

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ColorSetting is the value domain of the --color flag.
type ColorSetting string

const (
	// ColorAuto colorizes output only when stdout is a terminal.
	ColorAuto ColorSetting = "auto"
	// ColorAlways colorizes output unconditionally.
	ColorAlways ColorSetting = "always"
	// ColorNever disables coloring.
	ColorNever ColorSetting = "never"
)

// String implements pflag.Value.
func (c *ColorSetting) String() string {
	return string(*c)
}

// Set implements pflag.Value. Unknown settings are rejected.
func (c *ColorSetting) Set(value string) error {
	switch ColorSetting(value) {
	case ColorAuto, ColorAlways, ColorNever:
		*c = ColorSetting(value)
		return nil
	default:
		return fmt.Errorf("invalid color setting %q (must be auto, always or never)", value)
	}
}

// Type implements pflag.Value.
func (c *ColorSetting) Type() string {
	return "auto|always|never"
}

// FormatSetting is the value domain of the --format flag.
type FormatSetting string

const (
	// FormatPretty selects the default console output with one padded status
	// line per test and a final summary.
	FormatPretty FormatSetting = "pretty"
	// FormatTerse selects the compact output with one short result line per
	// test.
	FormatTerse FormatSetting = "terse"
)

// String implements pflag.Value.
func (f *FormatSetting) String() string {
	return string(*f)
}

// Set implements pflag.Value. Unknown settings are rejected.
func (f *FormatSetting) Set(value string) error {
	switch FormatSetting(value) {
	case FormatPretty, FormatTerse:
		*f = FormatSetting(value)
		return nil
	default:
		return fmt.Errorf("invalid format setting %q (must be pretty or terse)", value)
	}
}

// Type implements pflag.Value.
func (f *FormatSetting) Type() string {
	return "pretty|terse"
}

// Arguments is everything the command line can express. The zero value
// behaves like an invocation without flags, so it can be used directly when
// driving Run programmatically.
type Arguments struct {
	// IncludeIgnored runs ignored and non-ignored tests alike.
	IncludeIgnored bool
	// Ignored runs only the tests marked ignored.
	Ignored bool
	// Test restricts the run to tests, Bench to benchmarks. Mutually
	// exclusive.
	Test  bool
	Bench bool
	// List prints the selected test names instead of running them.
	List bool
	// NoCapture is accepted for command line compatibility; output is never
	// captured, so it changes nothing.
	NoCapture bool
	// Exact matches filters against full names instead of substrings.
	Exact bool
	// Quiet is an alias for the terse format.
	Quiet bool
	// TestThreads caps the worker parallelism, TestTasks the number of
	// concurrently admitted tests. Zero means "pick a default".
	TestThreads int
	TestTasks   int
	// Logfile redirects all reporter output into a file.
	Logfile string
	// Skip excludes tests whose names match any of the given filters.
	Skip []string
	// Color and Format select console styling and layout.
	Color  ColorSetting
	Format FormatSetting
	// Filters are the positional name filters.
	Filters []string
}

// withDefaults resolves the zero value and the quiet alias into an explicit
// configuration.
func (a Arguments) withDefaults() Arguments {
	if a.Color == "" {
		a.Color = ColorAuto
	}
	if a.Format == "" {
		a.Format = FormatPretty
	}
	if a.Quiet {
		a.Format = FormatTerse
	}
	return a
}

// newRootCommand builds the cobra command carrying the full flag surface.
// Parsed values land in args; runE receives the positional filters.
func newRootCommand(args *Arguments, runE func(cmd *cobra.Command, positional []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gauntlet [FILTERS...]",
		Short: "Run the registered tests and benchmarks",
		Long: `Runs every test registered with the harness, sharing fixtures between
tests and scheduling them concurrently. Positional FILTERS select tests by
substring (or full name with --exact).`,
		Args:         cobra.ArbitraryArgs,
		RunE:         runE,
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.BoolVar(&args.IncludeIgnored, "include-ignored", false, "Run ignored and not ignored tests")
	flags.BoolVar(&args.Ignored, "ignored", false, "Run only ignored tests")
	flags.BoolVar(&args.Test, "test", false, "Run tests and not benchmarks")
	flags.BoolVar(&args.Bench, "bench", false, "Run benchmarks instead of tests")
	flags.BoolVar(&args.List, "list", false, "List all tests and benchmarks")
	flags.BoolVar(&args.NoCapture, "nocapture", false, "No-op (output is never captured)")
	flags.BoolVar(&args.Exact, "exact", false, "Exactly match filters rather than by substring")
	flags.BoolVarP(&args.Quiet, "quiet", "q", false, "Display one character per test instead of one line. Alias to --format=terse")
	flags.IntVar(&args.TestThreads, "test-threads", 0, "Number of threads used for running tests in parallel (0 = available parallelism)")
	flags.IntVar(&args.TestTasks, "test-tasks", 0, "Number of concurrently running tests (0 = test-threads)")
	flags.StringVar(&args.Logfile, "logfile", "", "Write all output to the given file instead of stdout")
	flags.StringArrayVar(&args.Skip, "skip", nil, "Skip tests whose names contain FILTER (may be used multiple times)")
	flags.Var(&args.Color, "color", "Coloring of the output")
	flags.Var(&args.Format, "format", "Formatting of the output")

	cmd.MarkFlagsMutuallyExclusive("test", "bench")
	cmd.MarkFlagsMutuallyExclusive("quiet", "format")

	return cmd
}

// ParseArguments parses a command line into Arguments without running
// anything. Parse failures come back as the error instead of being printed,
// so callers can surface them their own way.
func ParseArguments(argv []string) (Arguments, error) {
	args := Arguments{Color: ColorAuto, Format: FormatPretty}
	cmd := newRootCommand(&args, func(_ *cobra.Command, positional []string) error {
		args.Filters = positional
		return nil
	})
	cmd.SetArgs(argv)
	cmd.SilenceErrors = true
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		return Arguments{}, err
	}
	return args, nil
}
