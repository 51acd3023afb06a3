package reporter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/events"
	"gauntlet/pkg/trial"
)

func runConsole(t *testing.T, opts ConsoleOptions, evs []events.Event) string {
	t.Helper()

	var buf bytes.Buffer
	r := NewConsole(&buf, opts)
	for _, ev := range evs {
		require.NoError(t, r.Report(ev))
	}
	return buf.String()
}

func TestConsolePassFailRun(t *testing.T) {
	start := time.Now()
	evs := []events.Event{
		events.NewRunStarted(events.RunStats{InitialRunCount: 2}),
		events.NewTestStarted("alpha", "", events.RunStats{InitialRunCount: 2}),
		events.NewTestFinished("alpha", "", false, start, 34*time.Millisecond, trial.Pass(), false,
			events.RunStats{InitialRunCount: 2, FinishedCount: 1, Passed: 1}),
		events.NewTestFinished("beta", "", false, start, 1500*time.Millisecond, trial.Fail("boom"), false,
			events.RunStats{InitialRunCount: 2, FinishedCount: 2, Passed: 1, Failed: 1}),
		events.NewRunFinished(2*time.Second,
			events.RunStats{InitialRunCount: 2, FinishedCount: 2, Passed: 1, Failed: 1}),
	}

	out := runConsole(t, ConsoleOptions{}, evs)

	want := strings.Join([]string{
		"    Starting 2 tests",
		"        PASS [   0.034s] alpha",
		"        FAIL [   1.500s] beta",
		"",
		"--- MESSAGE:             beta ---",
		"boom",
		"------------",
		"     Summary [   2.000s] 2 tests run: 1 passed, 1 failed, 0 skipped",
		"        FAIL [   1.500s] beta",
		"",
		"--- MESSAGE:             beta ---",
		"boom",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestConsoleSlowRun(t *testing.T) {
	start := time.Now()
	evs := []events.Event{
		events.NewRunStarted(events.RunStats{InitialRunCount: 2}),
		events.NewTestSlow("gamma", "", 15*time.Second, events.RunStats{InitialRunCount: 2}),
		events.NewTestFinished("gamma", "", false, start, 15200*time.Millisecond, trial.Pass(), true,
			events.RunStats{InitialRunCount: 2, FinishedCount: 1, Passed: 1, PassedSlow: 1}),
		events.NewTestFinished("delta", "", false, start, 100*time.Millisecond, trial.Pass(), false,
			events.RunStats{InitialRunCount: 2, FinishedCount: 2, Passed: 2, PassedSlow: 1}),
		events.NewRunFinished(15300*time.Millisecond,
			events.RunStats{InitialRunCount: 2, FinishedCount: 2, Passed: 2, PassedSlow: 1}),
	}

	out := runConsole(t, ConsoleOptions{}, evs)

	want := strings.Join([]string{
		"    Starting 2 tests",
		"        SLOW [> 15.000s] gamma",
		"        PASS [  15.200s] gamma",
		"        PASS [   0.100s] delta",
		"------------",
		"     Summary [  15.300s] 2 tests run: 2 passed (1 slow), 0 skipped",
		"        SLOW [  15.200s] gamma",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestConsoleSkipVisibility(t *testing.T) {
	stats := events.RunStats{InitialRunCount: 1, Skipped: 2}
	start := time.Now()
	evs := []events.Event{
		events.NewRunStarted(stats),
		events.NewTestSkipped("ignored_one", "", trial.SkipReasonIgnored, stats),
		events.NewTestSkipped("filtered_one", "", trial.SkipReasonFilter, stats),
		events.NewTestFinished("alpha", "", false, start, 10*time.Millisecond, trial.Pass(), false,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Passed: 1, Skipped: 2}),
		events.NewRunFinished(time.Second,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Passed: 1, Skipped: 2}),
	}

	t.Run("default level shows ignored only", func(t *testing.T) {
		out := runConsole(t, ConsoleOptions{}, evs)

		want := strings.Join([]string{
			"    Starting 1 test (2 skipped)",
			"        SKIP [         ] ignored_one",
			"        PASS [   0.010s] alpha",
			"------------",
			"     Summary [   1.000s] 1 test run: 1 passed, 2 skipped",
			"",
		}, "\n")
		assert.Equal(t, want, out)
	})

	t.Run("skip level shows and replays all skips", func(t *testing.T) {
		out := runConsole(t, ConsoleOptions{
			Status:      StatusLevelSkip,
			FinalStatus: FinalStatusLevelSkip,
		}, evs)

		assert.Contains(t, out, "        SKIP [         ] filtered_one\n")

		_, replay, found := strings.Cut(out, "------------")
		require.True(t, found)
		assert.Contains(t, replay, "        SKIP [         ] filtered_one\n")
		assert.Contains(t, replay, "        SKIP [         ] ignored_one\n")
		assert.Less(t, strings.Index(replay, "filtered_one"), strings.Index(replay, "ignored_one"),
			"replayed skips should be name-ordered")
	})

	t.Run("none level keeps only run framing", func(t *testing.T) {
		out := runConsole(t, ConsoleOptions{
			Status:      StatusLevelNone,
			FinalStatus: FinalStatusLevelNone,
		}, evs)
		assert.NotContains(t, out, "PASS")
		assert.NotContains(t, out, "SKIP")
		assert.Contains(t, out, "    Starting ")
		assert.Contains(t, out, "     Summary ")
	})
}

func TestConsoleKindAndFixtureLines(t *testing.T) {
	start := time.Now()
	evs := []events.Event{
		events.NewRunStarted(events.RunStats{InitialRunCount: 1}),
		events.NewFixtureReady("menagerie.Pool", 514*time.Millisecond, events.RunStats{InitialRunCount: 1}),
		events.NewTestFinished("checkout", "integration", false, start, 250*time.Millisecond, trial.Pass(), false,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Passed: 1}),
		events.NewRunFinished(time.Second,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Passed: 1}),
	}

	out := runConsole(t, ConsoleOptions{}, evs)

	assert.Contains(t, out, "       READY [   0.514s] menagerie.Pool\n")
	assert.Contains(t, out, "        PASS [   0.250s] [integration] checkout\n")
}

func TestConsolePartialRunCounts(t *testing.T) {
	start := time.Now()
	evs := []events.Event{
		events.NewRunStarted(events.RunStats{InitialRunCount: 3}),
		events.NewTestFinished("alpha", "", false, start, 10*time.Millisecond, trial.Pass(), false,
			events.RunStats{InitialRunCount: 3, FinishedCount: 1, Passed: 1}),
		events.NewRunFinished(time.Second,
			events.RunStats{InitialRunCount: 3, FinishedCount: 1, Passed: 1}),
	}

	out := runConsole(t, ConsoleOptions{}, evs)

	assert.Contains(t, out, "     Summary [   1.000s] 1/3 tests run: 1 passed, 0 skipped")
}

func TestConsoleColorizedStatus(t *testing.T) {
	start := time.Now()
	evs := []events.Event{
		events.NewRunStarted(events.RunStats{InitialRunCount: 1}),
		events.NewTestFinished("alpha", "", false, start, 10*time.Millisecond, trial.Pass(), false,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Passed: 1}),
		events.NewRunFinished(time.Second,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Passed: 1}),
	}

	out := runConsole(t, ConsoleOptions{Color: true}, evs)

	styledPass := text.Colors{text.FgGreen, text.Bold}.Sprint(fmt.Sprintf("%12s", "PASS"))
	assert.Contains(t, out, styledPass)
}

func TestConsoleFailureStackInBlock(t *testing.T) {
	start := time.Now()
	outcome := trial.FailWithStack("kaput", "goroutine 7 [running]:\nmain.crash()")
	evs := []events.Event{
		events.NewRunStarted(events.RunStats{InitialRunCount: 1}),
		events.NewTestFinished("omega", "", false, start, 40*time.Millisecond, outcome, false,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Failed: 1}),
		events.NewRunFinished(time.Second,
			events.RunStats{InitialRunCount: 1, FinishedCount: 1, Failed: 1}),
	}

	out := runConsole(t, ConsoleOptions{}, evs)

	assert.Contains(t, out, "--- MESSAGE:             omega ---\nkaput\ngoroutine 7 [running]:\nmain.crash()\n")
}
