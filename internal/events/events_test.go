package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gauntlet/pkg/trial"
)

func TestConstructorsPopulateKindFields(t *testing.T) {
	stats := RunStats{InitialRunCount: 3}

	ev := NewRunStarted(stats)
	assert.Equal(t, KindRunStarted, ev.Kind)
	assert.Equal(t, 3, ev.Stats.InitialRunCount)
	assert.False(t, ev.Time.IsZero())

	ev = NewTestStarted("alpha", "unit", stats)
	assert.Equal(t, KindTestStarted, ev.Kind)
	assert.Equal(t, "alpha", ev.TestName)
	assert.Equal(t, "unit", ev.TestKind)

	ev = NewTestSlow("alpha", "", 15*time.Second, stats)
	assert.Equal(t, KindTestSlow, ev.Kind)
	assert.Equal(t, 15*time.Second, ev.Elapsed)

	ev = NewFixtureReady("*pool.DB", 120*time.Millisecond, stats)
	assert.Equal(t, KindFixtureReady, ev.Kind)
	assert.Equal(t, "*pool.DB", ev.Fixture)
	assert.Equal(t, 120*time.Millisecond, ev.Elapsed)

	start := time.Now()
	ev = NewTestFinished("alpha", "", true, start, 40*time.Millisecond, trial.Fail("boom"), true, stats)
	assert.Equal(t, KindTestFinished, ev.Kind)
	assert.Equal(t, start, ev.Start)
	assert.True(t, ev.Bench)
	assert.True(t, ev.Outcome.Failed())
	assert.True(t, ev.Slow)

	ev = NewTestSkipped("alpha", "", trial.SkipReasonIgnored, stats)
	assert.Equal(t, KindTestSkipped, ev.Kind)
	assert.Equal(t, trial.SkipReasonIgnored, ev.Reason)

	ev = NewRunFinished(2*time.Second, stats)
	assert.Equal(t, KindRunFinished, ev.Kind)
	assert.Equal(t, 2*time.Second, ev.Elapsed)
}

func TestStatsSnapshotsAreIndependent(t *testing.T) {
	stats := RunStats{InitialRunCount: 2}

	before := NewTestStarted("alpha", "", stats)
	stats.RecordFinished(false, false)
	after := NewTestFinished("alpha", "", false, time.Now(), time.Millisecond, trial.Pass(), false, stats)

	assert.Equal(t, 0, before.Stats.FinishedCount)
	assert.Equal(t, 1, after.Stats.FinishedCount)
}

func TestRunStatsRecording(t *testing.T) {
	tests := []struct {
		name   string
		record func(s *RunStats)
		want   RunStats
	}{
		{
			name:   "pass",
			record: func(s *RunStats) { s.RecordFinished(false, false) },
			want:   RunStats{FinishedCount: 1, Passed: 1},
		},
		{
			name:   "slow pass",
			record: func(s *RunStats) { s.RecordFinished(false, true) },
			want:   RunStats{FinishedCount: 1, Passed: 1, PassedSlow: 1},
		},
		{
			name:   "fail",
			record: func(s *RunStats) { s.RecordFinished(true, false) },
			want:   RunStats{FinishedCount: 1, Failed: 1},
		},
		{
			name:   "slow fail",
			record: func(s *RunStats) { s.RecordFinished(true, true) },
			want:   RunStats{FinishedCount: 1, Failed: 1, FailedSlow: 1},
		},
		{
			name:   "skip",
			record: func(s *RunStats) { s.RecordSkipped() },
			want:   RunStats{Skipped: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s RunStats
			tt.record(&s)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestRunStatsProperties(t *testing.T) {
	s := RunStats{InitialRunCount: 3}
	assert.False(t, s.HasFailed())
	assert.False(t, s.AllFinished())

	s.RecordFinished(false, false)
	s.RecordFinished(true, false)
	s.RecordFinished(false, true)

	assert.True(t, s.HasFailed())
	assert.True(t, s.AllFinished())
	assert.Equal(t, s.FinishedCount, s.Passed+s.Failed)
}
