package trial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedTrials(names ...string) []*Trial {
	out := make([]*Trial, 0, len(names))
	for _, n := range names {
		out = append(out, New(n, noopBody))
	}
	return out
}

func runNames(run []*Trial) []string {
	var out []string
	for _, tr := range run {
		out = append(out, tr.Name())
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name        string
		trials      []*Trial
		opts        FilterOptions
		wantRun     []string
		wantSkipped map[string]SkipReason
	}{
		{
			name:    "no options runs everything",
			trials:  namedTrials("foo", "bar", "barro"),
			opts:    FilterOptions{},
			wantRun: []string{"foo", "bar", "barro"},
		},
		{
			name:    "substring filter",
			trials:  namedTrials("foo", "bar", "barro"),
			opts:    FilterOptions{Filters: []string{"bar"}},
			wantRun: []string{"bar", "barro"},
			wantSkipped: map[string]SkipReason{
				"foo": SkipReasonFilter,
			},
		},
		{
			name:    "exact filter",
			trials:  namedTrials("foo", "bar", "barro"),
			opts:    FilterOptions{Filters: []string{"bar"}, Exact: true},
			wantRun: []string{"bar"},
			wantSkipped: map[string]SkipReason{
				"foo":   SkipReasonFilter,
				"barro": SkipReasonFilter,
			},
		},
		{
			name:    "multiple filters match any",
			trials:  namedTrials("foo", "bar", "qux"),
			opts:    FilterOptions{Filters: []string{"foo", "qux"}},
			wantRun: []string{"foo", "qux"},
			wantSkipped: map[string]SkipReason{
				"bar": SkipReasonFilter,
			},
		},
		{
			name:    "skip pattern",
			trials:  namedTrials("foo", "bar", "barro"),
			opts:    FilterOptions{Skip: []string{"bar"}},
			wantRun: []string{"foo"},
			wantSkipped: map[string]SkipReason{
				"bar":   SkipReasonSkipPattern,
				"barro": SkipReasonSkipPattern,
			},
		},
		{
			name:    "exact skip pattern",
			trials:  namedTrials("foo", "bar", "barro"),
			opts:    FilterOptions{Skip: []string{"bar"}, Exact: true},
			wantRun: []string{"foo", "barro"},
			wantSkipped: map[string]SkipReason{
				"bar": SkipReasonSkipPattern,
			},
		},
		{
			name:    "filter applies before skip",
			trials:  namedTrials("foo", "bar"),
			opts:    FilterOptions{Filters: []string{"bar"}, Skip: []string{"bar"}},
			wantRun: nil,
			wantSkipped: map[string]SkipReason{
				"foo": SkipReasonFilter,
				"bar": SkipReasonSkipPattern,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, skipped := Filter(tt.trials, tt.opts)
			assert.Equal(t, tt.wantRun, runNames(run))

			require.Len(t, skipped, len(tt.wantSkipped))
			for _, sk := range skipped {
				assert.Equal(t, tt.wantSkipped[sk.Trial.Name()], sk.Reason,
					"skip reason for %s", sk.Trial.Name())
			}
		})
	}
}

func TestFilterIgnorePolarity(t *testing.T) {
	trials := []*Trial{
		New("plain", noopBody),
		New("flaky", noopBody).WithIgnored(true),
	}

	t.Run("default skips ignored", func(t *testing.T) {
		run, skipped := Filter(trials, FilterOptions{})
		assert.Equal(t, []string{"plain"}, runNames(run))
		require.Len(t, skipped, 1)
		assert.Equal(t, "flaky", skipped[0].Trial.Name())
		assert.Equal(t, SkipReasonIgnored, skipped[0].Reason)
	})

	t.Run("include-ignored runs both", func(t *testing.T) {
		run, skipped := Filter(trials, FilterOptions{IncludeIgnored: true})
		assert.Equal(t, []string{"plain", "flaky"}, runNames(run))
		assert.Empty(t, skipped)
	})

	t.Run("ignored runs only ignored", func(t *testing.T) {
		run, skipped := Filter(trials, FilterOptions{RunIgnored: true})
		assert.Equal(t, []string{"flaky"}, runNames(run))
		require.Len(t, skipped, 1)
		assert.Equal(t, "plain", skipped[0].Trial.Name())
		assert.Equal(t, SkipReasonIgnored, skipped[0].Reason)
	})
}

func TestFilterKindPolarity(t *testing.T) {
	trials := []*Trial{
		New("unit", noopBody),
		NewBench("thrash", noopBody),
	}

	t.Run("bench only", func(t *testing.T) {
		run, skipped := Filter(trials, FilterOptions{BenchOnly: true})
		assert.Equal(t, []string{"thrash"}, runNames(run))
		require.Len(t, skipped, 1)
		assert.Equal(t, SkipReasonKind, skipped[0].Reason)
	})

	t.Run("test only", func(t *testing.T) {
		run, skipped := Filter(trials, FilterOptions{TestOnly: true})
		assert.Equal(t, []string{"unit"}, runNames(run))
		require.Len(t, skipped, 1)
		assert.Equal(t, SkipReasonKind, skipped[0].Reason)
	})
}

func TestFilterSubsetProperty(t *testing.T) {
	trials := namedTrials("alpha", "beta", "gamma", "alphabet")

	run, skipped := Filter(trials, FilterOptions{Filters: []string{"alpha"}})
	require.Len(t, run, 2)
	assert.Len(t, skipped, 2)

	// Tightening the filter set can only shrink the result set.
	tighter, _ := Filter(trials, FilterOptions{Filters: []string{"alpha"}, Exact: true})
	assert.Subset(t, runNames(run), runNames(tighter))
}
