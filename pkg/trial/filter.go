package trial

import "strings"

// SkipReason explains why a trial was excluded from execution.
type SkipReason string

const (
	// SkipReasonIgnored indicates the trial's ignored flag disagreed with the
	// requested ignore polarity.
	SkipReasonIgnored SkipReason = "Ignored"

	// SkipReasonFilter indicates the trial name matched no positive filter.
	SkipReasonFilter SkipReason = "FilterMismatch"

	// SkipReasonSkipPattern indicates the trial name matched a skip pattern.
	SkipReasonSkipPattern SkipReason = "SkipPattern"

	// SkipReasonKind indicates the trial's bench flag disagreed with the
	// requested kind polarity.
	SkipReasonKind SkipReason = "KindMismatch"
)

// Skip pairs an excluded trial with the reason it was excluded.
type Skip struct {
	Trial  *Trial
	Reason SkipReason
}

// FilterOptions selects which collected trials run.
type FilterOptions struct {
	// Filters are positive name filters. When non-empty, a trial runs only if
	// some filter matches its name.
	Filters []string

	// Skip patterns exclude matching trials.
	Skip []string

	// Exact switches name matching from substring to exact equality, for
	// positive filters and skip patterns alike.
	Exact bool

	// RunIgnored runs only ignored trials.
	RunIgnored bool

	// IncludeIgnored runs ignored trials alongside the rest.
	IncludeIgnored bool

	// BenchOnly runs only benchmark trials.
	BenchOnly bool

	// TestOnly runs only non-benchmark trials.
	TestOnly bool
}

func (o FilterOptions) matches(name, pattern string) bool {
	if o.Exact {
		return name == pattern
	}
	return strings.Contains(name, pattern)
}

// exclude returns the reason a trial must not run, if any. Positive filters
// are checked first, then skip patterns, then kind polarity, then ignore
// polarity.
func (o FilterOptions) exclude(t *Trial) (SkipReason, bool) {
	if len(o.Filters) > 0 {
		matched := false
		for _, f := range o.Filters {
			if o.matches(t.name, f) {
				matched = true
				break
			}
		}
		if !matched {
			return SkipReasonFilter, true
		}
	}
	for _, s := range o.Skip {
		if o.matches(t.name, s) {
			return SkipReasonSkipPattern, true
		}
	}
	if o.BenchOnly && !t.bench {
		return SkipReasonKind, true
	}
	if o.TestOnly && t.bench {
		return SkipReasonKind, true
	}
	if o.RunIgnored {
		if !t.ignored {
			return SkipReasonIgnored, true
		}
		return "", false
	}
	if t.ignored && !o.IncludeIgnored {
		return SkipReasonIgnored, true
	}
	return "", false
}

// Filter partitions the collected trials into the runnable set and the
// excluded set, preserving collection order in both. Filter is pure: it never
// executes bodies or fixture providers.
func Filter(trials []*Trial, opts FilterOptions) (run []*Trial, skipped []Skip) {
	for _, t := range trials {
		if reason, out := opts.exclude(t); out {
			skipped = append(skipped, Skip{Trial: t, Reason: reason})
			continue
		}
		run = append(run, t)
	}
	return run, skipped
}
