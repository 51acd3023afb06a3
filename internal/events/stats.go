package events

// RunStats aggregates trial results over one run. The scheduler's event loop
// is the only writer; everything else sees value snapshots stamped onto
// events.
type RunStats struct {
	// InitialRunCount is the number of trials planned for execution, fixed
	// before the first trial starts. Excluded trials are not counted.
	InitialRunCount int

	// FinishedCount is the number of trials that reached a terminal outcome.
	// It equals Passed + Failed and never exceeds InitialRunCount.
	FinishedCount int

	Passed int
	Failed int

	// PassedSlow and FailedSlow count the subset of passed and failed trials
	// that triggered at least one slow notice.
	PassedSlow int
	FailedSlow int

	// Skipped counts trials excluded before execution, whatever the reason.
	Skipped int
}

// RecordSkipped counts one excluded trial.
func (s *RunStats) RecordSkipped() {
	s.Skipped++
}

// RecordFinished counts one terminal outcome.
func (s *RunStats) RecordFinished(failed, slow bool) {
	s.FinishedCount++
	if failed {
		s.Failed++
		if slow {
			s.FailedSlow++
		}
		return
	}
	s.Passed++
	if slow {
		s.PassedSlow++
	}
}

// HasFailed reports whether any trial failed.
func (s RunStats) HasFailed() bool {
	return s.Failed > 0
}

// AllFinished reports whether every planned trial reached a terminal state.
func (s RunStats) AllFinished() bool {
	return s.FinishedCount == s.InitialRunCount
}
