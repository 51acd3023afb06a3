// Package config loads the run profile: the settings that tune a run but have
// no place on the fixed command-line surface, such as the slow-probe period
// and report output paths.
package config

import (
	"fmt"
	"time"
)

const (
	// DefaultSlowTimeout is the slow-probe period applied when the profile
	// does not set one.
	DefaultSlowTimeout = "15s"

	// DefaultJUnitReportName is the suite name stamped into JUnit output.
	DefaultJUnitReportName = "gauntlet"
)

// Profile is the top-level profile structure, read from .gauntlet.yaml.
type Profile struct {
	SlowTimeout string       `yaml:"slow-timeout,omitempty"` // probe period as a Go duration string (default "15s")
	TestThreads int          `yaml:"test-threads,omitempty"` // worker threads, 0 = available parallelism
	TestTasks   int          `yaml:"test-tasks,omitempty"`   // concurrency budget, 0 = test-threads
	JUnit       JUnitConfig  `yaml:"junit,omitempty"`
	Report      ReportConfig `yaml:"report,omitempty"`
}

// JUnitConfig enables the JUnit XML report.
type JUnitConfig struct {
	Path       string `yaml:"path,omitempty"`        // write JUnit XML here when set
	ReportName string `yaml:"report-name,omitempty"` // testsuites name attribute
}

// ReportConfig enables the JSON run report.
type ReportConfig struct {
	Path string `yaml:"path,omitempty"` // write the JSON run report here when set
}

// GetDefaultProfile returns the profile applied when no file exists.
func GetDefaultProfile() Profile {
	return Profile{
		SlowTimeout: DefaultSlowTimeout,
		JUnit: JUnitConfig{
			ReportName: DefaultJUnitReportName,
		},
	}
}

// ProbePeriod parses the configured slow timeout.
func (p Profile) ProbePeriod() (time.Duration, error) {
	d, err := time.ParseDuration(p.SlowTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid slow-timeout %q: %w", p.SlowTimeout, err)
	}
	return d, nil
}

// Validate checks the profile for values no run can honor.
func (p Profile) Validate() error {
	d, err := p.ProbePeriod()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("slow-timeout must be positive, got %q", p.SlowTimeout)
	}
	if p.TestThreads < 0 {
		return fmt.Errorf("test-threads must not be negative, got %d", p.TestThreads)
	}
	if p.TestTasks < 0 {
		return fmt.Errorf("test-tasks must not be negative, got %d", p.TestTasks)
	}
	return nil
}
