// Package logging provides a structured logging system for gauntlet with unified
// log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Architecture
//
// The logging system is built around these core concepts:
//
// ## Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about engine operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// ## Structured Logging
// All log entries include:
//   - Timestamp with nanosecond precision
//   - Log level (Debug, Info, Warn, Error)
//   - Subsystem identifier for categorization
//   - Message content with optional formatting
//   - Optional error information
//
// # Usage Examples
//
// ## Initialization
//
//	import "gauntlet/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Harness", "Run starting")
//	logging.Debug("Config", "Loaded profile from %s", profilePath)
//	logging.Warn("Scheduler", "Probe period unusually short")
//	logging.Error("Reporter", err, "Failed to write report")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Harness**: Run setup, argument handling, and teardown
//   - **Config**: Profile loading and validation
//   - **Registry**: Trial collection and validation
//   - **Fixture**: Fixture initialization
//   - **Scheduler**: Trial scheduling and lifecycle
//   - **Reporter**: Report generation and output
//
// # Integration with slog
//
// The logging system integrates with Go's standard slog package:
//   - Uses slog.Handler implementations for output formatting
//   - Converts custom LogLevel to slog.Level for compatibility
//   - Sets the process-wide default logger on initialization
//
// Diagnostics are written to stderr so they never interleave with reporter
// output on stdout or in a logfile.
package logging
