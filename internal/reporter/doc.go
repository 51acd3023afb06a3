// Package reporter contains the consumers of the run event stream.
//
// The scheduler produces one logical stream of lifecycle events; every
// reporter attached to the run sees the same sequence and derives its own
// view of the run from it. Reporters never share mutable state, so they are
// order-independent with respect to each other. A reporter that cannot
// persist its output returns a WriteError, which aborts the run with a
// status distinct from a test failure.
package reporter
