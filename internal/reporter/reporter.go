package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gauntlet/internal/events"
)

// Reporter consumes run lifecycle events. Implementations keep whatever
// state they need internally; the scheduler's event loop calls Report from
// a single goroutine, so implementations do not need their own locking.
type Reporter interface {
	Report(events.Event) error
}

// WriteError marks a reporter's failure to persist its output, such as an
// unwritable report file or console stream. It is a run-level error, not a
// test failure, and maps to its own exit status.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing report: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// multi forwards each event to a fixed sequence of reporters.
type multi struct {
	reporters []Reporter
}

// Multi combines several reporters into one. Events are delivered in the
// given order; the first error stops delivery for that event and is
// returned.
func Multi(reporters ...Reporter) Reporter {
	return &multi{reporters: reporters}
}

func (m *multi) Report(ev events.Event) error {
	for _, r := range m.reporters {
		if err := r.Report(ev); err != nil {
			return err
		}
	}
	return nil
}

// errWriter batches a sequence of formatted writes and keeps the first
// error, so line writers do not have to check every Fprintf.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// displayName renders a trial name for console output, prefixing the kind
// when one is set.
func displayName(name, kind string) string {
	if kind == "" {
		return name
	}
	return "[" + kind + "] " + name
}

// writeFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so a crashed or aborted run never leaves
// a partially written report behind. Parent directories are created as
// needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
