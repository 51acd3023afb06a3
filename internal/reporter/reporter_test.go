package reporter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/events"
)

type recordingReporter struct {
	kinds []events.Kind
}

func (r *recordingReporter) Report(ev events.Event) error {
	r.kinds = append(r.kinds, ev.Kind)
	return nil
}

type failingReporter struct {
	err   error
	calls int
}

func (r *failingReporter) Report(events.Event) error {
	r.calls++
	return r.err
}

func TestMultiDeliversToAllInOrder(t *testing.T) {
	first := &recordingReporter{}
	second := &recordingReporter{}
	m := Multi(first, second)

	require.NoError(t, m.Report(events.NewRunStarted(events.RunStats{})))
	require.NoError(t, m.Report(events.NewRunFinished(0, events.RunStats{})))

	want := []events.Kind{events.KindRunStarted, events.KindRunFinished}
	assert.Equal(t, want, first.kinds)
	assert.Equal(t, want, second.kinds)
}

func TestMultiStopsAtFirstError(t *testing.T) {
	sentinel := errors.New("disk full")
	before := &recordingReporter{}
	failing := &failingReporter{err: &WriteError{Err: sentinel}}
	after := &recordingReporter{}

	m := Multi(before, failing, after)
	err := m.Report(events.NewRunStarted(events.RunStats{}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))

	var we *WriteError
	assert.True(t, errors.As(err, &we))

	assert.Len(t, before.kinds, 1)
	assert.Equal(t, 1, failing.calls)
	assert.Empty(t, after.kinds, "reporters after the failing one must not see the event")
}

func TestWriteErrorMessage(t *testing.T) {
	err := &WriteError{Err: errors.New("no space left on device")}
	assert.Equal(t, "writing report: no space left on device", err.Error())
}

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
		require.NoError(t, writeFileAtomic(path, []byte("hello")))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(raw))
	})

	t.Run("replaces existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		require.NoError(t, writeFileAtomic(path, []byte("first")))
		require.NoError(t, writeFileAtomic(path, []byte("second")))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "second", string(raw))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
