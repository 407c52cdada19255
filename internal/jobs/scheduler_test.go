package jobs

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCheckpointer struct {
	calls atomic.Int32
	mode  atomic.Value
	err   error
}

func (c *countingCheckpointer) CheckpointWAL(mode string) error {
	c.calls.Add(1)
	c.mode.Store(mode)
	return c.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsCheckpointsUntilStopped(t *testing.T) {
	checkpointer := &countingCheckpointer{}
	s := NewScheduler(checkpointer, discardLogger(), 5*time.Millisecond)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		return checkpointer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Equal(t, "PASSIVE", checkpointer.mode.Load())

	stopped := checkpointer.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, checkpointer.calls.Load())
}

func TestSchedulerDisabledWithoutInterval(t *testing.T) {
	checkpointer := &countingCheckpointer{}
	s := NewScheduler(checkpointer, discardLogger(), 0)

	require.NoError(t, s.Start())
	assert.False(t, s.IsRunning())
	s.Stop()
	assert.Zero(t, checkpointer.calls.Load())
}

func TestSchedulerSurvivesFailingCheckpoints(t *testing.T) {
	checkpointer := &countingCheckpointer{err: errors.New("database is locked")}
	s := NewScheduler(checkpointer, discardLogger(), 5*time.Millisecond)

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool {
		return checkpointer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestManualCheckpointWrapsError(t *testing.T) {
	checkpointer := &countingCheckpointer{err: errors.New("disk I/O error")}
	s := NewScheduler(checkpointer, discardLogger(), 0)

	err := s.Checkpoint()
	require.Error(t, err)
	assert.ErrorIs(t, err, checkpointer.err)
}
