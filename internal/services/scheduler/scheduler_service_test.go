package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob(t *testing.T) {
	s := NewService(arbor.NewLogger(), time.UTC)

	noop := func() error { return nil }
	require.NoError(t, s.RegisterJob("refresh", "30 16 * * 1-5", "refresh", noop))

	assert.Error(t, s.RegisterJob("refresh", "30 16 * * 1-5", "duplicate", noop))
	assert.Error(t, s.RegisterJob("fast", "* * * * *", "too frequent", noop))
	assert.Error(t, s.RegisterJob("nil", "0 9 * * *", "no handler", nil))

	status, err := s.GetJobStatus("refresh")
	require.NoError(t, err)
	assert.Equal(t, "30 16 * * 1-5", status.Schedule)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun, "no next run while stopped")

	_, err = s.GetJobStatus("missing")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := NewService(arbor.NewLogger(), time.UTC)
	require.NoError(t, s.RegisterJob("refresh", "0 9 * * *", "refresh", func() error { return nil }))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(), "double start")

	status, err := s.GetJobStatus("refresh")
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	require.NotNil(t, status.NextRun)
	assert.True(t, status.NextRun.After(time.Now()))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(), "stop is idempotent")
}

func TestTriggerJob(t *testing.T) {
	s := NewService(arbor.NewLogger(), time.UTC)

	var calls atomic.Int32
	require.NoError(t, s.RegisterJob("ok", "0 9 * * *", "ok", func() error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, s.RegisterJob("failing", "0 10 * * *", "failing", func() error {
		return errors.New("naver unavailable")
	}))
	require.NoError(t, s.RegisterJob("panicking", "0 11 * * *", "panicking", func() error {
		panic("unexpected")
	}))

	assert.Error(t, s.TriggerJob("missing"))

	require.NoError(t, s.TriggerJob("ok"))
	require.NoError(t, s.TriggerJob("failing"))
	require.NoError(t, s.TriggerJob("panicking"))

	assert.Eventually(t, func() bool {
		status, _ := s.GetJobStatus("ok")
		return calls.Load() == 1 && status.LastRun != nil && !status.IsRunning
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		status, _ := s.GetJobStatus("failing")
		return status.LastError == "naver unavailable"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		status, _ := s.GetJobStatus("panicking")
		return status.LastError == "panic: unexpected" && !status.IsRunning
	}, 2*time.Second, 10*time.Millisecond)

	statuses := s.GetAllJobStatuses()
	assert.Len(t, statuses, 3)
}

func TestTriggerJob_RejectsOverlap(t *testing.T) {
	s := NewService(arbor.NewLogger(), time.UTC)

	release := make(chan struct{})
	var runs atomic.Int32
	require.NoError(t, s.RegisterJob("refresh", "0 9 * * *", "refresh", func() error {
		runs.Add(1)
		<-release
		return nil
	}))

	require.NoError(t, s.TriggerJob("refresh"))
	assert.Error(t, s.TriggerJob("refresh"), "second trigger before the first run finishes")

	status, err := s.GetJobStatus("refresh")
	require.NoError(t, err)
	assert.True(t, status.IsRunning)

	close(release)
	assert.Eventually(t, func() bool {
		status, _ := s.GetJobStatus("refresh")
		return !status.IsRunning && status.LastRun != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	require.NoError(t, s.TriggerJob("refresh"), "free again once the run completes")
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}
