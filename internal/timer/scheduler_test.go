package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// waitFor polls until check passes or the deadline expires.
func waitFor(t *testing.T, check func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	require.Fail(t, "condition never became true")
}

// TestSchedulerFires verifies a scheduled callback runs once its deadline passes.
func TestSchedulerFires(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var fired atomic.Int32

	require.NoError(t, s.After("a", 10*time.Millisecond, func() { fired.Add(1) }))
	waitFor(t, func() bool { return fired.Load() == 1 })
	require.Equal(t, 0, s.Len())
}

// TestSchedulerReplaceSameID verifies that rescheduling an id replaces the
// pending task instead of stacking a second one.
func TestSchedulerReplaceSameID(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var first, second atomic.Int32

	require.NoError(t, s.After("a", time.Hour, func() { first.Add(1) }))
	require.NoError(t, s.After("a", 10*time.Millisecond, func() { second.Add(1) }))
	require.Equal(t, 1, s.Len())

	waitFor(t, func() bool { return second.Load() == 1 })
	require.Equal(t, int32(0), first.Load())
}

// TestSchedulerCancel verifies cancellation of pending tasks.
func TestSchedulerCancel(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var fired atomic.Int32

	require.NoError(t, s.After("a", 50*time.Millisecond, func() { fired.Add(1) }))
	require.True(t, s.Cancel("a"))
	require.False(t, s.Cancel("a"))
	require.Equal(t, 0, s.Len())

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(0), fired.Load())
}

// TestSchedulerEarlierTaskWakes verifies that a newly scheduled earlier task
// fires on time even while the loop sleeps toward a later deadline.
func TestSchedulerEarlierTaskWakes(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var fired atomic.Int32

	require.NoError(t, s.After("later", time.Hour, func() {}))
	require.NoError(t, s.After("sooner", 10*time.Millisecond, func() { fired.Add(1) }))

	waitFor(t, func() bool { return fired.Load() == 1 })
}

// TestSchedulerStop verifies scheduling after Stop is refused.
func TestSchedulerStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	s.Start()
	s.Stop()

	err := s.After("a", time.Millisecond, func() {})
	require.ErrorIs(t, err, ErrSchedulerStopped)
	require.Equal(t, 0, s.Len())

	// Stop is idempotent.
	s.Stop()
}
