package workout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerDrivesCountdown(t *testing.T) {
	s := runningSession(t, legDay())
	require.NoError(t, s.SetTimer(MinSeconds))
	require.NoError(t, s.StartTimer())

	ticks := make(chan Snapshot, MinSeconds)
	ticker := NewTicker(s, time.Millisecond, func(snap Snapshot) { ticks <- snap })
	ticker.Start(context.Background())
	ticker.Start(context.Background())
	defer ticker.Stop()

	require.Eventually(t, func() bool {
		return len(ticks) == MinSeconds
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateExerciseComplete, s.Snapshot().State)
	assert.Equal(t, 0, s.Snapshot().RemainingSeconds)
}

func TestTickerCountsFromTimerStart(t *testing.T) {
	const interval = 400 * time.Millisecond
	s := runningSession(t, legDay())

	ticker := NewTicker(s, interval, nil)
	ticker.Start(context.Background())
	defer ticker.Stop()

	time.Sleep(interval * 3 / 4)
	require.NoError(t, s.StartTimer())

	// The schedule from ticker start has passed, the restarted one has not.
	time.Sleep(interval / 2)
	assert.Equal(t, DefaultSeconds, s.Snapshot().RemainingSeconds)

	require.Eventually(t, func() bool {
		return s.Snapshot().RemainingSeconds == DefaultSeconds-1
	}, 2*interval, 10*time.Millisecond)
}

func TestTickerExitsWhenSessionEnds(t *testing.T) {
	s := runningSession(t, legDay())
	ticker := NewTicker(s, time.Millisecond, nil)
	ticker.Start(context.Background())

	s.Cancel()

	select {
	case <-ticker.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not exit after cancel")
	}
	ticker.Stop()
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(&stubLoader{routine: legDay()}, Config{TickInterval: time.Hour})
	defer m.Close()
	ctx := context.Background()

	s, err := m.Start(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, s.Snapshot().State)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get("alice", s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("bob", s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Cancel("bob", s.ID()), ErrSessionNotFound)

	require.NoError(t, m.Cancel("alice", s.ID()))
	assert.Equal(t, StateExited, s.Snapshot().State)
	assert.Equal(t, 0, m.Len())
}

func TestManagerKeepsFailedSessionForRetry(t *testing.T) {
	loader := &stubLoader{err: ErrRoutineNotFound}
	m := NewManager(loader, Config{TickInterval: time.Hour})
	defer m.Close()

	s, err := m.Start(context.Background(), "alice", "r1")
	assert.ErrorIs(t, err, ErrRoutineNotFound)
	assert.Equal(t, StateError, s.Snapshot().State)

	loader.err, loader.routine = nil, legDay()
	require.NoError(t, s.Retry(context.Background()))
	assert.Equal(t, StateRunning, s.Snapshot().State)
}

func TestManagerReap(t *testing.T) {
	m := NewManager(&stubLoader{routine: legDay()}, Config{TickInterval: time.Hour, IdleTTL: time.Hour, ReapInterval: time.Minute})
	defer m.Close()
	ctx := context.Background()

	active, err := m.Start(ctx, "alice", "r1")
	require.NoError(t, err)
	finished, err := m.Start(ctx, "alice", "r1")
	require.NoError(t, err)
	finished.Cancel()

	assert.Equal(t, 0, m.Reap(time.Now()))
	assert.Equal(t, 1, m.Reap(time.Now().Add(2*time.Minute)))
	_, err = m.Get("alice", active.ID())
	require.NoError(t, err)

	assert.Equal(t, 1, m.Reap(time.Now().Add(2*time.Hour)))
	assert.Equal(t, 0, m.Len())
}
