package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(t *testing.T, clock *fakeClock, store ActivityStore) *Supervisor {
	t.Helper()
	s := NewSupervisor(testConfig, store, clock, zerolog.Nop(), nil)
	t.Cleanup(s.StopAll)
	return s
}

func TestSupervisorWatchAndStatus(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	s := newTestSupervisor(t, clock, store)

	s.Watch("user:1", 1)
	clock.waitForTicker()

	status, ok := s.Status("user:1")
	require.True(t, ok)
	assert.Equal(t, StateActive, status.State)

	// Watch stamps the shared activity record immediately.
	_, ok, err := store.LastActivity(context.Background(), "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSupervisorUnknownKey(t *testing.T) {
	clock := newFakeClock(time.Now())
	s := newTestSupervisor(t, clock, NewMemoryActivityStore())

	_, ok := s.Status("user:404")
	assert.False(t, ok)
	assert.False(t, s.Activity("user:404"))
	assert.False(t, s.Extend("user:404"))
}

func TestSupervisorWatchReplacesMonitor(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	s := newTestSupervisor(t, clock, store)

	s.Watch("user:1", 1)
	clock.waitForTicker()

	// Push the first monitor into the warning window, then re-login.
	clock.Advance(26 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		status, ok := s.Status("user:1")
		return ok && status.State == StateWarning
	}, 2*time.Second, 5*time.Millisecond)

	s.Watch("user:1", 1)

	status, ok := s.Status("user:1")
	require.True(t, ok)
	assert.Equal(t, StateActive, status.State, "a fresh login replaces the old monitor")
}

func TestSupervisorRelease(t *testing.T) {
	clock := newFakeClock(time.Now())
	store := NewMemoryActivityStore()
	s := newTestSupervisor(t, clock, store)

	s.Watch("user:1", 1)
	clock.waitForTicker()
	s.Release("user:1")

	_, ok := s.Status("user:1")
	assert.False(t, ok)

	// Logout also drops the shared activity record.
	_, ok, err := store.LastActivity(context.Background(), "user:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSupervisorExpiryHandler(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()

	var expiries atomic.Int32
	var gotKey atomic.Value
	var gotUser atomic.Uint32

	s := NewSupervisor(testConfig, store, clock, zerolog.Nop(), func(key string, userID uint) {
		expiries.Add(1)
		gotKey.Store(key)
		gotUser.Store(uint32(userID))
	})
	t.Cleanup(s.StopAll)

	s.Watch("user:7", 7)
	clock.waitForTicker()

	clock.Advance(31 * time.Minute)
	pollCheck(clock)

	require.Eventually(t, func() bool {
		return expiries.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "user:7", gotKey.Load())
	assert.Equal(t, uint32(7), gotUser.Load())

	// The monitor is gone after its terminal transition, and so is the
	// activity record, but the key still reads as expired.
	status, ok := s.Status("user:7")
	require.True(t, ok)
	assert.Equal(t, StateExpired, status.State)
	_, ok, err := store.LastActivity(context.Background(), "user:7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSupervisorExpiredUntilRelogin(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	s := newTestSupervisor(t, clock, store)

	s.Watch("user:1", 1)
	clock.waitForTicker()

	clock.Advance(31 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		status, ok := s.Status("user:1")
		return ok && status.State == StateExpired
	}, 2*time.Second, 5*time.Millisecond)

	// Expired is terminal: repeated polls keep reporting it, and activity
	// reports cannot resurrect the session.
	for i := 0; i < 3; i++ {
		status, ok := s.Status("user:1")
		require.True(t, ok)
		assert.Equal(t, StateExpired, status.State)
	}
	assert.False(t, s.Activity("user:1"))
	assert.False(t, s.Extend("user:1"))

	// Only a fresh login clears the expiry.
	s.Watch("user:1", 1)
	clock.waitForTicker()
	status, ok := s.Status("user:1")
	require.True(t, ok)
	assert.Equal(t, StateActive, status.State)
}

func TestSupervisorSetExpiryHandler(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()

	s := NewSupervisor(testConfig, store, clock, zerolog.Nop(), nil)
	t.Cleanup(s.StopAll)

	var expiries atomic.Int32
	s.SetExpiryHandler(func(string, uint) { expiries.Add(1) })

	s.Watch("user:1", 1)
	clock.waitForTicker()
	clock.Advance(31 * time.Minute)
	pollCheck(clock)

	require.Eventually(t, func() bool {
		return expiries.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSupervisorActivityAndExtend(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	s := newTestSupervisor(t, clock, store)

	s.Watch("user:1", 1)
	clock.waitForTicker()

	clock.Advance(26 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		status, ok := s.Status("user:1")
		return ok && status.State == StateWarning
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, s.Extend("user:1"))
	status, ok := s.Status("user:1")
	require.True(t, ok)
	assert.Equal(t, StateActive, status.State)

	assert.True(t, s.Activity("user:1"))
}

func TestSupervisorStopAll(t *testing.T) {
	clock := newFakeClock(time.Now())
	s := NewSupervisor(testConfig, NewMemoryActivityStore(), clock, zerolog.Nop(), nil)

	s.Watch("user:1", 1)
	s.Watch("user:2", 2)
	clock.waitForTicker()

	s.StopAll()

	_, ok := s.Status("user:1")
	assert.False(t, ok)
	_, ok = s.Status("user:2")
	assert.False(t, ok)
}
