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

var testConfig = Config{
	Timeout:          30 * time.Minute,
	WarningWindow:    5 * time.Minute,
	ActivityDebounce: time.Second,
	PollInterval:     10 * time.Second,
}

func newTestMonitor(t *testing.T, clock *fakeClock, store ActivityStore, onExpire func()) *Monitor {
	t.Helper()
	if onExpire == nil {
		onExpire = func() {}
	}
	m := NewMonitor("user:1", 1, testConfig, store, clock, zerolog.Nop(), onExpire)
	m.Start()
	clock.waitForTicker()
	t.Cleanup(m.Stop)
	return m
}

// pollCheck delivers enough ticks for one elapsed-time check to run.
func pollCheck(clock *fakeClock) {
	clock.Tick(10)
}

func TestMonitorStaysActiveUnderTimeout(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	clock.Advance(10 * time.Minute)
	pollCheck(clock)

	// Never transitions out of Active while well under the timeout.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateActive, m.Status().State)
	assert.Equal(t, 0, m.Status().RemainingSeconds)
}

func TestMonitorEntersWarningWindow(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	// 26 minutes idle leaves 4 minutes of a 30-minute timeout.
	clock.Advance(26 * time.Minute)
	pollCheck(clock)

	require.Eventually(t, func() bool {
		return m.Status().State == StateWarning
	}, 2*time.Second, 5*time.Millisecond)

	remaining := m.Status().RemainingSeconds
	assert.InDelta(t, 240, remaining, 10, "countdown should start near the true remaining time")
}

func TestMonitorWarningCountdownTicks(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	clock.Advance(26 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		return m.Status().State == StateWarning
	}, 2*time.Second, 5*time.Millisecond)

	before := m.Status().RemainingSeconds
	clock.Tick(5)

	require.Eventually(t, func() bool {
		return before-m.Status().RemainingSeconds >= 5
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateWarning, m.Status().State)
}

func TestMonitorExpiresAfterTimeout(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()

	var expiries atomic.Int32
	m := newTestMonitor(t, clock, store, func() { expiries.Add(1) })

	clock.Advance(31 * time.Minute)
	pollCheck(clock)

	require.Eventually(t, func() bool {
		return m.Status().State == StateExpired
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), expiries.Load())
}

func TestMonitorExpiresExactlyOnce(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()

	var expiries atomic.Int32
	m := newTestMonitor(t, clock, store, func() { expiries.Add(1) })

	clock.Advance(31 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		return m.Status().State == StateExpired
	}, 2*time.Second, 5*time.Millisecond)

	// Further ticks, activity and even a second elapsed check must not
	// re-fire the logout callback.
	clock.Advance(10 * time.Minute)
	pollCheck(clock)
	m.Activity()
	m.Extend()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), expiries.Load())
	assert.Equal(t, StateExpired, m.Status().State)
}

func TestMonitorExtendClearsWarning(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	clock.Advance(26 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		return m.Status().State == StateWarning
	}, 2*time.Second, 5*time.Millisecond)

	m.Extend()

	assert.Equal(t, StateActive, m.Status().State)

	// The shared timestamp was re-stamped, so the next check sees a
	// fresh session.
	pollCheck(clock)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateActive, m.Status().State)

	at, ok, err := store.LastActivity(context.Background(), "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, clock.Now().UnixMilli(), at.UnixMilli())
}

func TestMonitorActivityDebounce(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	start := clock.Now()

	// Within the debounce window of the initial stamp: coalesced away.
	clock.Advance(500 * time.Millisecond)
	m.Activity()

	at, ok, err := store.LastActivity(context.Background(), "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, start.UnixMilli(), at.UnixMilli())

	// Past the window: the report re-stamps the shared timestamp.
	clock.Advance(2 * time.Second)
	m.Activity()

	at, ok, err = store.LastActivity(context.Background(), "user:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, clock.Now().UnixMilli(), at.UnixMilli())
}

func TestMonitorRemoteActivityClearsWarning(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	clock.Advance(26 * time.Minute)
	pollCheck(clock)
	require.Eventually(t, func() bool {
		return m.Status().State == StateWarning
	}, 2*time.Second, 5*time.Millisecond)

	// Another client of the same session touches the shared timestamp.
	require.NoError(t, store.Touch(context.Background(), "user:1", clock.Now()))

	require.Eventually(t, func() bool {
		return m.Status().State == StateActive
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMonitorExpiresOnCorruptedTimestamp(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()

	var expiries atomic.Int32
	m := newTestMonitor(t, clock, store, func() { expiries.Add(1) })

	// A corrupted value must fail safe into expiry, not linger forever.
	store.SetRaw("user:1", "not-a-timestamp")
	pollCheck(clock)

	require.Eventually(t, func() bool {
		return m.Status().State == StateExpired
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), expiries.Load())
}

func TestMonitorExpiresOnMissingRecord(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryActivityStore()
	m := newTestMonitor(t, clock, store, nil)

	require.NoError(t, store.Remove(context.Background(), "user:1"))
	pollCheck(clock)

	require.Eventually(t, func() bool {
		return m.Status().State == StateExpired
	}, 2*time.Second, 5*time.Millisecond)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, 30*time.Minute, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.WarningWindow)
	assert.Equal(t, time.Second, cfg.ActivityDebounce)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "warning", StateWarning.String())
	assert.Equal(t, "expired", StateExpired.String())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "user:42", Key(42))
}
