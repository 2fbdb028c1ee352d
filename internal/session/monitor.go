package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmvoss/hotelier/internal/config"
)

// State is the monitor's position in the Active -> Warning -> Expired
// machine. Expired is terminal until the user signs in again.
type State int

const (
	StateActive State = iota
	StateWarning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// ExpiredMessage is attached to expiry notices so clients can render a
// contextual banner on the login view.
const ExpiredMessage = "Your session has expired due to inactivity. Please sign in again."

// Config holds the monitor timing parameters.
type Config struct {
	Timeout          time.Duration // Inactivity timeout (default 30m)
	WarningWindow    time.Duration // Warning lead time before expiry (default 5m)
	ActivityDebounce time.Duration // Coalescing window for activity reports (default 1s)
	PollInterval     time.Duration // Elapsed-time check interval (default 10s)
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Minute
	}
	if c.WarningWindow <= 0 {
		c.WarningWindow = 5 * time.Minute
	}
	if c.ActivityDebounce <= 0 {
		c.ActivityDebounce = time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	return c
}

// ConfigFrom builds a monitor Config from the application configuration.
func ConfigFrom(c config.Session) Config {
	return Config{
		Timeout:          c.SessionTimeout(),
		WarningWindow:    c.WarningWindow(),
		ActivityDebounce: c.ActivityDebounce,
		PollInterval:     c.PollInterval,
	}.withDefaults()
}

// Status is a snapshot of the monitor state for clients.
type Status struct {
	State            State `json:"-"`
	RemainingSeconds int   `json:"remainingSeconds"`
}

// Monitor tracks one session's inactivity. All timers run on a single
// one-second tick so a fake clock can drive the whole machine in tests.
type Monitor struct {
	key      string
	userID   uint
	cfg      Config
	store    ActivityStore
	clock    Clock
	logger   zerolog.Logger
	onExpire func()

	mu         sync.Mutex
	state      State
	remaining  int // seconds left in the warning countdown
	lastReport time.Time

	notify      <-chan time.Time
	unsubscribe func()
	done        chan struct{}
	stopOnce    sync.Once
}

// NewMonitor creates a monitor for the given session key. The onExpire
// callback is invoked exactly once when the session expires; it is
// responsible for destroying the server-side session.
func NewMonitor(key string, userID uint, cfg Config, store ActivityStore, clock Clock, logger zerolog.Logger, onExpire func()) *Monitor {
	notify, unsubscribe := store.Subscribe(key)

	return &Monitor{
		key:         key,
		userID:      userID,
		cfg:         cfg.withDefaults(),
		store:       store,
		clock:       clock,
		logger:      logger.With().Str("session", shortKey(key)).Uint("user_id", userID).Logger(),
		onExpire:    onExpire,
		notify:      notify,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
	}
}

// Start stamps initial activity and begins the background check loop.
func (m *Monitor) Start() {
	now := m.clock.Now()
	m.mu.Lock()
	m.lastReport = now
	m.mu.Unlock()
	_ = m.store.Touch(context.Background(), m.key, now)

	go m.run()
}

// Stop cancels all timers and the activity subscription. Safe to call
// more than once and after expiry.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
	})
}

// Activity records a debounced user-activity report: reports arriving
// within the debounce window of the previous one are coalesced away.
// Qualifying reports re-stamp the shared timestamp and clear any local
// Warning state.
func (m *Monitor) Activity() {
	now := m.clock.Now()

	m.mu.Lock()
	if m.state == StateExpired {
		m.mu.Unlock()
		return
	}
	if !m.lastReport.IsZero() && now.Sub(m.lastReport) < m.cfg.ActivityDebounce {
		m.mu.Unlock()
		return
	}
	m.lastReport = now
	m.clearWarningLocked()
	m.mu.Unlock()

	_ = m.store.Touch(context.Background(), m.key, now)
}

// Extend re-stamps activity and cancels the warning countdown, equivalent
// to a real activity report but bypassing the debounce ("stay signed in").
func (m *Monitor) Extend() {
	now := m.clock.Now()

	m.mu.Lock()
	if m.state == StateExpired {
		m.mu.Unlock()
		return
	}
	m.lastReport = now
	m.clearWarningLocked()
	m.mu.Unlock()

	_ = m.store.Touch(context.Background(), m.key, now)
}

// Status returns the current state and, during Warning, the seconds left.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := 0
	if m.state == StateWarning {
		remaining = m.remaining
	}
	return Status{State: m.state, RemainingSeconds: remaining}
}

// run is the single timer loop: a one-second base tick drives the warning
// countdown, and every PollInterval worth of ticks triggers an elapsed-time
// check against the store.
func (m *Monitor) run() {
	tick := m.clock.NewTicker(time.Second)
	defer tick.Stop()

	pollEvery := int(m.cfg.PollInterval / time.Second)
	if pollEvery < 1 {
		pollEvery = 1
	}
	secs := 0

	for {
		select {
		case <-m.done:
			return

		case at := <-m.notify:
			m.handleRemoteActivity(at)

		case <-tick.C():
			m.tickCountdown()
			secs++
			if secs >= pollEvery {
				secs = 0
				m.check()
			}
		}
	}
}

// check computes elapsed time since the stored timestamp and drives the
// Active -> Warning and -> Expired transitions.
func (m *Monitor) check() {
	now := m.clock.Now()
	at, ok, err := m.store.LastActivity(context.Background(), m.key)
	if err != nil {
		// Transient store failure: skip this check rather than expire a
		// live session.
		m.logger.Warn().Err(err).Msg("activity store read failed")
		return
	}
	if !ok {
		// Missing or unparseable timestamp is treated as already expired.
		m.expire("activity record missing or invalid")
		return
	}

	elapsed := now.Sub(at)
	if elapsed >= m.cfg.Timeout {
		m.expire("inactivity timeout reached")
		return
	}

	remaining := m.cfg.Timeout - elapsed
	if remaining <= m.cfg.WarningWindow {
		m.mu.Lock()
		if m.state == StateActive {
			m.state = StateWarning
			m.remaining = int(remaining / time.Second)
			m.logger.Info().Int("remaining_seconds", m.remaining).Msg("session warning started")
		}
		m.mu.Unlock()
	}
}

// tickCountdown decrements the warning countdown once per second.
func (m *Monitor) tickCountdown() {
	m.mu.Lock()
	if m.state != StateWarning {
		m.mu.Unlock()
		return
	}
	m.remaining--
	expired := m.remaining <= 0
	m.mu.Unlock()

	if expired {
		m.expire("warning countdown elapsed")
	}
}

// handleRemoteActivity treats activity recorded by another client of the
// same session as proof of liveness: any local Warning is cancelled.
func (m *Monitor) handleRemoteActivity(at time.Time) {
	m.mu.Lock()
	if m.state == StateWarning {
		m.logger.Debug().Time("at", at).Msg("warning cleared by remote activity")
	}
	m.clearWarningLocked()
	m.mu.Unlock()
}

// clearWarningLocked returns the monitor to Active. Caller holds mu.
func (m *Monitor) clearWarningLocked() {
	if m.state == StateWarning {
		m.state = StateActive
		m.remaining = 0
	}
}

// expire performs the terminal transition exactly once: timers stop, the
// logout callback fires, and the monitor stays Expired.
func (m *Monitor) expire(reason string) {
	m.mu.Lock()
	if m.state == StateExpired {
		m.mu.Unlock()
		return
	}
	m.state = StateExpired
	m.remaining = 0
	m.mu.Unlock()

	m.logger.Info().Str("reason", reason).Msg("session expired")

	if m.onExpire != nil {
		m.onExpire()
	}
	m.Stop()
}

// shortKey truncates session tokens for log output.
func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
