package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Supervisor owns one Monitor per live session. It is the wiring point
// between the auth handlers (login starts a watch, logout releases it) and
// the HTTP session endpoints (activity, status, extend).
type Supervisor struct {
	cfg    Config
	store  ActivityStore
	clock  Clock
	logger zerolog.Logger

	// onExpire is invoked after a monitor expires, with the session key
	// and user ID. It destroys the server-side session.
	onExpire func(key string, userID uint)

	mu       sync.Mutex
	monitors map[string]*Monitor
	// expiredKeys marks sessions whose monitor hit the terminal Expired
	// state. The mark keeps Status reporting expired after the monitor is
	// torn down; only a fresh Watch (re-login) clears it.
	expiredKeys map[string]struct{}
}

// NewSupervisor creates a supervisor over the given activity store.
func NewSupervisor(cfg Config, store ActivityStore, clock Clock, logger zerolog.Logger, onExpire func(key string, userID uint)) *Supervisor {
	return &Supervisor{
		cfg:         cfg.withDefaults(),
		store:       store,
		clock:       clock,
		logger:      logger,
		onExpire:    onExpire,
		monitors:    make(map[string]*Monitor),
		expiredKeys: make(map[string]struct{}),
	}
}

// SetExpiryHandler installs the logout hook. Must be called before Watch.
// Split from the constructor because the session manager that destroys
// sessions is itself constructed after the supervisor.
func (s *Supervisor) SetExpiryHandler(fn func(key string, userID uint)) {
	s.onExpire = fn
}

// Watch starts monitoring a session, replacing any previous monitor for
// the same key (re-login reuses the path).
func (s *Supervisor) Watch(key string, userID uint) {
	var monitor *Monitor
	monitor = NewMonitor(key, userID, s.cfg, s.store, s.clock, s.logger, func() {
		s.expired(key, userID, monitor)
	})

	s.mu.Lock()
	if old, exists := s.monitors[key]; exists {
		old.Stop()
	}
	s.monitors[key] = monitor
	delete(s.expiredKeys, key)
	s.mu.Unlock()

	monitor.Start()
}

// Release stops monitoring a session and removes its activity record.
// Called on explicit logout.
func (s *Supervisor) Release(key string) {
	s.mu.Lock()
	monitor, exists := s.monitors[key]
	delete(s.monitors, key)
	delete(s.expiredKeys, key)
	s.mu.Unlock()

	if exists {
		monitor.Stop()
	}
	_ = s.store.Remove(context.Background(), key)
}

// Activity forwards a debounced activity report to the session's monitor.
// Returns false when no monitor is watching the key.
func (s *Supervisor) Activity(key string) bool {
	if monitor, ok := s.get(key); ok {
		monitor.Activity()
		return true
	}
	return false
}

// Extend re-stamps activity and cancels the warning countdown.
func (s *Supervisor) Extend(key string) bool {
	if monitor, ok := s.get(key); ok {
		monitor.Extend()
		return true
	}
	return false
}

// Status returns the monitor snapshot for a session. A session whose
// monitor expired keeps reporting StateExpired until the next Watch, so
// clients polling after the forced logout see the expiry rather than an
// unknown session.
func (s *Supervisor) Status(key string) (Status, bool) {
	if monitor, ok := s.get(key); ok {
		return monitor.Status(), true
	}

	s.mu.Lock()
	_, expired := s.expiredKeys[key]
	s.mu.Unlock()
	if expired {
		return Status{State: StateExpired}, true
	}
	return Status{}, false
}

// StopAll stops every monitor. Called during graceful shutdown.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	monitors := make([]*Monitor, 0, len(s.monitors))
	for _, m := range s.monitors {
		monitors = append(monitors, m)
	}
	s.monitors = make(map[string]*Monitor)
	s.mu.Unlock()

	for _, m := range monitors {
		m.Stop()
	}
}

func (s *Supervisor) get(key string) (*Monitor, bool) {
	s.mu.Lock()
	monitor, ok := s.monitors[key]
	s.mu.Unlock()
	return monitor, ok
}

// expired removes the monitor for a key after its terminal transition,
// marks the key expired and invokes the logout hook. A stale expiry from
// a monitor that re-login already replaced is dropped.
func (s *Supervisor) expired(key string, userID uint, m *Monitor) {
	s.mu.Lock()
	if current, ok := s.monitors[key]; ok && current != m {
		s.mu.Unlock()
		return
	}
	delete(s.monitors, key)
	s.expiredKeys[key] = struct{}{}
	s.mu.Unlock()

	_ = s.store.Remove(context.Background(), key)

	if s.onExpire != nil {
		s.onExpire(key, userID)
	}
}
