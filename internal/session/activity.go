package session

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// ActivityStore is the shared last-activity timestamp for a session,
// visible to every client of the session. Values are stringified epoch
// milliseconds; writes are last-write-wins. Touch also notifies all
// subscribers of the key so other monitors can treat the write as proof
// of liveness.
type ActivityStore interface {
	// Touch records activity at the given time.
	Touch(ctx context.Context, key string, at time.Time) error

	// LastActivity returns the stored timestamp. ok is false when the key
	// is absent or the stored value is not a valid timestamp; callers
	// treat that as "already expired" (fail-safe).
	LastActivity(ctx context.Context, key string) (at time.Time, ok bool, err error)

	// Remove deletes the key, typically on logout.
	Remove(ctx context.Context, key string) error

	// Subscribe returns a channel receiving the timestamp of every Touch
	// on the key, and a cancel function releasing the subscription.
	Subscribe(key string) (<-chan time.Time, func())
}

// formatActivity and parseActivity define the on-the-wire timestamp format.
func formatActivity(at time.Time) string {
	return strconv.FormatInt(at.UnixMilli(), 10)
}

func parseActivity(raw string) (time.Time, bool) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// MemoryActivityStore is an in-process ActivityStore with subscriber
// fan-out. Suitable for a single node; use RedisActivityStore when
// multiple nodes share sessions.
type MemoryActivityStore struct {
	mu          sync.RWMutex
	values      map[string]string
	subscribers map[string]map[int]chan time.Time
	nextSubID   int
}

// NewMemoryActivityStore creates an empty in-process store.
func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{
		values:      make(map[string]string),
		subscribers: make(map[string]map[int]chan time.Time),
	}
}

func (s *MemoryActivityStore) Touch(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	s.values[key] = formatActivity(at)
	subs := make([]chan time.Time, 0, len(s.subscribers[key]))
	for _, ch := range s.subscribers[key] {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		// Non-blocking: a slow subscriber only misses an intermediate
		// notification, never blocks the writer.
		select {
		case ch <- at:
		default:
		}
	}
	return nil
}

func (s *MemoryActivityStore) LastActivity(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.RLock()
	raw, exists := s.values[key]
	s.mu.RUnlock()

	if !exists {
		return time.Time{}, false, nil
	}
	at, ok := parseActivity(raw)
	return at, ok, nil
}

func (s *MemoryActivityStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryActivityStore) Subscribe(key string) (<-chan time.Time, func()) {
	ch := make(chan time.Time, 8)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if s.subscribers[key] == nil {
		s.subscribers[key] = make(map[int]chan time.Time)
	}
	s.subscribers[key][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, exists := s.subscribers[key]; exists {
			delete(subs, id)
			if len(subs) == 0 {
				delete(s.subscribers, key)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// SweepStale removes records older than the given age and returns how
// many were dropped. Redis-backed stores expire keys via TTL instead;
// this keeps the in-process map from accumulating abandoned sessions.
func (s *MemoryActivityStore) SweepStale(_ context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, raw := range s.values {
		at, ok := parseActivity(raw)
		if !ok || at.Before(cutoff) {
			delete(s.values, key)
			removed++
		}
	}
	return removed, nil
}

// SetRaw stores an arbitrary raw value for the key. Used in tests to
// simulate corrupted timestamps.
func (s *MemoryActivityStore) SetRaw(key, raw string) {
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
}
