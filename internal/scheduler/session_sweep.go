// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jmvoss/hotelier/internal/session"
)

// StaleSweeper is implemented by activity stores that need explicit
// cleanup of abandoned records.
type StaleSweeper interface {
	SweepStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// SessionSweepScheduler periodically removes stale activity records and
// enqueues the background cleanup tasks.
type SessionSweepScheduler struct {
	schedule string
	maxAge   time.Duration
	store    session.ActivityStore
	logger   zerolog.Logger

	// extra jobs run on the same schedule (audit retention, image cleanup)
	extraJobs []func()

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewSessionSweepScheduler creates a sweep scheduler. maxAge is how long
// an activity record may sit untouched before it is dropped; it should
// comfortably exceed the session timeout.
func NewSessionSweepScheduler(schedule string, maxAge time.Duration, store session.ActivityStore, logger zerolog.Logger) *SessionSweepScheduler {
	return &SessionSweepScheduler{
		schedule: schedule,
		maxAge:   maxAge,
		store:    store,
		logger:   logger.With().Str("component", "session_sweep").Logger(),
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// AddJob registers an extra function to run on the sweep schedule.
// Must be called before Start.
func (s *SessionSweepScheduler) AddJob(job func()) {
	s.extraJobs = append(s.extraJobs, job)
}

// Start begins the scheduler.
func (s *SessionSweepScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info().Str("schedule", s.schedule).Msg("session sweep scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *SessionSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info().Msg("session sweep scheduler stopped")
}

func (s *SessionSweepScheduler) runSweep() {
	if sweeper, ok := s.store.(StaleSweeper); ok {
		removed, err := sweeper.SweepStale(context.Background(), s.maxAge)
		if err != nil {
			s.logger.Error().Err(err).Msg("activity sweep failed")
		} else if removed > 0 {
			s.logger.Info().Int("removed", removed).Msg("stale activity records swept")
		}
	}

	for _, job := range s.extraJobs {
		job()
	}
}
