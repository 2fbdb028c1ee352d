// Package audit records security-relevant events: logins, access
// decisions, session expiries and entity changes. Events are written
// asynchronously so request handlers never block on the audit trail.
package audit

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	auditrepo "github.com/jmvoss/hotelier/internal/database/audit"
	"github.com/jmvoss/hotelier/internal/entities"
)

const eventBufferSize = 256

// Service buffers audit events and persists them on a background worker.
type Service struct {
	repo   *auditrepo.Repository
	logger zerolog.Logger

	events chan entities.AuditEvent
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewService creates an audit service and starts its worker.
func NewService(repo *auditrepo.Repository, logger zerolog.Logger) *Service {
	s := &Service{
		repo:   repo,
		logger: logger.With().Str("component", "audit").Logger(),
		events: make(chan entities.AuditEvent, eventBufferSize),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Service) run() {
	defer s.wg.Done()
	for {
		select {
		case event := <-s.events:
			s.persist(event)
		case <-s.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-s.events:
					s.persist(event)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) persist(event entities.AuditEvent) {
	if err := s.repo.Create(&event); err != nil {
		s.logger.Error().Err(err).
			Str("action", event.Action).
			Msg("failed to persist audit event")
	}
}

// Stop flushes queued events and stops the worker.
func (s *Service) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// enqueue submits an event without blocking. Under sustained overload
// events are dropped and counted in the log rather than stalling requests.
func (s *Service) enqueue(event entities.AuditEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn().Str("action", event.Action).Msg("audit buffer full, event dropped")
	}
}

// RecordAuth records a login, logout or registration attempt.
func (s *Service) RecordAuth(userID uint, action, ip string, err error) {
	event := entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ip,
		Status:    entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = err.Error()
		event.Description = fmt.Sprintf("%s failed", action)
	} else {
		event.Description = fmt.Sprintf("%s succeeded", action)
	}
	s.enqueue(event)
}

// RecordAccessDecision records the outcome of a route guard check.
// Granted decisions are logged at debug level only; denials go to the
// audit trail.
func (s *Service) RecordAccessDecision(userID uint, role, path, decision, ip string) {
	if decision == "granted" {
		s.logger.Debug().
			Uint("user_id", userID).
			Str("role", role).
			Str("path", path).
			Msg("access granted")
		return
	}
	s.enqueue(entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAccess,
		Action:      "access_denied",
		Description: fmt.Sprintf("%s to %s denied for role %q", decision, path, role),
		Metadata:    fmt.Sprintf(`{"path":%q,"decision":%q}`, path, decision),
		IPAddress:   ip,
		Status:      entities.AuditStatusDenied,
	})
}

// RecordSessionExpired records an inactivity logout.
func (s *Service) RecordSessionExpired(userID uint, reason string) {
	s.enqueue(entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSession,
		Action:      "session_expired",
		Description: "session expired due to inactivity",
		ErrorMsg:    reason,
		Status:      entities.AuditStatusSuccess,
	})
}

// RecordChange records a create, update or delete of a managed entity.
func (s *Service) RecordChange(userID uint, eventType entities.AuditEventType, action string, entityID uint, description string) {
	s.enqueue(entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      action,
		Description: description,
		EntityType:  string(eventType),
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	})
}
