// Package audit provides database operations for the audit trail.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/jmvoss/hotelier/internal/entities"
)

// Filter narrows an audit event listing. Zero values mean "no constraint".
type Filter struct {
	UserID    uint
	EventType entities.AuditEventType
	Status    entities.AuditStatus
	Since     time.Time
	Limit     int
}

// Repository handles all audit database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists an audit event.
func (r *Repository) Create(event *entities.AuditEvent) error {
	return r.db.Create(event).Error
}

// List returns audit events matching the filter, newest first.
func (r *Repository) List(filter Filter) ([]entities.AuditEvent, error) {
	query := r.db.Model(&entities.AuditEvent{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var events []entities.AuditEvent
	err := query.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// DeleteOlderThan removes audit events created before the cutoff and
// returns how many rows were deleted. Used by the retention task.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

// CountSince returns the number of events recorded since the given time.
func (r *Repository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.AuditEvent{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
