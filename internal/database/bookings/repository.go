// Package bookings provides database operations for booking management.
package bookings

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jmvoss/hotelier/internal/entities"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrRoomUnavailable   = errors.New("room is not available for the selected dates")
	ErrInvalidDates      = errors.New("check-out must be after check-in")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// blockingStatuses are the statuses that occupy a room for overlap checks.
var blockingStatuses = []entities.BookingStatus{
	entities.BookingStatusPending,
	entities.BookingStatusConfirmed,
	entities.BookingStatusCheckedIn,
}

// validTransitions encodes the booking lifecycle:
// pending -> confirmed -> checked_in -> checked_out, with cancellation
// possible until check-in.
var validTransitions = map[entities.BookingStatus][]entities.BookingStatus{
	entities.BookingStatusPending:   {entities.BookingStatusConfirmed, entities.BookingStatusCancelled},
	entities.BookingStatusConfirmed: {entities.BookingStatusCheckedIn, entities.BookingStatusCancelled},
	entities.BookingStatusCheckedIn: {entities.BookingStatusCheckedOut},
}

// Repository handles all booking database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a booking after validating dates and room availability.
// The overlap check and insert run in one transaction so two racing
// requests cannot double-book a room.
func (r *Repository) Create(booking *entities.Booking) error {
	if !booking.CheckOut.After(booking.CheckIn) {
		return ErrInvalidDates
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var room entities.Room
		if err := tx.First(&room, booking.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("room %d: %w", booking.RoomID, gorm.ErrRecordNotFound)
			}
			return err
		}
		if !room.Available {
			return ErrRoomUnavailable
		}

		overlaps, err := r.countOverlapping(tx, booking.RoomID, booking.CheckIn, booking.CheckOut, 0)
		if err != nil {
			return err
		}
		if overlaps > 0 {
			return ErrRoomUnavailable
		}

		booking.Status = entities.BookingStatusPending
		booking.TotalPrice = room.PricePerNight * float64(booking.Nights())

		return tx.Create(booking).Error
	})
}

// countOverlapping counts blocking bookings for a room intersecting the
// [checkIn, checkOut) range, excluding the given booking ID.
func (r *Repository) countOverlapping(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error) {
	var count int64
	err := tx.Model(&entities.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", blockingStatuses).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Where("id != ?", excludeID).
		Count(&count).Error
	return count, err
}

// GetByID retrieves a booking with its room preloaded.
func (r *Repository) GetByID(id uint) (*entities.Booking, error) {
	var booking entities.Booking
	err := r.db.Preload("Room").First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *Repository) ListByUser(userID uint) ([]entities.Booking, error) {
	var bookings []entities.Booking
	err := r.db.Preload("Room").
		Where("user_id = ?", userID).
		Order("check_in DESC").
		Find(&bookings).Error
	return bookings, err
}

// ListAll returns all bookings, optionally filtered by status. Staff view.
func (r *Repository) ListAll(status entities.BookingStatus) ([]entities.Booking, error) {
	query := r.db.Preload("Room")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []entities.Booking
	err := query.Order("check_in DESC").Find(&bookings).Error
	return bookings, err
}

// UpdateStatus moves a booking through its lifecycle, rejecting
// transitions outside the state machine.
func (r *Repository) UpdateStatus(id uint, status entities.BookingStatus) (*entities.Booking, error) {
	booking, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(booking.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
	}

	if err := r.db.Model(booking).Update("status", status).Error; err != nil {
		return nil, err
	}
	booking.Status = status
	return booking, nil
}

// Cancel cancels a booking if it has not been checked in yet. Guests may
// only cancel their own bookings; ownerID 0 skips the ownership check.
func (r *Repository) Cancel(id uint, ownerID uint) (*entities.Booking, error) {
	booking, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && booking.UserID != ownerID {
		return nil, ErrBookingNotFound
	}
	return r.UpdateStatus(id, entities.BookingStatusCancelled)
}

func transitionAllowed(from, to entities.BookingStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
