package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/database/bookings"
	"github.com/jmvoss/hotelier/internal/entities"
)

// BookingsController handles guest bookings and the staff booking desk.
type BookingsController struct {
	repo    *bookings.Repository
	auditor *audit.Service
}

func NewBookingsController(repo *bookings.Repository, auditor *audit.Service) *BookingsController {
	return &BookingsController{repo: repo, auditor: auditor}
}

type bookingInput struct {
	RoomID   uint      `json:"roomId" binding:"required"`
	CheckIn  time.Time `json:"checkIn" binding:"required"`
	CheckOut time.Time `json:"checkOut" binding:"required"`
	Guests   int       `json:"guests" binding:"required,min=1"`
	Notes    string    `json:"notes"`
}

// Create books a room for the authenticated user.
func (bc *BookingsController) Create(c *gin.Context) {
	var in bookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid booking payload")
		return
	}

	booking := entities.Booking{
		UserID:   GetUserID(c),
		RoomID:   in.RoomID,
		CheckIn:  in.CheckIn,
		CheckOut: in.CheckOut,
		Guests:   in.Guests,
		Notes:    in.Notes,
	}

	if err := bc.repo.Create(&booking); err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidDates):
			respondBadRequest(c, err.Error())
		case errors.Is(err, bookings.ErrRoomUnavailable):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "create booking")
		}
		return
	}

	if bc.auditor != nil {
		bc.auditor.RecordChange(booking.UserID, entities.AuditEventBooking, "booking_create", booking.ID, "booking created")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": booking})
}

// ListMine returns the caller's bookings.
func (bc *BookingsController) ListMine(c *gin.Context) {
	list, err := bc.repo.ListByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list bookings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": list})
}

// Get returns one booking. Guests see only their own; staff see all.
func (bc *BookingsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := bc.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			respondNotFound(c, "booking")
			return
		}
		respondInternalError(c, err, "get booking")
		return
	}

	role := auth.GetUserRole(c)
	if booking.UserID != GetUserID(c) && role != entities.UserRoleStaff && role != entities.UserRoleAdmin {
		respondNotFound(c, "booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// Cancel cancels the caller's booking before check-in.
func (bc *BookingsController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID := GetUserID(c)
	role := auth.GetUserRole(c)
	if role == entities.UserRoleStaff || role == entities.UserRoleAdmin {
		ownerID = 0 // staff can cancel any booking
	}

	booking, err := bc.repo.Cancel(id, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			respondNotFound(c, "booking")
		case errors.Is(err, bookings.ErrInvalidTransition):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "cancel booking")
		}
		return
	}

	if bc.auditor != nil {
		bc.auditor.RecordChange(GetUserID(c), entities.AuditEventBooking, "booking_cancel", id, "booking cancelled")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// ListAll returns every booking, optionally filtered by status. Staff desk.
func (bc *BookingsController) ListAll(c *gin.Context) {
	status := entities.BookingStatus(c.Query("status"))

	list, err := bc.repo.ListAll(status)
	if err != nil {
		respondInternalError(c, err, "list all bookings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": list})
}

// UpdateStatus drives the booking lifecycle from the staff desk.
func (bc *BookingsController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in struct {
		Status entities.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	booking, err := bc.repo.UpdateStatus(id, in.Status)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			respondNotFound(c, "booking")
		case errors.Is(err, bookings.ErrInvalidTransition):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondInternalError(c, err, "update booking status")
		}
		return
	}

	if bc.auditor != nil {
		bc.auditor.RecordChange(GetUserID(c), entities.AuditEventBooking, "booking_status", id, "booking moved to "+string(in.Status))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}
