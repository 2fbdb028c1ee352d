package bookings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jmvoss/hotelier/internal/database"
	"github.com/jmvoss/hotelier/internal/entities"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB), db.DB
}

func seedRoom(t *testing.T, db *gorm.DB, number string, price float64) *entities.Room {
	t.Helper()
	room := &entities.Room{
		Number:        number,
		Type:          entities.RoomTypeStandard,
		Name:          "Room " + number,
		Capacity:      2,
		PricePerNight: price,
		Available:     true,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func date(day int) time.Time {
	return time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC)
}

func TestCreateBooking(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	booking := &entities.Booking{
		UserID:   1,
		RoomID:   room.ID,
		CheckIn:  date(10),
		CheckOut: date(13),
		Guests:   2,
		// Client-supplied status is ignored; every booking starts pending.
		Status: entities.BookingStatusConfirmed,
	}
	require.NoError(t, repo.Create(booking))

	assert.NotZero(t, booking.ID)
	assert.Equal(t, entities.BookingStatusPending, booking.Status)
	assert.Equal(t, 360.0, booking.TotalPrice, "three nights at the room rate")
}

func TestCreateBookingInvalidDates(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"check-out before check-in", date(13), date(10)},
		{"same-day stay", date(10), date(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(&entities.Booking{
				UserID: 1, RoomID: room.ID,
				CheckIn: tt.checkIn, CheckOut: tt.checkOut, Guests: 1,
			})
			assert.ErrorIs(t, err, ErrInvalidDates)
		})
	}
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Create(&entities.Booking{
		UserID: 1, RoomID: 999,
		CheckIn: date(10), CheckOut: date(12), Guests: 1,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateBookingUnavailableRoom(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)
	require.NoError(t, db.Model(room).Update("available", false).Error)

	err := repo.Create(&entities.Booking{
		UserID: 1, RoomID: room.ID,
		CheckIn: date(10), CheckOut: date(12), Guests: 1,
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateBookingOverlapConflict(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	require.NoError(t, repo.Create(&entities.Booking{
		UserID: 1, RoomID: room.ID,
		CheckIn: date(10), CheckOut: date(15), Guests: 2,
	}))

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		wantErr  error
	}{
		{"fully inside", date(11), date(13), ErrRoomUnavailable},
		{"overlaps start", date(8), date(11), ErrRoomUnavailable},
		{"overlaps end", date(14), date(17), ErrRoomUnavailable},
		{"envelops", date(8), date(17), ErrRoomUnavailable},
		// Check-out day is exclusive: back-to-back stays are allowed.
		{"starts on check-out day", date(15), date(18), nil},
		{"ends on check-in day", date(8), date(10), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(&entities.Booking{
				UserID: 2, RoomID: room.ID,
				CheckIn: tt.checkIn, CheckOut: tt.checkOut, Guests: 1,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelledBookingDoesNotBlock(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	first := &entities.Booking{
		UserID: 1, RoomID: room.ID,
		CheckIn: date(10), CheckOut: date(15), Guests: 2,
	}
	require.NoError(t, repo.Create(first))
	_, err := repo.Cancel(first.ID, 1)
	require.NoError(t, err)

	err = repo.Create(&entities.Booking{
		UserID: 2, RoomID: room.ID,
		CheckIn: date(11), CheckOut: date(13), Guests: 1,
	})
	assert.NoError(t, err, "cancelled bookings free the room")
}

func TestGetByIDPreloadsRoom(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	booking := &entities.Booking{
		UserID: 1, RoomID: room.ID,
		CheckIn: date(10), CheckOut: date(12), Guests: 2,
	}
	require.NoError(t, repo.Create(booking))

	got, err := repo.GetByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "101", got.Room.Number)

	_, err = repo.GetByID(999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByUser(t *testing.T) {
	repo, db := newTestRepo(t)
	roomA := seedRoom(t, db, "101", 120)
	roomB := seedRoom(t, db, "102", 150)

	require.NoError(t, repo.Create(&entities.Booking{
		UserID: 1, RoomID: roomA.ID, CheckIn: date(10), CheckOut: date(12), Guests: 1,
	}))
	require.NoError(t, repo.Create(&entities.Booking{
		UserID: 1, RoomID: roomB.ID, CheckIn: date(20), CheckOut: date(22), Guests: 1,
	}))
	require.NoError(t, repo.Create(&entities.Booking{
		UserID: 2, RoomID: roomA.ID, CheckIn: date(14), CheckOut: date(16), Guests: 1,
	}))

	bookings, err := repo.ListByUser(1)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	// Newest stay first.
	assert.True(t, bookings[0].CheckIn.Equal(date(20)))
}

func TestListAllFiltersByStatus(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	first := &entities.Booking{UserID: 1, RoomID: room.ID, CheckIn: date(10), CheckOut: date(12), Guests: 1}
	require.NoError(t, repo.Create(first))
	second := &entities.Booking{UserID: 2, RoomID: room.ID, CheckIn: date(14), CheckOut: date(16), Guests: 1}
	require.NoError(t, repo.Create(second))

	_, err := repo.UpdateStatus(first.ID, entities.BookingStatusConfirmed)
	require.NoError(t, err)

	all, err := repo.ListAll("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := repo.ListAll(entities.BookingStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	booking := &entities.Booking{UserID: 1, RoomID: room.ID, CheckIn: date(10), CheckOut: date(12), Guests: 1}
	require.NoError(t, repo.Create(booking))

	// pending -> confirmed -> checked_in -> checked_out
	for _, status := range []entities.BookingStatus{
		entities.BookingStatusConfirmed,
		entities.BookingStatusCheckedIn,
		entities.BookingStatusCheckedOut,
	} {
		updated, err := repo.UpdateStatus(booking.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	booking := &entities.Booking{UserID: 1, RoomID: room.ID, CheckIn: date(10), CheckOut: date(12), Guests: 1}
	require.NoError(t, repo.Create(booking))

	// pending cannot jump straight to checked_in or checked_out.
	_, err := repo.UpdateStatus(booking.ID, entities.BookingStatusCheckedIn)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = repo.UpdateStatus(booking.ID, entities.BookingStatusCheckedOut)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// checked_in can no longer be cancelled.
	_, err = repo.UpdateStatus(booking.ID, entities.BookingStatusConfirmed)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(booking.ID, entities.BookingStatusCheckedIn)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(booking.ID, entities.BookingStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelOwnership(t *testing.T) {
	repo, db := newTestRepo(t)
	room := seedRoom(t, db, "101", 120)

	booking := &entities.Booking{UserID: 1, RoomID: room.ID, CheckIn: date(10), CheckOut: date(12), Guests: 1}
	require.NoError(t, repo.Create(booking))

	// A different guest cannot cancel someone else's booking; the booking
	// is not even acknowledged to exist.
	_, err := repo.Cancel(booking.ID, 2)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	// Staff (ownerID 0) may cancel any booking.
	cancelled, err := repo.Cancel(booking.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusCancelled, cancelled.Status)
}
