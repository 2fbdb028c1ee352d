package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserRoleCapabilities(t *testing.T) {
	tests := []struct {
		role      UserRole
		valid     bool
		admin     bool
		staff     bool
		guest     bool
		staffDesk bool
	}{
		{UserRoleGuest, true, false, false, true, false},
		{UserRoleStaff, true, false, true, false, true},
		{UserRoleAdmin, true, true, false, false, true},
		{UserRole("manager"), false, false, false, false, false},
		{UserRole(""), false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.admin, tt.role.IsAdmin())
			assert.Equal(t, tt.staff, tt.role.IsStaff())
			assert.Equal(t, tt.guest, tt.role.IsGuest())
			assert.Equal(t, tt.staffDesk, tt.role.CanAccessStaffFeatures())
		})
	}
}

func TestBookingNights(t *testing.T) {
	b := Booking{
		CheckIn:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, b.Nights())
}
