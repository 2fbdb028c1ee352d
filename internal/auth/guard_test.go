package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmvoss/hotelier/internal/entities"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		role          entities.UserRole
		required      Capability
		want          Decision
	}{
		{"anonymous to authenticated route", false, "", CapabilityAuthenticated, DecisionDeniedUnauthenticated},
		{"anonymous to staff route", false, "", CapabilityStaff, DecisionDeniedUnauthenticated},
		{"anonymous to admin route", false, "", CapabilityAdmin, DecisionDeniedUnauthenticated},

		{"guest to authenticated route", true, entities.UserRoleGuest, CapabilityAuthenticated, DecisionGranted},
		{"guest to staff route", true, entities.UserRoleGuest, CapabilityStaff, DecisionDeniedUnauthorized},
		{"guest to admin route", true, entities.UserRoleGuest, CapabilityAdmin, DecisionDeniedUnauthorized},

		{"staff to authenticated route", true, entities.UserRoleStaff, CapabilityAuthenticated, DecisionGranted},
		{"staff to staff route", true, entities.UserRoleStaff, CapabilityStaff, DecisionGranted},
		{"staff to admin route", true, entities.UserRoleStaff, CapabilityAdmin, DecisionDeniedUnauthorized},

		{"admin to authenticated route", true, entities.UserRoleAdmin, CapabilityAuthenticated, DecisionGranted},
		{"admin to staff route", true, entities.UserRoleAdmin, CapabilityStaff, DecisionGranted},
		{"admin to admin route", true, entities.UserRoleAdmin, CapabilityAdmin, DecisionGranted},

		// An authenticated caller with an unknown role never passes a
		// role-restricted gate.
		{"unknown role to staff route", true, "manager", CapabilityStaff, DecisionDeniedUnauthorized},
		{"unknown role to admin route", true, "manager", CapabilityAdmin, DecisionDeniedUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.authenticated, tt.role, tt.required))
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	// Same inputs, same decision, no state carried between calls.
	for i := 0; i < 3; i++ {
		assert.Equal(t, DecisionDeniedUnauthorized,
			Decide(true, entities.UserRoleGuest, CapabilityAdmin))
	}
}

func TestDenialMessage(t *testing.T) {
	assert.Equal(t, "Please sign in to continue.",
		DenialMessage(DecisionDeniedUnauthenticated, CapabilityAuthenticated, ""))

	assert.Equal(t, "This area is restricted to administrators.",
		DenialMessage(DecisionDeniedUnauthorized, CapabilityAdmin, entities.UserRoleStaff))

	assert.Equal(t, "You do not have permission to access the admin area.",
		DenialMessage(DecisionDeniedUnauthorized, CapabilityAdmin, entities.UserRoleGuest))

	assert.Equal(t, "This area is restricted to hotel staff.",
		DenialMessage(DecisionDeniedUnauthorized, CapabilityStaff, entities.UserRoleGuest))

	assert.Empty(t, DenialMessage(DecisionGranted, CapabilityAuthenticated, entities.UserRoleGuest))
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "authenticated", CapabilityAuthenticated.String())
	assert.Equal(t, "staff", CapabilityStaff.String())
	assert.Equal(t, "admin", CapabilityAdmin.String())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "granted", DecisionGranted.String())
	assert.Equal(t, "denied_unauthenticated", DecisionDeniedUnauthenticated.String())
	assert.Equal(t, "denied_unauthorized", DecisionDeniedUnauthorized.String())
}
