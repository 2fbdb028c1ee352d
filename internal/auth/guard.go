package auth

import "github.com/jmvoss/hotelier/internal/entities"

// Capability is the set of roles permitted to access a guarded route.
type Capability int

const (
	// CapabilityAuthenticated admits any signed-in user.
	CapabilityAuthenticated Capability = iota
	// CapabilityStaff admits staff and admin.
	CapabilityStaff
	// CapabilityAdmin admits admin only.
	CapabilityAdmin
)

func (cap Capability) String() string {
	switch cap {
	case CapabilityAuthenticated:
		return "authenticated"
	case CapabilityStaff:
		return "staff"
	case CapabilityAdmin:
		return "admin"
	}
	return "unknown"
}

// Decision is the outcome of a guard check.
type Decision int

const (
	DecisionGranted Decision = iota
	DecisionDeniedUnauthenticated
	DecisionDeniedUnauthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDeniedUnauthenticated:
		return "denied_unauthenticated"
	case DecisionDeniedUnauthorized:
		return "denied_unauthorized"
	}
	return "unknown"
}

// Decide evaluates whether a caller with the given authentication state and
// role may access a route requiring the given capability. It is a pure
// function: the same inputs always yield the same decision, and nothing is
// stored between evaluations.
func Decide(isAuthenticated bool, role entities.UserRole, required Capability) Decision {
	if !isAuthenticated {
		return DecisionDeniedUnauthenticated
	}

	switch required {
	case CapabilityAuthenticated:
		return DecisionGranted
	case CapabilityStaff:
		if role.CanAccessStaffFeatures() {
			return DecisionGranted
		}
	case CapabilityAdmin:
		if role.IsAdmin() {
			return DecisionGranted
		}
	}

	return DecisionDeniedUnauthorized
}

// DenialMessage returns the human-readable message attached to a denied
// decision for the given capability and role.
func DenialMessage(d Decision, required Capability, role entities.UserRole) string {
	switch d {
	case DecisionDeniedUnauthenticated:
		return "Please sign in to continue."
	case DecisionDeniedUnauthorized:
		switch required {
		case CapabilityAdmin:
			if role.IsStaff() {
				return "This area is restricted to administrators."
			}
			return "You do not have permission to access the admin area."
		case CapabilityStaff:
			return "This area is restricted to hotel staff."
		}
		return "You do not have permission to access this page."
	}
	return ""
}
