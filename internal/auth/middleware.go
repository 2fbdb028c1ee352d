package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jmvoss/hotelier/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyEmail    = "auth_email"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type" // "session", "bearer", or "none"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Redirect destinations attached to denial responses. Browser clients use
// these to navigate; the "from" / message fields let the target view render
// a contextual banner.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// DecisionRecorder persists guard decisions for the audit trail.
type DecisionRecorder interface {
	RecordAccessDecision(userID uint, role, path, decision, ip string)
}

// Middleware resolves the caller's identity and provides the route guards.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	logger         zerolog.Logger
	recorder       DecisionRecorder
}

// NewMiddleware creates a new authentication middleware.
// The recorder may be nil, in which case decisions are only logged.
func NewMiddleware(service *Service, sessionManager *SessionManager, logger zerolog.Logger, recorder DecisionRecorder) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		logger:         logger,
		recorder:       recorder,
	}
}

// Handler returns a Gin middleware that resolves the request's identity into
// the context. It never denies by itself; the guards do that per route.
// An identity lookup failure is treated as "not authenticated".
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := m.tryBearerAuth(c); user != nil {
			m.setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			m.setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

// tryBearerAuth attempts to authenticate using a Bearer token.
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	user, err := m.service.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	return user
}

// trySessionAuth attempts to authenticate using the session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// setUserContext stores user information in the Gin context.
func (m *Middleware) setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyEmail, user.Email)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth guards a route group for any authenticated user.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return m.requireCapability(CapabilityAuthenticated)
}

// RequireStaff guards a route group for staff and admin.
func (m *Middleware) RequireStaff() gin.HandlerFunc {
	return m.requireCapability(CapabilityStaff)
}

// RequireAdmin guards a route group for admin only.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return m.requireCapability(CapabilityAdmin)
}

// requireCapability is the shared guard implementation. Every decision,
// granted or denied, is logged and recorded.
func (m *Middleware) requireCapability(required Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		role := GetUserRole(c)
		isAuthenticated := userID != 0

		decision := Decide(isAuthenticated, role, required)
		path := c.Request.URL.Path

		m.logger.Info().
			Str("path", path).
			Str("decision", decision.String()).
			Str("capability", required.String()).
			Uint("user_id", userID).
			Str("role", string(role)).
			Msg("route guard decision")

		if m.recorder != nil {
			m.recorder.RecordAccessDecision(userID, string(role), path, decision.String(), c.ClientIP())
		}

		switch decision {
		case DecisionGranted:
			c.Next()

		case DecisionDeniedUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": LoginPath,
				"from":     path,
				"message":  DenialMessage(decision, required, role),
			})

		case DecisionDeniedUnauthorized:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":        "insufficient permissions",
				"redirect":     DashboardPath,
				"accessDenied": true,
				"message":      DenialMessage(decision, required, role),
			})
		}
	}
}

// Helper functions to extract auth data from the Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(c *gin.Context) string {
	if e, exists := c.Get(ContextKeyEmail); exists {
		if email, ok := e.(string); ok {
			return email
		}
	}
	return ""
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// IsAuthenticated returns true if the request carries a resolved identity.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
