package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/entities"
	"github.com/jmvoss/hotelier/internal/session"
)

// SessionWatcher is the slice of the session supervisor the auth endpoints
// need: start watching on login, release on logout.
type SessionWatcher interface {
	Watch(key string, userID uint)
	Release(key string)
}

// AuthRecorder persists authentication events for the audit trail.
type AuthRecorder interface {
	RecordAuth(userID uint, action, ip string, err error)
}

// Controller handles the authentication JSON endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	watcher        SessionWatcher
	recorder       AuthRecorder
	rateLimiter    *RateLimiter
}

// NewController creates the authentication controller. watcher and recorder
// may be nil (tests).
func NewController(service *Service, sessionManager *SessionManager, watcher SessionWatcher, recorder AuthRecorder, rateLimiter *RateLimiter) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		watcher:        watcher,
		recorder:       recorder,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes registers the public authentication routes.
func (ac *Controller) RegisterRoutes(router gin.IRouter) {
	router.GET("/auth/me", ac.Me)
	router.POST("/auth/login", ac.Login)
	router.POST("/auth/register", ac.Register)
	router.POST("/auth/logout", ac.Logout)
	router.POST("/auth/token", ac.Token)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *Controller) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userPayload builds the identity response. The derived capability flags
// ride along so clients can render role-gated UI without re-deriving the
// role rules; they are recomputed on every identity response.
func userPayload(user *entities.User) gin.H {
	return gin.H{
		"success": true,
		"user":    user,
		"capabilities": gin.H{
			"isAdmin":                user.Role.IsAdmin(),
			"isStaff":                user.Role.IsStaff(),
			"isGuest":                user.Role.IsGuest(),
			"canAccessStaffFeatures": user.Role.CanAccessStaffFeatures(),
		},
	}
}

// Me returns the identity behind the current session or bearer token.
// Clients treat a 401 here as "not signed in", never as an error.
func (ac *Controller) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, userPayload(user))
}

// Login authenticates credentials and establishes a session. Failures are
// returned to the caller for form-level display; no redirect happens here.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many login attempts. Please try again later.",
			})
			return
		}
	}

	user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(clientIP, req.Email)
		}
		if ac.recorder != nil {
			ac.recorder.RecordAuth(0, "login", clientIP, err)
		}

		message := "Invalid email or password"
		if errors.Is(err, ErrAccountLocked) {
			message = "Account is locked. Please try again later."
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	}

	if err := ac.establishSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}

	if ac.recorder != nil {
		ac.recorder.RecordAuth(user.ID, "login", clientIP, nil)
	}

	c.JSON(http.StatusOK, userPayload(user))
}

// Token exchanges credentials for a long-lived API token. Used by
// non-browser clients that cannot hold a session cookie.
func (ac *Controller) Token(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many login attempts. Please try again later.",
			})
			return
		}
	}

	user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(clientIP, req.Email)
		}
		if ac.recorder != nil {
			ac.recorder.RecordAuth(0, "token", clientIP, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	}

	token, err := ac.service.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	if ac.recorder != nil {
		ac.recorder.RecordAuth(user.ID, "token", clientIP, nil)
	}

	payload := userPayload(user)
	payload["token"] = token
	c.JSON(http.StatusOK, payload)
}

// Register creates a guest account with auto-login semantics.
func (ac *Controller) Register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid registration payload"})
		return
	}

	user, err := ac.service.Register(in)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := ac.establishSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}

	if ac.recorder != nil {
		ac.recorder.RecordAuth(user.ID, "register", c.ClientIP(), nil)
	}

	c.JSON(http.StatusCreated, userPayload(user))
}

// Logout is best-effort: the session is cleared unconditionally and the
// response is always a success.
func (ac *Controller) Logout(c *gin.Context) {
	userID := GetUserID(c)

	if ac.watcher != nil && userID != 0 {
		ac.watcher.Release(session.Key(userID))
	}
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}

	if ac.recorder != nil && userID != 0 {
		ac.recorder.RecordAuth(userID, "logout", c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateProfile replaces the caller's profile fields. Registered behind the
// authenticated guard.
func (ac *Controller) UpdateProfile(c *gin.Context) {
	userID := GetUserID(c)

	var in ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid profile payload"})
		return
	}

	user, err := ac.service.UpdateProfile(userID, in)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, userPayload(user))
}

// establishSession creates the scs session and starts the inactivity
// monitor for it.
func (ac *Controller) establishSession(c *gin.Context, user *entities.User) error {
	if ac.sessionManager == nil {
		return nil
	}
	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		return err
	}
	if ac.watcher != nil {
		ac.watcher.Watch(session.Key(user.ID), user.ID)
	}
	return nil
}
