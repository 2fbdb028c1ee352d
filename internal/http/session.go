package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/session"
)

// SessionController exposes the inactivity monitor to clients: activity
// reports, the status poll and the "stay signed in" extension.
type SessionController struct {
	supervisor *session.Supervisor
}

func NewSessionController(supervisor *session.Supervisor) *SessionController {
	return &SessionController{supervisor: supervisor}
}

// RegisterRoutes registers the session endpoints on an authenticated group.
func (sc *SessionController) RegisterRoutes(group gin.IRouter) {
	group.POST("/session/activity", sc.Activity)
	group.POST("/session/extend", sc.Extend)
	group.GET("/session/status", sc.Status)
}

// Activity records a user-activity report. Reports inside the debounce
// window are coalesced by the monitor, so clients can call this freely.
func (sc *SessionController) Activity(c *gin.Context) {
	key := sc.ensureMonitor(c)
	if key == "" {
		return
	}
	sc.supervisor.Activity(key)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Extend resets the inactivity countdown and clears any warning.
func (sc *SessionController) Extend(c *gin.Context) {
	key := sc.ensureMonitor(c)
	if key == "" {
		return
	}
	sc.supervisor.Extend(key)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status returns the monitor state for the caller's session. Clients poll
// this to drive the warning dialog; an expired session comes back as a
// 401 carrying the expiry message for the login view.
func (sc *SessionController) Status(c *gin.Context) {
	userID := GetUserID(c)
	key := session.Key(userID)

	status, ok := sc.supervisor.Status(key)
	if !ok {
		// Unknown to the supervisor and not expired: a restart, typically.
		// The credentials are still valid, so resume watching.
		sc.supervisor.Watch(key, userID)
		status, _ = sc.supervisor.Status(key)
	}

	if status.State == session.StateExpired {
		respondSessionExpired(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":            status.State.String(),
		"remainingSeconds": status.RemainingSeconds,
		"sessionExpired":   false,
	})
}

// ensureMonitor resolves the caller's session key, restarting the monitor
// when it is missing. Returns "" after responding when no user is bound or
// the session already expired: activity after expiry must not resurrect it.
func (sc *SessionController) ensureMonitor(c *gin.Context) string {
	userID := GetUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return ""
	}

	key := session.Key(userID)
	status, ok := sc.supervisor.Status(key)
	if ok && status.State == session.StateExpired {
		respondSessionExpired(c)
		return ""
	}
	if !ok {
		sc.supervisor.Watch(key, userID)
	}
	return key
}

// respondSessionExpired sends the expiry notice the login view renders.
func respondSessionExpired(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":          "session expired",
		"redirect":       auth.LoginPath,
		"sessionExpired": true,
		"message":        session.ExpiredMessage,
	})
}
