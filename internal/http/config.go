package http

import (
	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/database"
	auditrepo "github.com/jmvoss/hotelier/internal/database/audit"
	"github.com/jmvoss/hotelier/internal/database/bookings"
	"github.com/jmvoss/hotelier/internal/database/menu"
	"github.com/jmvoss/hotelier/internal/database/rooms"
	"github.com/jmvoss/hotelier/internal/images"
	"github.com/jmvoss/hotelier/internal/session"
)

// RouterConfig holds everything NewRouter needs. A single struct keeps
// the constructor signature stable as dependencies grow.
type RouterConfig struct {
	Database *database.Database
	Version  string

	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthController *auth.Controller

	Supervisor *session.Supervisor
	Auditor    *audit.Service

	RoomsRepo    *rooms.Repository
	BookingsRepo *bookings.Repository
	MenuRepo     *menu.Repository
	AuditRepo    *auditrepo.Repository
	ImageStore   *images.Store

	CSRFSecret    []byte
	SecureCookies bool
}
