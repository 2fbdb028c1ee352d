package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Identity resolution runs on every request; the per-group guards
	// below decide access.
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	roomsController := NewRoomsController(cfg.RoomsRepo, cfg.Auditor)
	bookingsController := NewBookingsController(cfg.BookingsRepo, cfg.Auditor)
	menuController := NewMenuController(cfg.MenuRepo, cfg.Auditor)
	sessionController := NewSessionController(cfg.Supervisor)
	usersController := NewUsersController(cfg.AuthService, cfg.Auditor)

	var uploadsController *UploadsController
	if cfg.ImageStore != nil {
		uploadsController = NewUploadsController(cfg.ImageStore, cfg.RoomsRepo, cfg.MenuRepo, cfg.Auditor)
	}

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Public authentication routes
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	// Public browsing: rooms, menu and stored images
	router.GET("/rooms", roomsController.List)
	router.GET("/rooms/:id", roomsController.Get)
	router.GET("/menu", menuController.List)
	router.GET("/menu/:id", menuController.Get)
	if uploadsController != nil {
		router.GET("/images/:filename", uploadsController.Serve)
	}

	// Routes for any signed-in user
	authenticated := router.Group("/", cfg.AuthMiddleware.RequireAuth())
	if cfg.AuthController != nil {
		authenticated.PUT("/users/profile", cfg.AuthController.UpdateProfile)
	}
	sessionController.RegisterRoutes(authenticated)
	authenticated.POST("/bookings", bookingsController.Create)
	authenticated.GET("/bookings", bookingsController.ListMine)
	authenticated.GET("/bookings/:id", bookingsController.Get)
	authenticated.POST("/bookings/:id/cancel", bookingsController.Cancel)

	// Staff desk: booking lifecycle, menu management, uploads
	staff := router.Group("/", cfg.AuthMiddleware.RequireStaff())
	staff.GET("/admin/bookings", bookingsController.ListAll)
	staff.PATCH("/admin/bookings/:id/status", bookingsController.UpdateStatus)
	staff.PATCH("/rooms/:id/availability", roomsController.SetAvailability)
	staff.POST("/menu", menuController.Create)
	staff.PUT("/menu/:id", menuController.Update)
	staff.DELETE("/menu/:id", menuController.Delete)
	if uploadsController != nil {
		staff.POST("/rooms/:id/image", uploadsController.UploadRoomImage)
		staff.POST("/menu/:id/image", uploadsController.UploadMenuImage)
	}

	// Admin only: room inventory, user management, audit trail
	admin := router.Group("/", cfg.AuthMiddleware.RequireAdmin())
	admin.POST("/rooms", roomsController.Create)
	admin.PUT("/rooms/:id", roomsController.Update)
	admin.DELETE("/rooms/:id", roomsController.Delete)
	admin.GET("/admin/users", usersController.List)
	admin.PATCH("/admin/users/:id/role", usersController.SetRole)
	if cfg.AuditRepo != nil {
		auditController := NewAuditController(cfg.AuditRepo)
		admin.GET("/admin/audit", auditController.List)
	}

	return router
}
