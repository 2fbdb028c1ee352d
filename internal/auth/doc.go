// Package auth provides authentication and authorization for the application.
//
// It covers three concerns:
//   - the identity service: registration, login, profile updates and API
//     tokens backed by the user table
//   - cookie sessions via scs with an inactivity-based idle timeout
//   - route guards: gin middleware gating handlers on the caller's role
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_TOKEN_EXPIRY=720h              # API token expiry (30 days default)
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	SESSION_TIMEOUT_MINUTES=30          # Inactivity timeout, shared with the monitor
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(db.DB, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	router.Use(authMiddleware.Handler())
//	admin.Use(authMiddleware.RequireAdmin())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
//	role := auth.GetUserRole(c)
package auth
