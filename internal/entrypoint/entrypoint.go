// Package entrypoint wires the application together and runs the server.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/config"
	"github.com/jmvoss/hotelier/internal/database"
	auditrepo "github.com/jmvoss/hotelier/internal/database/audit"
	"github.com/jmvoss/hotelier/internal/database/bookings"
	"github.com/jmvoss/hotelier/internal/database/menu"
	"github.com/jmvoss/hotelier/internal/database/rooms"
	http_controllers "github.com/jmvoss/hotelier/internal/http"
	"github.com/jmvoss/hotelier/internal/images"
	"github.com/jmvoss/hotelier/internal/scheduler"
	"github.com/jmvoss/hotelier/internal/session"
	"github.com/jmvoss/hotelier/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the full application from configuration and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Hotelier v%s", version)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	roomsRepo := rooms.NewRepository(db.DB)
	bookingsRepo := bookings.NewRepository(db.DB)
	menuRepo := menu.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)

	// Audit trail with its async writer
	auditor := audit.NewService(auditRepo, logger)
	defer auditor.Stop()

	// Activity store: in-process by default, Redis when several nodes
	// share sessions.
	activityStore, redisClient := newActivityStore(cfg.Session, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Session inactivity supervisor
	supervisor := session.NewSupervisor(
		session.ConfigFrom(cfg.Session),
		activityStore,
		session.NewRealClock(),
		logger,
		nil,
	)
	defer supervisor.StopAll()

	// Authentication
	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// Expiry wiring: when a monitor expires, destroy the user's sessions
	// everywhere, revoke their API token and record the logout. Clients
	// then see 401s and land on the login view with the expiry message.
	supervisor.SetExpiryHandler(func(key string, userID uint) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sessionManager.DestroySessionsForUser(ctx, userID); err != nil {
			logger.Error().Err(err).Uint("user_id", userID).Msg("failed to destroy expired sessions")
		}
		if err := authService.RevokeToken(userID); err != nil {
			logger.Error().Err(err).Uint("user_id", userID).Msg("failed to revoke token for expired session")
		}
		auditor.RecordSessionExpired(userID, "inactivity timeout")
	})

	authMiddleware := auth.NewMiddleware(authService, sessionManager, logger, auditor)

	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})
	authController := auth.NewController(authService, sessionManager, supervisor, auditor, rateLimiter)
	defer authController.Stop()

	// CSRF secret: configured or generated per process
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	// Image store
	imageStore, err := images.NewStore(cfg.Images.Dir, cfg.Images.MaxSizeBytes, db.DB)
	if err != nil {
		log.Printf("WARNING: Failed to initialize image store: %v", err)
		imageStore = nil
	}

	// Background task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditRepo))
		if imageStore != nil {
			taskClient.Register(tasks.NewCleanupImagesQueue(imageStore))
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic sweep: stale activity records plus the cleanup tasks
	sweep := scheduler.NewSessionSweepScheduler(
		cfg.Session.SweepSchedule,
		cfg.Session.SessionTimeout()+time.Hour,
		activityStore,
		logger,
	)
	if taskClient != nil {
		retentionDays := cfg.Audit.RetentionDays
		sweep.AddJob(func() {
			if _, err := taskClient.Add(tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}).Save(); err != nil {
				logger.Error().Err(err).Msg("failed to enqueue audit cleanup")
			}
		})
		if imageStore != nil {
			sweep.AddJob(func() {
				if _, err := taskClient.Add(tasks.CleanupImagesTask{}).Save(); err != nil {
					logger.Error().Err(err).Msg("failed to enqueue image cleanup")
				}
			})
		}
	}
	if err := sweep.Start(); err != nil {
		log.Fatalf("Failed to start sweep scheduler: %v", err)
	}
	defer sweep.Stop()

	if hasUsers, _ := authService.HasUsers(); !hasUsers {
		log.Printf("No users found. Run '%s create-admin' to create an administrator account.", os.Args[0])
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Version:        version,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		AuthController: authController,
		Supervisor:     supervisor,
		Auditor:        auditor,
		RoomsRepo:      roomsRepo,
		BookingsRepo:   bookingsRepo,
		MenuRepo:       menuRepo,
		AuditRepo:      auditRepo,
		ImageStore:     imageStore,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// newActivityStore builds the configured activity store. Falls back to
// the in-process store when Redis is unreachable at startup.
func newActivityStore(cfg config.Session, logger zerolog.Logger) (session.ActivityStore, *redis.Client) {
	if cfg.Backend != config.ActivityBackendRedis {
		return session.NewMemoryActivityStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Str("addr", cfg.RedisAddr).
			Msg("redis unreachable, falling back to in-process activity store")
		_ = client.Close()
		return session.NewMemoryActivityStore(), nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis activity store")
	return session.NewRedisActivityStore(client), client
}
