package config

import (
	"time"

	"github.com/spf13/viper"
)

type ActivityBackend string

const (
	ActivityBackendMemory ActivityBackend = "memory" // In-process store (single node)
	ActivityBackendRedis  ActivityBackend = "redis"  // Shared Redis store (multi node)
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Session
		Images
		Audit
		Tasks
		Client
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		SessionSecret string
		BcryptCost    int
		TokenExpiry   time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	// Session controls the inactivity-timeout monitor.
	Session struct {
		TimeoutMinutes   int             // Inactivity timeout (default: 30)
		WarningMinutes   int             // Warning lead time before expiry (default: 5)
		ActivityDebounce time.Duration   // Coalescing window for activity reports (default: 1s)
		PollInterval     time.Duration   // Elapsed-time check interval (default: 10s)
		SweepSchedule    string          // Cron format: "*/10 * * * *" = every 10 minutes
		Backend          ActivityBackend // "memory" or "redis"
		RedisAddr        string
		RedisPassword    string
		RedisDB          int
	}

	Images struct {
		Dir          string
		MaxSizeBytes int64
	}

	Audit struct {
		RetentionDays int // Days to keep audit events (default: 90)
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	// Client configures the API gateway client used by CLI commands and tests.
	Client struct {
		BaseURL   string
		TokenPath string
	}
)

// getSessionTimeoutMinutes checks both the native env var and the legacy
// front-end name so existing deployments keep working.
func getSessionTimeoutMinutes(v *viper.Viper) int {
	if m := v.GetInt("SESSION_TIMEOUT_MINUTES"); m > 0 {
		return m
	}
	if m := v.GetInt("VITE_SESSION_TIMEOUT_MINUTES"); m > 0 {
		return m
	}
	return 30
}

// getAPIBaseURL prefers API_BASE_URL but falls back to the legacy API_URL.
func getAPIBaseURL(v *viper.Viper) string {
	if u := v.GetString("API_BASE_URL"); u != "" {
		return u
	}
	return v.GetString("API_URL")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8480)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_token_expiry", "720h") // 30 days
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Session monitor defaults
	v.SetDefault("session_timeout_minutes", 0) // Resolved via getSessionTimeoutMinutes
	v.SetDefault("session_warning_minutes", 5)
	v.SetDefault("session_activity_debounce", "1s")
	v.SetDefault("session_poll_interval", "10s")
	v.SetDefault("session_sweep_schedule", "*/10 * * * *")
	v.SetDefault("session_activity_backend", "memory")
	v.SetDefault("session_redis_addr", "localhost:6379")
	v.SetDefault("session_redis_password", "")
	v.SetDefault("session_redis_db", 0)

	// Image store defaults
	v.SetDefault("images_dir", "./images")
	v.SetDefault("images_max_size_bytes", 5*1024*1024)

	// Audit defaults
	v.SetDefault("audit_retention_days", 90)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Client defaults
	v.SetDefault("api_base_url", "")
	v.SetDefault("client_token_path", DefaultTokenPath)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Session: Session{
			TimeoutMinutes:   getSessionTimeoutMinutes(v),
			WarningMinutes:   v.GetInt("SESSION_WARNING_MINUTES"),
			ActivityDebounce: v.GetDuration("SESSION_ACTIVITY_DEBOUNCE"),
			PollInterval:     v.GetDuration("SESSION_POLL_INTERVAL"),
			SweepSchedule:    v.GetString("SESSION_SWEEP_SCHEDULE"),
			Backend:          ActivityBackend(v.GetString("SESSION_ACTIVITY_BACKEND")),
			RedisAddr:        v.GetString("SESSION_REDIS_ADDR"),
			RedisPassword:    v.GetString("SESSION_REDIS_PASSWORD"),
			RedisDB:          v.GetInt("SESSION_REDIS_DB"),
		},
		Images: Images{
			Dir:          v.GetString("IMAGES_DIR"),
			MaxSizeBytes: v.GetInt64("IMAGES_MAX_SIZE_BYTES"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Client: Client{
			BaseURL:   getAPIBaseURL(v),
			TokenPath: v.GetString("CLIENT_TOKEN_PATH"),
		},
	}
}

// SessionTimeout returns the configured inactivity timeout as a duration.
func (s Session) SessionTimeout() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// WarningWindow returns the warning lead time as a duration.
func (s Session) WarningWindow() time.Duration {
	return time.Duration(s.WarningMinutes) * time.Minute
}
