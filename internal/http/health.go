package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/database"
)

// HealthResponse is the liveness report served to load balancers and
// uptime monitors.
type HealthResponse struct {
	Status    string            `json:"status"`
	CheckedAt string            `json:"checked_at"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	version string
	started time.Time
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
		started: time.Now(),
	}
}

// Status pings the booking database and reports healthy only when every
// check passes. Unhealthy responses use 503 so probes fail the instance.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:    status,
		CheckedAt: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	})
}
