package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditrepo "github.com/jmvoss/hotelier/internal/database/audit"
	"github.com/jmvoss/hotelier/internal/entities"
)

// AuditController exposes the audit trail to administrators.
type AuditController struct {
	repo *auditrepo.Repository
}

func NewAuditController(repo *auditrepo.Repository) *AuditController {
	return &AuditController{repo: repo}
}

// List returns recent audit events. Admin only.
func (ac *AuditController) List(c *gin.Context) {
	var query struct {
		UserID    uint   `form:"userId"`
		EventType string `form:"eventType"`
		Status    string `form:"status"`
		Hours     int    `form:"hours"`
		Limit     int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "invalid audit filters")
		return
	}

	filter := auditrepo.Filter{
		UserID:    query.UserID,
		EventType: entities.AuditEventType(query.EventType),
		Status:    entities.AuditStatus(query.Status),
		Limit:     query.Limit,
	}
	if query.Hours > 0 {
		filter.Since = time.Now().Add(-time.Duration(query.Hours) * time.Hour)
	}

	events, err := ac.repo.List(filter)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}
