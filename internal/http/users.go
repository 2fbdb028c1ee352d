package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/entities"
)

// UsersController handles admin user management.
type UsersController struct {
	service *auth.Service
	auditor *audit.Service
}

func NewUsersController(service *auth.Service, auditor *audit.Service) *UsersController {
	return &UsersController{service: service, auditor: auditor}
}

// List returns all users. Admin only.
func (uc *UsersController) List(c *gin.Context) {
	users, err := uc.service.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// SetRole changes a user's role. Admin only. Admins cannot demote
// themselves, which would lock everyone out of user management.
func (uc *UsersController) SetRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in struct {
		Role entities.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "role is required")
		return
	}

	if id == GetUserID(c) && in.Role != entities.UserRoleAdmin {
		respondError(c, http.StatusConflict, "cannot change your own admin role")
		return
	}

	if err := uc.service.SetUserRole(id, in.Role); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrInvalidRole):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "set user role")
		}
		return
	}

	if uc.auditor != nil {
		uc.auditor.RecordChange(GetUserID(c), entities.AuditEventAuth, "role_change", id, "user role set to "+string(in.Role))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
