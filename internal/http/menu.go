package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/database/menu"
	"github.com/jmvoss/hotelier/internal/entities"
)

// MenuController handles restaurant menu endpoints.
type MenuController struct {
	repo    *menu.Repository
	auditor *audit.Service
}

func NewMenuController(repo *menu.Repository, auditor *audit.Service) *MenuController {
	return &MenuController{repo: repo, auditor: auditor}
}

type menuItemInput struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Category    entities.MenuCategory `json:"category" binding:"required"`
	Price       float64               `json:"price" binding:"required,gt=0"`
	Available   *bool                 `json:"available"`
}

// List returns menu items. Guests only see available items; staff see all.
func (mc *MenuController) List(c *gin.Context) {
	category := entities.MenuCategory(c.Query("category"))
	if category != "" && !category.Valid() {
		respondBadRequest(c, "invalid menu category")
		return
	}

	role := auth.GetUserRole(c)
	onlyAvailable := role != entities.UserRoleStaff && role != entities.UserRoleAdmin

	items, err := mc.repo.List(category, onlyAvailable)
	if err != nil {
		respondInternalError(c, err, "list menu")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// Get returns a single menu item.
func (mc *MenuController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := mc.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			respondNotFound(c, "menu item")
			return
		}
		respondInternalError(c, err, "get menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// Create adds a menu item. Staff or admin.
func (mc *MenuController) Create(c *gin.Context) {
	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid menu item payload")
		return
	}
	if !in.Category.Valid() {
		respondBadRequest(c, "invalid menu category")
		return
	}

	item := entities.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Available:   true,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}

	if err := mc.repo.Create(&item); err != nil {
		respondInternalError(c, err, "create menu item")
		return
	}

	if mc.auditor != nil {
		mc.auditor.RecordChange(GetUserID(c), entities.AuditEventMenu, "menu_create", item.ID, "menu item "+item.Name+" created")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "item": item})
}

// Update replaces a menu item's fields. Staff or admin.
func (mc *MenuController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid menu item payload")
		return
	}
	if !in.Category.Valid() {
		respondBadRequest(c, "invalid menu category")
		return
	}

	item := entities.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
	}
	item.ID = id
	item.Available = in.Available == nil || *in.Available

	if err := mc.repo.Update(&item); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			respondNotFound(c, "menu item")
			return
		}
		respondInternalError(c, err, "update menu item")
		return
	}

	if mc.auditor != nil {
		mc.auditor.RecordChange(GetUserID(c), entities.AuditEventMenu, "menu_update", id, "menu item "+item.Name+" updated")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// Delete removes a menu item. Staff or admin.
func (mc *MenuController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := mc.repo.Delete(id); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			respondNotFound(c, "menu item")
			return
		}
		respondInternalError(c, err, "delete menu item")
		return
	}

	if mc.auditor != nil {
		mc.auditor.RecordChange(GetUserID(c), entities.AuditEventMenu, "menu_delete", id, "menu item deleted")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
