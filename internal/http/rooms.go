package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/database/rooms"
	"github.com/jmvoss/hotelier/internal/entities"
)

// RoomsController handles room listing and management endpoints.
type RoomsController struct {
	repo    *rooms.Repository
	auditor *audit.Service
}

func NewRoomsController(repo *rooms.Repository, auditor *audit.Service) *RoomsController {
	return &RoomsController{repo: repo, auditor: auditor}
}

type roomInput struct {
	Number        string            `json:"number" binding:"required"`
	Type          entities.RoomType `json:"type" binding:"required"`
	Name          string            `json:"name" binding:"required"`
	Description   string            `json:"description"`
	Floor         int               `json:"floor"`
	Capacity      int               `json:"capacity" binding:"required,min=1"`
	PricePerNight float64           `json:"pricePerNight" binding:"required,gt=0"`
	Amenities     string            `json:"amenities"`
	Available     *bool             `json:"available"`
}

// List returns rooms matching the query filters. Public.
func (rc *RoomsController) List(c *gin.Context) {
	var query struct {
		Type        string  `form:"type"`
		MinCapacity int     `form:"minCapacity"`
		MinPrice    float64 `form:"minPrice"`
		MaxPrice    float64 `form:"maxPrice"`
		Available   bool    `form:"available"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "invalid room filters")
		return
	}

	list, err := rc.repo.List(rooms.Filter{
		Type:          entities.RoomType(query.Type),
		MinCapacity:   query.MinCapacity,
		MinPrice:      query.MinPrice,
		MaxPrice:      query.MaxPrice,
		OnlyAvailable: query.Available,
	})
	if err != nil {
		respondInternalError(c, err, "list rooms")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "rooms": list})
}

// Get returns a single room. Public.
func (rc *RoomsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	room, err := rc.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			respondNotFound(c, "room")
			return
		}
		respondInternalError(c, err, "get room")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "room": room})
}

// Create adds a new room. Admin only.
func (rc *RoomsController) Create(c *gin.Context) {
	var in roomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid room payload")
		return
	}
	if !in.Type.Valid() {
		respondBadRequest(c, "invalid room type")
		return
	}

	room := entities.Room{
		Number:        in.Number,
		Type:          in.Type,
		Name:          in.Name,
		Description:   in.Description,
		Floor:         in.Floor,
		Capacity:      in.Capacity,
		PricePerNight: in.PricePerNight,
		Amenities:     in.Amenities,
		Available:     true,
	}
	if in.Available != nil {
		room.Available = *in.Available
	}

	if err := rc.repo.Create(&room); err != nil {
		respondInternalError(c, err, "create room")
		return
	}

	if rc.auditor != nil {
		rc.auditor.RecordChange(GetUserID(c), entities.AuditEventRoom, "room_create", room.ID, "room "+room.Number+" created")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "room": room})
}

// Update replaces a room's fields. Admin only.
func (rc *RoomsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in roomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid room payload")
		return
	}
	if !in.Type.Valid() {
		respondBadRequest(c, "invalid room type")
		return
	}

	room := entities.Room{
		Number:        in.Number,
		Type:          in.Type,
		Name:          in.Name,
		Description:   in.Description,
		Floor:         in.Floor,
		Capacity:      in.Capacity,
		PricePerNight: in.PricePerNight,
		Amenities:     in.Amenities,
	}
	room.ID = id
	room.Available = in.Available == nil || *in.Available

	if err := rc.repo.Update(&room); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			respondNotFound(c, "room")
			return
		}
		respondInternalError(c, err, "update room")
		return
	}

	if rc.auditor != nil {
		rc.auditor.RecordChange(GetUserID(c), entities.AuditEventRoom, "room_update", id, "room "+room.Number+" updated")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "room": room})
}

// SetAvailability toggles whether a room can be booked. Staff or admin.
func (rc *RoomsController) SetAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "available is required")
		return
	}

	if err := rc.repo.SetAvailability(id, *in.Available); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			respondNotFound(c, "room")
			return
		}
		respondInternalError(c, err, "set room availability")
		return
	}

	if rc.auditor != nil {
		action := "room_disable"
		if *in.Available {
			action = "room_enable"
		}
		rc.auditor.RecordChange(GetUserID(c), entities.AuditEventRoom, action, id, "room availability changed")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes a room. Admin only.
func (rc *RoomsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := rc.repo.Delete(id); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			respondNotFound(c, "room")
			return
		}
		respondInternalError(c, err, "delete room")
		return
	}

	if rc.auditor != nil {
		rc.auditor.RecordChange(GetUserID(c), entities.AuditEventRoom, "room_delete", id, "room deleted")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
