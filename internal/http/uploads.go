package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmvoss/hotelier/internal/audit"
	"github.com/jmvoss/hotelier/internal/database/menu"
	"github.com/jmvoss/hotelier/internal/database/rooms"
	"github.com/jmvoss/hotelier/internal/entities"
	"github.com/jmvoss/hotelier/internal/images"
)

// UploadsController handles image uploads and serving.
type UploadsController struct {
	store    *images.Store
	rooms    *rooms.Repository
	menu     *menu.Repository
	auditor  *audit.Service
}

func NewUploadsController(store *images.Store, roomsRepo *rooms.Repository, menuRepo *menu.Repository, auditor *audit.Service) *UploadsController {
	return &UploadsController{
		store:   store,
		rooms:   roomsRepo,
		menu:    menuRepo,
		auditor: auditor,
	}
}

// UploadRoomImage attaches a photo to a room. Staff or admin.
func (uc *UploadsController) UploadRoomImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := uc.rooms.GetByID(id); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			respondNotFound(c, "room")
			return
		}
		respondInternalError(c, err, "upload room image")
		return
	}

	asset, ok := uc.saveUpload(c, "room", id)
	if !ok {
		return
	}

	if err := uc.rooms.SetImagePath(id, "/images/"+asset.Filename); err != nil {
		respondInternalError(c, err, "attach room image")
		return
	}

	if uc.auditor != nil {
		uc.auditor.RecordChange(GetUserID(c), entities.AuditEventUpload, "room_image_upload", id, "room image uploaded")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "image": asset})
}

// UploadMenuImage attaches a photo to a menu item. Staff or admin.
func (uc *UploadsController) UploadMenuImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := uc.menu.GetByID(id); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			respondNotFound(c, "menu item")
			return
		}
		respondInternalError(c, err, "upload menu image")
		return
	}

	asset, ok := uc.saveUpload(c, "menu_item", id)
	if !ok {
		return
	}

	if err := uc.menu.SetImagePath(id, "/images/"+asset.Filename); err != nil {
		respondInternalError(c, err, "attach menu image")
		return
	}

	if uc.auditor != nil {
		uc.auditor.RecordChange(GetUserID(c), entities.AuditEventUpload, "menu_image_upload", id, "menu image uploaded")
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "image": asset})
}

// Serve streams a stored image. Public.
func (uc *UploadsController) Serve(c *gin.Context) {
	path, err := uc.store.Path(c.Param("filename"))
	if err != nil {
		respondNotFound(c, "image")
		return
	}
	c.File(path)
}

// saveUpload reads the multipart "image" field and stores it. Responds
// with the appropriate error and returns false on failure.
func (uc *UploadsController) saveUpload(c *gin.Context, ownerType string, ownerID uint) (*entities.ImageAsset, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "image file is required")
		return nil, false
	}

	src, err := file.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return nil, false
	}
	defer src.Close()

	asset, err := uc.store.Save(src, ownerType, ownerID, GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, images.ErrTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, images.ErrUnsupportedType):
			respondError(c, http.StatusUnsupportedMediaType, err.Error())
		default:
			respondInternalError(c, err, "save upload")
		}
		return nil, false
	}

	return asset, true
}
