// Package rooms provides database operations for room management.
package rooms

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jmvoss/hotelier/internal/entities"
)

var ErrRoomNotFound = errors.New("room not found")

// Filter narrows a room listing. Zero values mean "no constraint".
type Filter struct {
	Type          entities.RoomType
	MinCapacity   int
	MaxPrice      float64
	MinPrice      float64
	OnlyAvailable bool
}

// Repository handles all room database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new rooms repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns rooms matching the filter, ordered by room number.
func (r *Repository) List(filter Filter) ([]entities.Room, error) {
	query := r.db.Model(&entities.Room{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.MinCapacity > 0 {
		query = query.Where("capacity >= ?", filter.MinCapacity)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price_per_night >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price_per_night <= ?", filter.MaxPrice)
	}
	if filter.OnlyAvailable {
		query = query.Where("available = ?", true)
	}

	var rooms []entities.Room
	err := query.Order("number ASC").Find(&rooms).Error
	return rooms, err
}

// GetByID retrieves a room by ID.
func (r *Repository) GetByID(id uint) (*entities.Room, error) {
	var room entities.Room
	err := r.db.First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Create persists a new room.
func (r *Repository) Create(room *entities.Room) error {
	return r.db.Create(room).Error
}

// Update replaces the mutable fields of a room.
func (r *Repository) Update(room *entities.Room) error {
	result := r.db.Model(&entities.Room{}).Where("id = ?", room.ID).Updates(map[string]any{
		"number":          room.Number,
		"type":            room.Type,
		"name":            room.Name,
		"description":     room.Description,
		"floor":           room.Floor,
		"capacity":        room.Capacity,
		"price_per_night": room.PricePerNight,
		"amenities":       room.Amenities,
		"image_path":      room.ImagePath,
		"available":       room.Available,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetImagePath records the uploaded photo for a room.
func (r *Repository) SetImagePath(id uint, path string) error {
	result := r.db.Model(&entities.Room{}).Where("id = ?", id).Update("image_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetAvailability toggles whether a room can be booked.
func (r *Repository) SetAvailability(id uint, available bool) error {
	result := r.db.Model(&entities.Room{}).Where("id = ?", id).Update("available", available)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete soft-deletes a room.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Room{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
