// Package menu provides database operations for the restaurant menu.
package menu

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jmvoss/hotelier/internal/entities"
)

var ErrItemNotFound = errors.New("menu item not found")

// Repository handles all menu database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new menu repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns menu items, optionally filtered by category. When
// onlyAvailable is set, unavailable items are hidden (guest view).
func (r *Repository) List(category entities.MenuCategory, onlyAvailable bool) ([]entities.MenuItem, error) {
	query := r.db.Model(&entities.MenuItem{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}

	var items []entities.MenuItem
	err := query.Order("category ASC, name ASC").Find(&items).Error
	return items, err
}

// GetByID retrieves a menu item by ID.
func (r *Repository) GetByID(id uint) (*entities.MenuItem, error) {
	var item entities.MenuItem
	err := r.db.First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create persists a new menu item.
func (r *Repository) Create(item *entities.MenuItem) error {
	return r.db.Create(item).Error
}

// Update replaces the mutable fields of a menu item.
func (r *Repository) Update(item *entities.MenuItem) error {
	result := r.db.Model(&entities.MenuItem{}).Where("id = ?", item.ID).Updates(map[string]any{
		"name":        item.Name,
		"description": item.Description,
		"category":    item.Category,
		"price":       item.Price,
		"image_path":  item.ImagePath,
		"available":   item.Available,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetImagePath records the uploaded photo for a menu item.
func (r *Repository) SetImagePath(id uint, path string) error {
	result := r.db.Model(&entities.MenuItem{}).Where("id = ?", id).Update("image_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete soft-deletes a menu item.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.MenuItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
