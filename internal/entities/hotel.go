package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleGuest UserRole = "guest"
	UserRoleStaff UserRole = "staff"
	UserRoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one of the three known roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleGuest, UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool { return r == UserRoleAdmin }

func (r UserRole) IsStaff() bool { return r == UserRoleStaff }

func (r UserRole) IsGuest() bool { return r == UserRoleGuest }

// CanAccessStaffFeatures reports whether the role reaches the staff desk:
// staff themselves and admins.
func (r UserRole) CanAccessStaffFeatures() bool {
	return r.IsStaff() || r.IsAdmin()
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	FirstName    string   `gorm:"size:100" json:"first_name"`
	LastName     string   `gorm:"size:100" json:"last_name"`
	Phone        string   `gorm:"size:30" json:"phone,omitempty"`
	Role         UserRole `gorm:"size:20;default:'guest'" json:"role"`
	PasswordHash string   `gorm:"size:100" json:"-"`

	// API token (hash only; plaintext is shown to the user once)
	TokenHash      string     `gorm:"index;size:64" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`

	// Login tracking
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type RoomType string

const (
	RoomTypeStandard RoomType = "standard"
	RoomTypeDeluxe   RoomType = "deluxe"
	RoomTypeSuite    RoomType = "suite"
	RoomTypeFamily   RoomType = "family"
)

// Valid reports whether the room type is one of the known types.
func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeStandard, RoomTypeDeluxe, RoomTypeSuite, RoomTypeFamily:
		return true
	}
	return false
}

type Room struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	Number        string   `gorm:"uniqueIndex;size:10" json:"number"`
	Type          RoomType `gorm:"index;size:20;default:'standard'" json:"type"`
	Name          string   `gorm:"size:200" json:"name"`
	Description   string   `gorm:"type:text" json:"description,omitempty"`
	Floor         int      `json:"floor"`
	Capacity      int      `gorm:"index" json:"capacity"`
	PricePerNight float64  `gorm:"index" json:"price_per_night"`
	Amenities     string   `gorm:"size:1000" json:"amenities,omitempty"` // Comma-separated
	ImagePath     string   `gorm:"size:512" json:"image_path,omitempty"`
	Available     bool     `gorm:"default:true" json:"available"`

	Bookings []Booking `gorm:"foreignKey:RoomID" json:"bookings,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked_in"
	BookingStatusCheckedOut BookingStatus = "checked_out"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type Booking struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	UserID     uint          `gorm:"index" json:"user_id"`
	RoomID     uint          `gorm:"index" json:"room_id"`
	CheckIn    time.Time     `gorm:"index" json:"check_in"`
	CheckOut   time.Time     `gorm:"index" json:"check_out"`
	Guests     int           `json:"guests"`
	Status     BookingStatus `gorm:"index;size:20;default:'pending'" json:"status"`
	TotalPrice float64       `json:"total_price"`
	Notes      string        `gorm:"size:1000" json:"notes,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Room Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Nights returns the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

type MenuCategory string

const (
	MenuCategoryBreakfast MenuCategory = "breakfast"
	MenuCategoryLunch     MenuCategory = "lunch"
	MenuCategoryDinner    MenuCategory = "dinner"
	MenuCategoryDrinks    MenuCategory = "drinks"
	MenuCategoryDesserts  MenuCategory = "desserts"
)

// Valid reports whether the category is one of the known categories.
func (m MenuCategory) Valid() bool {
	switch m {
	case MenuCategoryBreakfast, MenuCategoryLunch, MenuCategoryDinner, MenuCategoryDrinks, MenuCategoryDesserts:
		return true
	}
	return false
}

type MenuItem struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"index;size:200" json:"name"`
	Description string       `gorm:"size:1000" json:"description,omitempty"`
	Category    MenuCategory `gorm:"index;size:20" json:"category"`
	Price       float64      `json:"price"`
	ImagePath   string       `gorm:"size:512" json:"image_path,omitempty"`
	Available   bool         `gorm:"default:true" json:"available"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ImageAsset tracks an uploaded image on disk and the entity it belongs to.
type ImageAsset struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerType   string    `gorm:"index;size:20" json:"owner_type"` // "room" or "menu_item"
	OwnerID     uint      `gorm:"index" json:"owner_id"`
	Filename    string    `gorm:"uniqueIndex;size:100" json:"filename"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uint      `gorm:"index" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Room) TableName() string {
	return "rooms"
}

func (Booking) TableName() string {
	return "bookings"
}

func (MenuItem) TableName() string {
	return "menu_items"
}

func (ImageAsset) TableName() string {
	return "image_assets"
}
