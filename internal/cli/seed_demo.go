package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/config"
	"github.com/jmvoss/hotelier/internal/database"
	"github.com/jmvoss/hotelier/internal/entities"
)

// SeedDemoCommand populates the database with demo rooms, menu items and
// accounts for local development.
type SeedDemoCommand struct {
	DatabasePath string
	WithUsers    bool
}

// NewSeedDemoCommand creates a new SeedDemoCommand.
func NewSeedDemoCommand() *SeedDemoCommand {
	return &SeedDemoCommand{}
}

// ParseFlags parses command line flags.
func (cmd *SeedDemoCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.WithUsers, "with-users", true, "Also create demo guest/staff/admin accounts")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-demo [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Populate the database with demo rooms and menu items.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the command. Seeding is idempotent: existing rooms and
// menu items are left alone.
func (cmd *SeedDemoCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	seeded := 0
	for _, room := range demoRooms() {
		var count int64
		db.DB.Model(&entities.Room{}).Where("number = ?", room.Number).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.DB.Create(&room).Error; err != nil {
			return fmt.Errorf("failed to seed room %s: %w", room.Number, err)
		}
		seeded++
	}
	fmt.Printf("Seeded %d rooms\n", seeded)

	seeded = 0
	for _, item := range demoMenu() {
		var count int64
		db.DB.Model(&entities.MenuItem{}).Where("name = ?", item.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.DB.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to seed menu item %s: %w", item.Name, err)
		}
		seeded++
	}
	fmt.Printf("Seeded %d menu items\n", seeded)

	if cmd.WithUsers {
		if err := cmd.seedUsers(db); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *SeedDemoCommand) seedUsers(db *database.Database) error {
	service := auth.NewService(db.DB, config.NewConfig().Auth)

	accounts := []struct {
		input auth.RegisterInput
		role  entities.UserRole
	}{
		{auth.RegisterInput{Email: "guest@hotel.example", Password: "guest-demo-1", FirstName: "Greta", LastName: "Guest"}, entities.UserRoleGuest},
		{auth.RegisterInput{Email: "staff@hotel.example", Password: "staff-demo-1", FirstName: "Sam", LastName: "Staff"}, entities.UserRoleStaff},
		{auth.RegisterInput{Email: "admin@hotel.example", Password: "admin-demo-1", FirstName: "Ada", LastName: "Admin"}, entities.UserRoleAdmin},
	}

	created := 0
	for _, account := range accounts {
		if _, err := service.CreateUser(account.input, account.role); err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				continue
			}
			return fmt.Errorf("failed to seed user %s: %w", account.input.Email, err)
		}
		created++
	}
	fmt.Printf("Seeded %d demo accounts\n", created)
	return nil
}

func demoRooms() []entities.Room {
	return []entities.Room{
		{Number: "101", Type: entities.RoomTypeStandard, Name: "Garden View Standard", Description: "Cozy standard room overlooking the garden.", Floor: 1, Capacity: 2, PricePerNight: 89, Amenities: "wifi,tv,minibar", Available: true},
		{Number: "102", Type: entities.RoomTypeStandard, Name: "Courtyard Standard", Description: "Quiet room facing the inner courtyard.", Floor: 1, Capacity: 2, PricePerNight: 85, Amenities: "wifi,tv", Available: true},
		{Number: "201", Type: entities.RoomTypeDeluxe, Name: "Deluxe King", Description: "Spacious deluxe room with king bed and city view.", Floor: 2, Capacity: 2, PricePerNight: 139, Amenities: "wifi,tv,minibar,bathtub", Available: true},
		{Number: "202", Type: entities.RoomTypeFamily, Name: "Family Room", Description: "Two connecting rooms for up to five guests.", Floor: 2, Capacity: 5, PricePerNight: 179, Amenities: "wifi,tv,kitchenette", Available: true},
		{Number: "301", Type: entities.RoomTypeSuite, Name: "Panorama Suite", Description: "Top-floor suite with separate living area and terrace.", Floor: 3, Capacity: 3, PricePerNight: 259, Amenities: "wifi,tv,minibar,bathtub,terrace", Available: true},
	}
}

func demoMenu() []entities.MenuItem {
	return []entities.MenuItem{
		{Name: "Continental Breakfast", Description: "Pastries, fruit, yogurt and coffee.", Category: entities.MenuCategoryBreakfast, Price: 14.5, Available: true},
		{Name: "Eggs Benedict", Description: "Poached eggs on brioche with hollandaise.", Category: entities.MenuCategoryBreakfast, Price: 16, Available: true},
		{Name: "Club Sandwich", Description: "Chicken, bacon and egg on toasted sourdough.", Category: entities.MenuCategoryLunch, Price: 18, Available: true},
		{Name: "Grilled Salmon", Description: "With seasonal vegetables and lemon butter.", Category: entities.MenuCategoryDinner, Price: 28, Available: true},
		{Name: "Ribeye Steak", Description: "300g ribeye with red wine jus.", Category: entities.MenuCategoryDinner, Price: 36, Available: true},
		{Name: "House Lemonade", Description: "Fresh lemon, mint and soda.", Category: entities.MenuCategoryDrinks, Price: 6, Available: true},
		{Name: "Chocolate Fondant", Description: "Warm chocolate cake with vanilla ice cream.", Category: entities.MenuCategoryDesserts, Price: 11, Available: true},
	}
}
