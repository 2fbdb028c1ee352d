// Package cli implements the command-line subcommands.
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/jmvoss/hotelier/internal/auth"
	"github.com/jmvoss/hotelier/internal/config"
	"github.com/jmvoss/hotelier/internal/database"
	"github.com/jmvoss/hotelier/internal/entities"
)

// CreateAdminCommand creates an administrator account.
type CreateAdminCommand struct {
	DatabasePath string
	Email        string
	FirstName    string
	LastName     string
	Password     string // read interactively when empty
}

// NewCreateAdminCommand creates a new CreateAdminCommand.
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Email, "email", "", "Administrator email address")
	fs.StringVar(&cmd.FirstName, "first-name", "", "Administrator first name")
	fs.StringVar(&cmd.LastName, "last-name", "", "Administrator last name")
	fs.StringVar(&cmd.Password, "password", "", "Administrator password (prompted interactively when omitted)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email admin@hotel.example -first-name Ada -last-name Admin\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the command.
func (cmd *CreateAdminCommand) Run() error {
	reader := bufio.NewReader(os.Stdin)

	if cmd.Email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		cmd.Email = strings.TrimSpace(line)
	}
	if cmd.Email == "" {
		return fmt.Errorf("email is required")
	}

	if cmd.FirstName == "" {
		fmt.Print("First name: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read first name: %w", err)
		}
		cmd.FirstName = strings.TrimSpace(line)
	}

	if cmd.LastName == "" {
		fmt.Print("Last name: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read last name: %w", err)
		}
		cmd.LastName = strings.TrimSpace(line)
	}

	password := cmd.Password
	if password == "" {
		var err error
		password, err = readPassword()
		if err != nil {
			return err
		}
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(db.DB, config.NewConfig().Auth)
	user, err := service.CreateUser(auth.RegisterInput{
		Email:     cmd.Email,
		Password:  password,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
	}, entities.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Printf("Administrator account created: %s (%s)\n", user.FullName(), user.Email)
	return nil
}

// readPassword prompts for the password twice without echoing it.
func readPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
