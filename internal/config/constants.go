package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./hotelier.db"

	// DefaultTokenPath is where the API client persists its bearer token
	DefaultTokenPath = "./.hotelier-token"
)
