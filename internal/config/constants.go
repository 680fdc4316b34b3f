package config

import "time"

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./snipsnap.db"

	// DefaultTokenLifetime matches the session cookie lifetime issued at login.
	DefaultTokenLifetime = 4 * time.Hour
)
