package http

import (
	"github.com/mrlokans/snipsnap/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Health
	Database Pinger
	Version  string

	// Authentication
	AuthController *auth.AuthController
	Gate           *auth.Gate
	SecureCookies  bool

	// Resources, all scoped to the authenticated user
	Accounts    AccountService
	Snips       SnipStore
	Collections CollectionStore
	Contacts    ContactStore

	// Audit trail (optional)
	Activity       ActivityRecorder
	ActivityReader ActivityReader

	// Browser origins allowed to call the API with credentials
	AllowedOrigins []string
}
