package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	auditsvc "github.com/mrlokans/snipsnap/internal/audit"
	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/database/collections"
	"github.com/mrlokans/snipsnap/internal/database/contacts"
	"github.com/mrlokans/snipsnap/internal/database/snips"
	"github.com/mrlokans/snipsnap/internal/database/users"
	"github.com/mrlokans/snipsnap/internal/http"
	"github.com/mrlokans/snipsnap/internal/scheduler"
	"github.com/mrlokans/snipsnap/internal/tasks"
)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.Hasher = (*auth.BcryptHasher)(nil)
var _ auth.Validator = (*auth.TokenManager)(nil)
var _ auth.UserStore = (*users.Repository)(nil)
var _ auth.AuditLogger = (*auditsvc.Service)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.SnipStore = (*snips.Repository)(nil)
var _ http.CollectionStore = (*collections.Repository)(nil)
var _ http.ContactStore = (*contacts.Repository)(nil)
var _ http.AccountService = (*auth.Service)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.ActivityRecorder = (*auditsvc.Service)(nil)
var _ http.ActivityReader = (*auditsvc.Service)(nil)

// =============================================================================
// Background Maintenance
// =============================================================================

var _ tasks.AuditEventCleaner = (*auditsvc.Service)(nil)
var _ tasks.OrphanSharesCleaner = (*snips.Repository)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
