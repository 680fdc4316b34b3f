// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, shared sentinel errors
//	├── users/           # Accounts and cascading account deletion
//	├── snips/           # Snip CRUD and sharing
//	├── collections/     # Snip collections
//	├── contacts/        # Per-user contact list
//	└── audit/           # Audit event log
//
// Every repository method that touches user-owned data takes the owner's id
// as an explicit argument and filters on it. The id always comes from the
// authorization gate, never from a request body.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./snipsnap.db")
//
//	snipsRepo := snips.NewRepository(db.DB)
//	snip, err := snipsRepo.GetSnip(userID, snipID)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the entity to Models in database.go
//  5. Add compile-time interface check in internal/interfaces
package database
