package http

import (
	"github.com/mrlokans/snipsnap/internal/database/snips"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls. Every method takes
// the authenticated user's id; nothing here can reach another user's data
// except through a share.

// SnipStore provides snip persistence scoped to an owner.
type SnipStore interface {
	CreateSnip(userID uint, in snips.SnipInput) (*entities.Snip, error)
	UpdateSnip(userID, id uint, in snips.SnipInput) (*entities.Snip, error)
	DeleteSnip(userID, id uint) error
	GetSnip(userID, id uint) (*entities.Snip, error)
	ListSnips(userID uint) ([]entities.Snip, error)
	ListCollectionSnips(userID, collectionID uint) ([]entities.Snip, error)
	ListSharedWith(userID uint) ([]entities.Snip, error)
	GetSharedSnip(userID, id uint) (*entities.Snip, error)
}

// CollectionStore provides collection persistence scoped to an owner.
type CollectionStore interface {
	CreateCollection(userID uint, name string) (*entities.Collection, error)
	ListCollections(userID uint) ([]entities.Collection, error)
	RenameCollection(userID, id uint, name string) (*entities.Collection, error)
	DeleteCollection(userID, id uint) error
}

// ContactStore provides the user's contact list.
type ContactStore interface {
	AddContact(userID uint, email, displayName string) (*entities.Contact, error)
	ListContacts(userID uint) ([]entities.Contact, error)
	DeleteContact(userID, contactID uint) error
}

// AccountService covers the settings operations on the user's own account.
type AccountService interface {
	GetUserByID(id uint) (*entities.User, error)
	UpdateProfile(id uint, email, firstName, lastName string) (*entities.User, error)
	ChangePassword(userID uint, oldPassword, newPassword string) error
	DeleteAccount(userID uint) error
}

// ActivityRecorder receives audit events from resource controllers.
type ActivityRecorder interface {
	LogSnip(userID uint, action, entityType string, entityID uint, entityName string)
	LogSharing(userID uint, action, description string, entityID uint)
	LogAccount(userID uint, action, description string, err error)
}

// ActivityReader lists a user's audit events.
type ActivityReader interface {
	GetEvents(userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type noopRecorder struct{}

func (noopRecorder) LogSnip(uint, string, string, uint, string) {}
func (noopRecorder) LogSharing(uint, string, string, uint)      {}
func (noopRecorder) LogAccount(uint, string, string, error)     {}

func recorderOrNoop(r ActivityRecorder) ActivityRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
