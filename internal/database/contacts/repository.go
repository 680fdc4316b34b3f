// Package contacts provides database operations for a user's contact list.
//
// A contact is another registered user. Snips may only be shared with
// contacts, so removing a contact also revokes every share the owner
// granted to them.
package contacts

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// Repository handles all contact database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new contacts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddContact adds the user registered under email to userID's contacts.
// An empty displayName falls back to the contact's full name or email.
func (r *Repository) AddContact(userID uint, email, displayName string) (*entities.Contact, error) {
	var contact *entities.Contact
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := database.RequireUser(tx, userID); err != nil {
			return err
		}

		var person entities.User
		if err := tx.Where("email = ?", email).First(&person).Error; err != nil {
			return database.NotFound(err)
		}
		if person.ID == userID {
			return database.ErrSelfContact
		}

		var count int64
		err := tx.Model(&entities.Contact{}).
			Where("user_id = ? AND contact_id = ?", userID, person.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return database.ErrContactExists
		}

		if displayName == "" {
			displayName = defaultDisplayName(&person)
		}

		contact = &entities.Contact{
			UserID:      userID,
			ContactID:   person.ID,
			DisplayName: displayName,
		}
		if err := tx.Create(contact).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return database.ErrContactExists
			}
			return err
		}
		contact.Person = &person
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// ListContacts retrieves a user's contacts ordered by display name.
func (r *Repository) ListContacts(userID uint) ([]entities.Contact, error) {
	var contacts []entities.Contact
	err := r.db.Preload("Person").
		Where("user_id = ?", userID).
		Order("display_name ASC, id ASC").
		Find(&contacts).Error
	return contacts, err
}

// DeleteContact removes contactID from userID's contacts and revokes the
// shares userID had granted them.
func (r *Repository) DeleteContact(userID, contactID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND contact_id = ?", userID, contactID).Delete(&entities.Contact{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return tx.Where("user_id = ? AND contact_id = ?", userID, contactID).Delete(&entities.Share{}).Error
	})
}

func defaultDisplayName(u *entities.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
