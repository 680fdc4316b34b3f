// Package snips provides database operations for code snippets and their
// shares.
//
// # Ownership
//
// Owner-facing methods take the caller's user id and only ever see that
// user's snips. Shared snips are read through ListSharedWith and
// GetSharedSnip, which return the snip with its owner preloaded.
//
// # Usage
//
//	repo := snips.NewRepository(db)
//	snip, err := repo.CreateSnip(userID, snips.SnipInput{Name: "hello", Content: "..."})
package snips

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// SnipInput holds the writable fields of a snip.
type SnipInput struct {
	CollectionID *uint
	Name         string
	Language     string
	Description  string
	Content      string
	// SharedWith is the full set of recipients; each must be a contact of the owner.
	SharedWith []uint
}

// Repository handles all snip database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new snips repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSnip stores a new snip owned by userID.
func (r *Repository) CreateSnip(userID uint, in SnipInput) (*entities.Snip, error) {
	var snipID uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := database.RequireUser(tx, userID); err != nil {
			return err
		}
		if err := validateInput(tx, userID, in); err != nil {
			return err
		}

		snip := entities.Snip{
			UserID:       userID,
			CollectionID: in.CollectionID,
			Name:         in.Name,
			Language:     in.Language,
			Description:  in.Description,
			Content:      in.Content,
		}
		if err := tx.Omit("Shares", "Owner").Create(&snip).Error; err != nil {
			return fmt.Errorf("failed to create snip: %w", err)
		}
		snipID = snip.ID

		return replaceShares(tx, userID, snip.ID, in.SharedWith)
	})
	if err != nil {
		return nil, err
	}
	return r.GetSnip(userID, snipID)
}

// UpdateSnip overwrites the writable fields and recipients of a snip.
func (r *Repository) UpdateSnip(userID, id uint, in SnipInput) (*entities.Snip, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Snip{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return database.ErrNotFound
		}

		if err := validateInput(tx, userID, in); err != nil {
			return err
		}

		err := tx.Model(&entities.Snip{}).Where("id = ? AND user_id = ?", id, userID).Updates(map[string]any{
			"collection_id": in.CollectionID,
			"name":          in.Name,
			"language":      in.Language,
			"description":   in.Description,
			"content":       in.Content,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update snip: %w", err)
		}

		return replaceShares(tx, userID, id, in.SharedWith)
	})
	if err != nil {
		return nil, err
	}
	return r.GetSnip(userID, id)
}

// DeleteSnip removes a snip and its shares.
func (r *Repository) DeleteSnip(userID, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Snip{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return tx.Where("snip_id = ?", id).Delete(&entities.Share{}).Error
	})
}

// GetSnip retrieves one of the user's own snips with its shares.
func (r *Repository) GetSnip(userID, id uint) (*entities.Snip, error) {
	var snip entities.Snip
	err := r.db.Preload("Shares").
		Where("id = ? AND user_id = ?", id, userID).
		First(&snip).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &snip, nil
}

// ListSnips retrieves all of the user's snips, most recently updated first.
func (r *Repository) ListSnips(userID uint) ([]entities.Snip, error) {
	var snips []entities.Snip
	err := r.db.Preload("Shares").
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&snips).Error
	return snips, err
}

// ListCollectionSnips retrieves the snips in one of the user's collections.
func (r *Repository) ListCollectionSnips(userID, collectionID uint) ([]entities.Snip, error) {
	if err := ensureCollection(r.db, userID, collectionID); err != nil {
		return nil, err
	}

	var snips []entities.Snip
	err := r.db.Preload("Shares").
		Where("user_id = ? AND collection_id = ?", userID, collectionID).
		Order("updated_at DESC, id DESC").
		Find(&snips).Error
	return snips, err
}

// ListSharedWith retrieves snips other users have shared with userID.
func (r *Repository) ListSharedWith(userID uint) ([]entities.Snip, error) {
	var snips []entities.Snip
	err := r.db.Preload("Owner").
		Joins("JOIN shares ON shares.snip_id = snips.id").
		Where("shares.contact_id = ?", userID).
		Order("snips.updated_at DESC, snips.id DESC").
		Find(&snips).Error
	return snips, err
}

// GetSharedSnip retrieves a snip only if it is shared with userID.
func (r *Repository) GetSharedSnip(userID, id uint) (*entities.Snip, error) {
	var snip entities.Snip
	err := r.db.Preload("Owner").
		Joins("JOIN shares ON shares.snip_id = snips.id").
		Where("snips.id = ? AND shares.contact_id = ?", id, userID).
		First(&snip).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &snip, nil
}

// DeleteOrphanShares removes shares whose snip is gone or whose recipient is
// no longer one of the owner's contacts.
func (r *Repository) DeleteOrphanShares() (int64, error) {
	liveSnips := r.db.Model(&entities.Snip{}).Select("id")
	contactLinks := r.db.Model(&entities.Contact{}).Select("1").
		Where("contacts.user_id = shares.user_id AND contacts.contact_id = shares.contact_id")

	result := r.db.Where("snip_id NOT IN (?) OR NOT EXISTS (?)", liveSnips, contactLinks).
		Delete(&entities.Share{})
	return result.RowsAffected, result.Error
}

func validateInput(tx *gorm.DB, userID uint, in SnipInput) error {
	if in.CollectionID != nil {
		if err := ensureCollection(tx, userID, *in.CollectionID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return database.ErrCollectionNotFound
			}
			return err
		}
	}

	recipients := unique(in.SharedWith)
	if len(recipients) == 0 {
		return nil
	}

	var count int64
	err := tx.Model(&entities.Contact{}).
		Where("user_id = ? AND contact_id IN ?", userID, recipients).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check contacts: %w", err)
	}
	if count != int64(len(recipients)) {
		return database.ErrNotAContact
	}
	return nil
}

func ensureCollection(tx *gorm.DB, userID, collectionID uint) error {
	var count int64
	err := tx.Model(&entities.Collection{}).
		Where("id = ? AND user_id = ?", collectionID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return database.ErrNotFound
	}
	return nil
}

func replaceShares(tx *gorm.DB, userID, snipID uint, recipients []uint) error {
	if err := tx.Where("snip_id = ?", snipID).Delete(&entities.Share{}).Error; err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}

	recipients = unique(recipients)
	if len(recipients) == 0 {
		return nil
	}

	shares := make([]entities.Share, 0, len(recipients))
	for _, contactID := range recipients {
		shares = append(shares, entities.Share{SnipID: snipID, UserID: userID, ContactID: contactID})
	}
	if err := tx.Create(&shares).Error; err != nil {
		return fmt.Errorf("failed to share snip: %w", err)
	}
	return nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
