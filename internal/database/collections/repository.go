// Package collections provides database operations for snip collections.
//
// Every query is scoped to the owning user; a collection owned by someone
// else is reported as database.ErrNotFound.
package collections

import (
	"gorm.io/gorm"

	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// Repository handles all collection database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collections repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateCollection creates a new collection for userID.
func (r *Repository) CreateCollection(userID uint, name string) (*entities.Collection, error) {
	collection := &entities.Collection{
		UserID: userID,
		Name:   name,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := database.RequireUser(tx, userID); err != nil {
			return err
		}
		return tx.Create(collection).Error
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}

// ListCollections retrieves all collections for a user ordered by name.
func (r *Repository) ListCollections(userID uint) ([]entities.Collection, error) {
	var collections []entities.Collection
	err := r.db.Where("user_id = ?", userID).Order("name ASC, id ASC").Find(&collections).Error
	return collections, err
}

// GetCollection retrieves one of the user's collections.
func (r *Repository) GetCollection(userID, id uint) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&collection).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &collection, nil
}

// RenameCollection changes a collection's name.
func (r *Repository) RenameCollection(userID, id uint, name string) (*entities.Collection, error) {
	result := r.db.Model(&entities.Collection{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, database.ErrNotFound
	}
	return r.GetCollection(userID, id)
}

// DeleteCollection removes a collection. Its snips are kept and detached.
func (r *Repository) DeleteCollection(userID, id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.Snip{}).
			Where("collection_id = ? AND user_id = ?", id, userID).
			Update("collection_id", nil).Error
		if err != nil {
			return err
		}

		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Collection{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
}
