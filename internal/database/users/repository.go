// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByEmail(email)
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts user. Returns database.ErrUserExists if the email is taken.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return database.ErrUserExists
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return database.ErrUserExists
			}
			return err
		}
		return nil
	})
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their (normalized) email.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// UpdateProfile changes the editable profile fields of a user.
func (r *Repository) UpdateProfile(id uint, email, firstName, lastName string) (*entities.User, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, email, id)
		if err != nil {
			return err
		}
		if taken {
			return database.ErrUserExists
		}

		result := tx.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
			"email":      email,
			"first_name": firstName,
			"last_name":  lastName,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(id)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *Repository) UpdatePasswordHash(id uint, hash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user together with everything they own and every
// share or contact entry pointing at them.
func (r *Repository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			model any
			where string
		}{
			{"shares", &entities.Share{}, "user_id = ? OR contact_id = ?"},
			{"contacts", &entities.Contact{}, "user_id = ? OR contact_id = ?"},
			{"snips", &entities.Snip{}, "user_id = ?"},
			{"collections", &entities.Collection{}, "user_id = ?"},
			{"audit events", &entities.AuditEvent{}, "user_id = ?"},
		}
		for _, step := range steps {
			args := []any{id}
			if step.where != "user_id = ?" {
				args = append(args, id)
			}
			if err := tx.Where(step.where, args...).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s: %w", step.name, err)
			}
		}

		result := tx.Delete(&entities.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

func emailTaken(tx *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	query := tx.Model(&entities.User{}).Where("email = ?", email)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}
	return count > 0, nil
}
