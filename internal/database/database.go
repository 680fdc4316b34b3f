package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/snipsnap/internal/entities"
)

// Sentinel errors shared by the repository sub-packages.
var (
	ErrNotFound           = errors.New("record not found")
	ErrUserExists         = errors.New("user already exists")
	ErrContactExists      = errors.New("contact already exists")
	ErrSelfContact        = errors.New("cannot add yourself as a contact")
	ErrNotAContact        = errors.New("snips can only be shared with contacts")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrAccountNotFound    = errors.New("account no longer exists")
)

// Models lists every entity migrated by NewDatabase.
var Models = []any{
	&entities.User{},
	&entities.Collection{},
	&entities.Snip{},
	&entities.Contact{},
	&entities.Share{},
	&entities.AuditEvent{},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// RequireUser fails with ErrAccountNotFound unless userID names a stored user.
// Create paths call it inside their transaction so a token that outlives
// its account cannot write rows for a deleted user.
func RequireUser(tx *gorm.DB, userID uint) error {
	var count int64
	if err := tx.Model(&entities.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// NotFound maps gorm's missing-record error to ErrNotFound and passes other errors through.
func NotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
