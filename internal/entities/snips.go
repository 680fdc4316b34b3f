package entities

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Collection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Snips     []Snip    `gorm:"foreignKey:CollectionID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Snip struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"index;not null" json:"-"`
	CollectionID *uint   `gorm:"index" json:"collection_id"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	Language     string  `gorm:"size:50" json:"language"`
	Description  string  `gorm:"type:text" json:"description"`
	Content      string  `gorm:"type:text" json:"content"`
	Shares       []Share `gorm:"foreignKey:SnipID" json:"-"`
	// Owner is populated only for snips read through a share.
	Owner     *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsShared reports whether the snip has at least one recipient.
// Shares must be preloaded.
func (s Snip) IsShared() bool {
	return len(s.Shares) > 0
}

// SharedWith returns the user ids the snip is shared with.
func (s Snip) SharedWith() []uint {
	ids := make([]uint, 0, len(s.Shares))
	for _, sh := range s.Shares {
		ids = append(ids, sh.ContactID)
	}
	return ids
}

// Contact links a user to another registered user they may share snips with.
type Contact struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_contacts_user_contact;not null" json:"-"`
	ContactID   uint      `gorm:"uniqueIndex:idx_contacts_user_contact;not null" json:"contact_id"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Person      *User     `gorm:"foreignKey:ContactID" json:"user,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Share grants ContactID read access to a snip owned by UserID.
type Share struct {
	SnipID    uint `gorm:"primaryKey;autoIncrement:false" json:"snip_id"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ContactID uint `gorm:"primaryKey;autoIncrement:false;index" json:"contact_id"`
}
