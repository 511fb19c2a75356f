package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a NikBrowser account. Email and phone are each optional but at
// least one is always present; both are globally unique when set. Accounts
// are never hard-deleted, only deactivated via IsActive.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        *string    `gorm:"size:255;uniqueIndex" json:"email"`
	Phone        *string    `gorm:"size:32;uniqueIndex" json:"phone"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Nikmail      string     `gorm:"size:255;not null;uniqueIndex" json:"nikmail"`
	DisplayName  string     `gorm:"size:255" json:"display_name"`
	AvatarURL    string     `gorm:"size:512" json:"avatar_url"`
	IsActive     bool       `gorm:"default:true" json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
