package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSettings holds per-user browser preferences, one row per user,
// created with fixed defaults at registration.
type UserSettings struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DarkMode            bool      `gorm:"default:false" json:"dark_mode"`
	DefaultSearchEngine string    `gorm:"size:50;default:'google'" json:"default_search_engine"`
	UpdatedAt           time.Time `json:"updated_at"`
	User                User      `gorm:"foreignKey:UserID" json:"-"`
}
