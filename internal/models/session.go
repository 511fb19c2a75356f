package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one logged-in browser session. A session is valid while
// ExpiresAt is in the future and the owning user is active; logout moves
// ExpiresAt to now instead of deleting the row.
type Session struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionToken string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
}
