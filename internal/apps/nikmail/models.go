package nikmail

import (
	"time"

	"github.com/google/uuid"
)

// Email is one delivered copy of a message, scoped to a single mailbox.
// Sending to an internal recipient writes two independent rows: the
// recipient's unread copy and the sender's already-read sent copy.
type Email struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	FromEmail  string     `gorm:"size:255;not null" json:"from_email"`
	FromName   string     `gorm:"size:255" json:"from_name"`
	ToEmail    string     `gorm:"size:255;not null" json:"to_email"`
	Subject    string     `gorm:"size:500" json:"subject"`
	Body       string     `gorm:"type:text" json:"body"`
	IsRead     bool       `gorm:"default:false" json:"is_read"`
	IsStarred  bool       `gorm:"default:false" json:"is_starred"`
	IsArchived bool       `gorm:"default:false" json:"is_archived"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}
