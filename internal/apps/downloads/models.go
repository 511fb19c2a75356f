package downloads

import (
	"time"

	"github.com/google/uuid"
)

// Download statuses. "Deleting" a record moves it to StatusDeleted; rows
// are never removed.
const (
	StatusCompleted = "completed"
	StatusDeleted   = "deleted"
)

// Download is a ledger entry for a finished browser download. The service
// records completed transfers; it does not track bytes in flight, so
// Progress is always 100 and the speed/remaining columns stay empty.
type Download struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	FileName       string     `gorm:"size:500;not null" json:"file_name"`
	FileURL        string     `gorm:"size:2048;not null" json:"file_url"`
	FileSize       *int64     `json:"file_size"`
	FileType       *string    `gorm:"size:100" json:"file_type"`
	DownloadStatus string     `gorm:"size:20;not null" json:"download_status"`
	Progress       int        `json:"progress"`
	DownloadSpeed  string     `gorm:"size:50" json:"download_speed"`
	TimeRemaining  string     `gorm:"size:50" json:"time_remaining"`
	IsInstalled    bool       `gorm:"default:false" json:"is_installed"`
	InstalledAt    *time.Time `json:"installed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}
