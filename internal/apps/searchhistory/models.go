package searchhistory

import (
	"time"

	"github.com/google/uuid"
)

// SearchHistory is one saved search. Incognito rows never show up in
// listings; "clear" flips every existing row to incognito instead of
// deleting anything.
type SearchHistory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SearchQuery  string    `gorm:"size:1000;not null" json:"search_query"`
	SearchEngine string    `gorm:"size:50" json:"search_engine"`
	IsIncognito  bool      `gorm:"default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SearchHistory) TableName() string { return "search_history" }
