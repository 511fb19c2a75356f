package searchhistory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/scope"
	"gorm.io/gorm"
)

var ErrQueryRequired = errors.New("Search query required")

const defaultLimit = 50

type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Add stores one search. Incognito searches are the caller's business to
// suppress before calling; this always persists.
func (s *HistoryService) Add(userID uuid.UUID, query, engine string) (*SearchHistory, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if engine == "" {
		engine = "google"
	}

	entry := SearchHistory{
		ID:           uuid.New(),
		UserID:       userID,
		SearchQuery:  query,
		SearchEngine: engine,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to store search history: %w", err)
	}
	return &entry, nil
}

// Get lists the caller's non-incognito searches, newest first.
func (s *HistoryService) Get(userID uuid.UUID, limit int) ([]SearchHistory, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var entries []SearchHistory
	err := s.db.Scopes(scope.ForUser(userID), scope.NotIncognito).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	return entries, nil
}

// Clear retroactively hides the caller's history by marking every row
// incognito. Nothing is deleted.
func (s *HistoryService) Clear(userID uuid.UUID) error {
	return s.db.Model(&SearchHistory{}).
		Scopes(scope.ForUser(userID)).
		Where("is_incognito = ?", false).
		Update("is_incognito", true).Error
}
