package downloads

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/scope"
	"gorm.io/gorm"
)

var (
	ErrFileRequired     = errors.New("Укажите название и URL файла")
	ErrDownloadNotFound = errors.New("Загрузка не найдена")
	ErrNothingToUpdate  = errors.New("Нет полей для обновления")
)

type DownloadService struct {
	db *gorm.DB
}

func NewDownloadService(db *gorm.DB) *DownloadService {
	return &DownloadService{db: db}
}

// List returns all of the caller's download rows, newest first, deleted
// ones included; the client decides what to show.
func (s *DownloadService) List(userID uuid.UUID) ([]Download, error) {
	var items []Download
	err := s.db.Scopes(scope.ForUser(userID)).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	return items, nil
}

// Add records a finished download: status completed, progress 100,
// completion timestamp now.
func (s *DownloadService) Add(userID uuid.UUID, fileName, fileURL string, fileSize *int64, fileType *string) (*Download, error) {
	if fileName == "" || fileURL == "" {
		return nil, ErrFileRequired
	}

	now := time.Now().UTC()
	item := Download{
		ID:             uuid.New(),
		UserID:         userID,
		FileName:       fileName,
		FileURL:        fileURL,
		FileSize:       fileSize,
		FileType:       fileType,
		DownloadStatus: StatusCompleted,
		Progress:       100,
		CompletedAt:    &now,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create download: %w", err)
	}
	return &item, nil
}

// SetInstalled updates the installed flag, setting the timestamp when the
// flag goes up and clearing it when it goes down. Scoped to the caller.
func (s *DownloadService) SetInstalled(userID, downloadID uuid.UUID, isInstalled *bool) (*Download, error) {
	if isInstalled == nil {
		return nil, ErrNothingToUpdate
	}

	var installedAt *time.Time
	if *isInstalled {
		now := time.Now().UTC()
		installedAt = &now
	}

	result := s.db.Model(&Download{}).
		Scopes(scope.ForUser(userID)).
		Where("id = ?", downloadID).
		Updates(map[string]interface{}{
			"is_installed": *isInstalled,
			"installed_at": installedAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update download: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrDownloadNotFound
	}

	var item Download
	if err := s.db.First(&item, "id = ?", downloadID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SoftDelete marks the row deleted after an ownership check; the record
// stays in the ledger with the new status.
func (s *DownloadService) SoftDelete(userID, downloadID uuid.UUID) error {
	result := s.db.Model(&Download{}).
		Scopes(scope.ForUser(userID)).
		Where("id = ?", downloadID).
		Update("download_status", StatusDeleted)
	if result.Error != nil {
		return fmt.Errorf("failed to delete download: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDownloadNotFound
	}
	return nil
}
