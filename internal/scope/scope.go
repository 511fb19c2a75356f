package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForUser returns a GORM scope that filters rows by owning user.
// Every read and write path of the feature apps goes through it.
func ForUser(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// MailFolder maps a folder name onto the archive/star flags. Unrecognized
// folder names mean "all messages", matching the product's contract.
func MailFolder(folder string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch folder {
		case "inbox":
			return db.Where("is_archived = ?", false)
		case "starred":
			return db.Where("is_starred = ? AND is_archived = ?", true, false)
		case "archived":
			return db.Where("is_archived = ?", true)
		default:
			return db
		}
	}
}

// NotIncognito hides incognito rows from search-history listings. "Clear"
// marks rows incognito instead of deleting them, so this predicate is the
// single place that decides what a listing can see.
func NotIncognito(db *gorm.DB) *gorm.DB {
	return db.Where("is_incognito = ?", false)
}
