package apps

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/config"
	"gorm.io/gorm"
)

// Plugin defines the interface every feature app must implement.
type Plugin interface {
	// ID returns the unique app identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts app-specific routes on the given Fiber group.
	// The group is already prefixed with /api and has the session
	// middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
