package searchhistory

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/config"
	"gorm.io/gorm"
)

type SearchHistoryPlugin struct{}

func New() *SearchHistoryPlugin {
	return &SearchHistoryPlugin{}
}

func (p *SearchHistoryPlugin) ID() string { return "searchhistory" }

func (p *SearchHistoryPlugin) Models() []interface{} {
	return []interface{}{
		&SearchHistory{},
	}
}

func (p *SearchHistoryPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewHistoryService(db)
	handler := NewHistoryHandler(svc)

	router.Get("/search-history", handler.List)
	router.Post("/search-history", handler.Action)
}
