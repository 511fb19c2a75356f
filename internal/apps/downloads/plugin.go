package downloads

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/config"
	"gorm.io/gorm"
)

type DownloadsPlugin struct{}

func New() *DownloadsPlugin {
	return &DownloadsPlugin{}
}

func (p *DownloadsPlugin) ID() string { return "downloads" }

func (p *DownloadsPlugin) Models() []interface{} {
	return []interface{}{
		&Download{},
	}
}

func (p *DownloadsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewDownloadService(db)
	handler := NewDownloadHandler(svc)

	router.Get("/downloads", handler.List)
	router.Post("/downloads", handler.Add)
	router.Put("/downloads", handler.Update)
	router.Delete("/downloads", handler.Delete)
}
