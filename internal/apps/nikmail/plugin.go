package nikmail

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/config"
	"gorm.io/gorm"
)

type NikmailPlugin struct {
	mailService *MailService
}

func New(mailService *MailService) *NikmailPlugin {
	return &NikmailPlugin{mailService: mailService}
}

func (p *NikmailPlugin) ID() string { return "nikmail" }

func (p *NikmailPlugin) Models() []interface{} {
	return []interface{}{
		&Email{},
	}
}

func (p *NikmailPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewMailHandler(p.mailService, cfg)

	router.Get("/mail", handler.List)
	router.Post("/mail", handler.Action)
}
