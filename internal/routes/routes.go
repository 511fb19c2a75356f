package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/apps"
	"github.com/nikbrowser/backend/internal/config"
	"github.com/nikbrowser/backend/internal/handlers"
	"github.com/nikbrowser/backend/internal/middleware"
	"github.com/nikbrowser/backend/internal/services"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	authService *services.AuthService,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// Health (no auth required)
	api.Get("/health", healthHandler.Check)

	// Identity — single action-dispatch endpoint, public
	api.Post("/auth", authHandler.Handle)

	// Feature apps sit behind the shared session middleware; every
	// authenticated route resolves the caller the same way.
	protected := api.Group("", middleware.RequireSession(authService))
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, cfg)
	}
}
