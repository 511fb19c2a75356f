package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/models"
)

// SessionVerifier resolves an opaque session token to its user.
// Satisfied by services.AuthService.
type SessionVerifier interface {
	VerifySession(token string) (*models.User, error)
}

// RequireSession is the single session-token → user lookup shared by every
// authenticated route. The resolved user is stored in ctx locals.
func RequireSession(verifier SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Session-Token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "error": "Требуется авторизация",
			})
		}

		user, err := verifier.VerifySession(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "error": "Сессия истекла",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser extracts the authenticated user set by RequireSession.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals("user").(*models.User); ok {
		return user
	}
	return nil
}
