package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/dto"
	"github.com/nikbrowser/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Handle dispatches POST /api/auth on the action field of the JSON body.
func (h *AuthHandler) Handle(c *fiber.Ctx) error {
	var req dto.AuthActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Некорректное тело запроса"})
	}

	switch req.Action {
	case "register":
		return h.register(c, &req)
	case "login":
		return h.login(c, &req)
	case "verify_session":
		return h.verifySession(c, &req)
	case "logout":
		return h.logout(c, &req)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Unknown action"})
	}
}

func (h *AuthHandler) register(c *fiber.Ctx, req *dto.AuthActionRequest) error {
	result, err := h.authService.Register(&services.RegisterRequest{
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if isValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.AuthResponse{
		Success:      true,
		User:         result.User,
		SessionToken: result.SessionToken,
		ExpiresAt:    result.ExpiresAt,
	})
}

func (h *AuthHandler) login(c *fiber.Ctx, req *dto.AuthActionRequest) error {
	if req.Login == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Укажите логин и пароль"})
	}

	result, err := h.authService.Login(req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.AuthResponse{
		Success:      true,
		User:         result.User,
		SessionToken: result.SessionToken,
		ExpiresAt:    result.ExpiresAt,
	})
}

func (h *AuthHandler) verifySession(c *fiber.Ctx, req *dto.AuthActionRequest) error {
	if req.SessionToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Session token required"})
	}

	user, err := h.authService.VerifySession(req.SessionToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid or expired session"})
	}

	return c.JSON(dto.VerifyResponse{Success: true, User: user})
}

func (h *AuthHandler) logout(c *fiber.Ctx, req *dto.AuthActionRequest) error {
	if req.SessionToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Session token required"})
	}

	if err := h.authService.Logout(req.SessionToken); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrPasswordTooShort) ||
		errors.Is(err, services.ErrContactRequired) ||
		errors.Is(err, services.ErrInvalidEmail) ||
		errors.Is(err, services.ErrInvalidPhone) ||
		errors.Is(err, services.ErrEmailTaken) ||
		errors.Is(err, services.ErrPhoneTaken)
}
