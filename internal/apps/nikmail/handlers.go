package nikmail

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/config"
	"github.com/nikbrowser/backend/internal/middleware"
)

type mailActionRequest struct {
	Action    string `json:"action"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	EmailID   string `json:"email_id"`
	ToNikmail string `json:"to_nikmail"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

type MailHandler struct {
	mailService *MailService
	cfg         *config.Config
}

func NewMailHandler(mailService *MailService, cfg *config.Config) *MailHandler {
	return &MailHandler{mailService: mailService, cfg: cfg}
}

// List handles GET /mail?folder=&limit=.
func (h *MailHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "Требуется авторизация",
		})
	}

	folder := c.Query("folder", "inbox")
	limit := c.QueryInt("limit", 50)

	emails, err := h.mailService.List(user.ID, folder, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "emails": emails})
}

// Action dispatches POST /mail on the action field of the JSON body.
func (h *MailHandler) Action(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "Требуется авторизация",
		})
	}

	var req mailActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Некорректное тело запроса",
		})
	}

	switch req.Action {
	case "send":
		return h.send(c, &req)
	case "mark_read":
		return h.markRead(c, &req)
	case "toggle_star":
		return h.toggleStar(c, &req)
	case "archive":
		return h.archive(c, &req)
	case "system_send":
		return h.systemSend(c, &req)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Неизвестное действие",
		})
	}
}

func (h *MailHandler) send(c *fiber.Ctx, req *mailActionRequest) error {
	user := middleware.CurrentUser(c)

	emailID, err := h.mailService.Send(user, req.ToEmail, req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, ErrRecipientRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Письмо отправлено",
		"email_id": emailID,
	})
}

func (h *MailHandler) markRead(c *fiber.Ctx, req *mailActionRequest) error {
	user := middleware.CurrentUser(c)

	emailID, err := uuid.Parse(req.EmailID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Укажите ID письма",
		})
	}

	if err := h.mailService.MarkRead(user.ID, emailID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Помечено как прочитанное"})
}

func (h *MailHandler) toggleStar(c *fiber.Ctx, req *mailActionRequest) error {
	user := middleware.CurrentUser(c)

	emailID, err := uuid.Parse(req.EmailID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Укажите ID письма",
		})
	}

	isStarred, err := h.mailService.ToggleStar(user.ID, emailID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "is_starred": isStarred})
}

func (h *MailHandler) archive(c *fiber.Ctx, req *mailActionRequest) error {
	user := middleware.CurrentUser(c)

	emailID, err := uuid.Parse(req.EmailID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Укажите ID письма",
		})
	}

	if err := h.mailService.Archive(user.ID, emailID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Письмо архивировано"})
}

// systemSend requires the configured system capability key on top of the
// session. With no key configured the action is disabled entirely.
func (h *MailHandler) systemSend(c *fiber.Ctx, req *mailActionRequest) error {
	key := c.Get("X-System-Key")
	if h.cfg.SystemMailKey == "" ||
		subtle.ConstantTimeCompare([]byte(key), []byte(h.cfg.SystemMailKey)) != 1 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false, "error": "Недостаточно прав",
		})
	}

	emailID, err := h.mailService.SystemSend(req.ToNikmail, req.Subject, req.Body, req.FromEmail, req.FromName)
	if err != nil {
		if errors.Is(err, ErrMailboxNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false, "error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Письмо доставлено",
		"email_id": emailID,
	})
}
