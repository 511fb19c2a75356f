package searchhistory

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/dto"
	"github.com/nikbrowser/backend/internal/middleware"
)

type historyActionRequest struct {
	Action       string `json:"action"`
	SearchQuery  string `json:"search_query"`
	SearchEngine string `json:"search_engine"`
	IsIncognito  bool   `json:"is_incognito"`
	Limit        int    `json:"limit"`
}

type HistoryHandler struct {
	historyService *HistoryService
}

func NewHistoryHandler(historyService *HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List handles GET /search-history?limit=.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Требуется авторизация"})
	}

	entries, err := h.historyService.Get(user.ID, c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "history": entries})
}

// Action dispatches POST /search-history on the action field.
func (h *HistoryHandler) Action(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Требуется авторизация"})
	}

	var req historyActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Некорректное тело запроса"})
	}

	switch req.Action {
	case "add":
		return h.add(c, &req)
	case "get":
		entries, err := h.historyService.Get(user.ID, req.Limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "history": entries})
	case "clear":
		if err := h.historyService.Clear(user.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "message": "History cleared"})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Unknown action"})
	}
}

func (h *HistoryHandler) add(c *fiber.Ctx, req *historyActionRequest) error {
	user := middleware.CurrentUser(c)

	// The query is validated before anything else; an empty incognito
	// search is still a bad request, not a silent success.
	if strings.TrimSpace(req.SearchQuery) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrQueryRequired.Error()})
	}

	// Incognito searches are acknowledged but never persisted.
	if req.IsIncognito {
		return c.JSON(fiber.Map{"success": true, "message": "Incognito mode - not saved"})
	}

	entry, err := h.historyService.Add(user.ID, req.SearchQuery, req.SearchEngine)
	if err != nil {
		if errors.Is(err, ErrQueryRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "history": entry})
}
