package downloads

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/dto"
	"github.com/nikbrowser/backend/internal/middleware"
)

type addDownloadRequest struct {
	FileName string  `json:"file_name"`
	FileURL  string  `json:"file_url"`
	FileSize *int64  `json:"file_size"`
	FileType *string `json:"file_type"`
}

type updateDownloadRequest struct {
	ID          string `json:"id"`
	IsInstalled *bool  `json:"is_installed"`
}

type DownloadHandler struct {
	downloadService *DownloadService
}

func NewDownloadHandler(downloadService *DownloadService) *DownloadHandler {
	return &DownloadHandler{downloadService: downloadService}
}

// List handles GET /downloads.
func (h *DownloadHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Требуется авторизация"})
	}

	items, err := h.downloadService.List(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"downloads": items})
}

// Add handles POST /downloads.
func (h *DownloadHandler) Add(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Требуется авторизация"})
	}

	var req addDownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Некорректное тело запроса"})
	}

	item, err := h.downloadService.Add(user.ID, req.FileName, req.FileURL, req.FileSize, req.FileType)
	if err != nil {
		if errors.Is(err, ErrFileRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "download": item})
}

// Update handles PUT /downloads.
func (h *DownloadHandler) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Требуется авторизация"})
	}

	var req updateDownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Некорректное тело запроса"})
	}

	downloadID, err := uuid.Parse(req.ID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Укажите ID загрузки"})
	}

	item, err := h.downloadService.SetInstalled(user.ID, downloadID, req.IsInstalled)
	if err != nil {
		if errors.Is(err, ErrDownloadNotFound) || errors.Is(err, ErrNothingToUpdate) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: ErrDownloadNotFound.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "download": item})
}

// Delete handles DELETE /downloads?id=.
func (h *DownloadHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Требуется авторизация"})
	}

	downloadID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Укажите ID загрузки"})
	}

	if err := h.downloadService.SoftDelete(user.ID, downloadID); err != nil {
		if errors.Is(err, ErrDownloadNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}
