package dto

import (
	"time"

	"github.com/nikbrowser/backend/internal/models"
)

// AuthActionRequest is the single body shape of POST /api/auth; the action
// field selects which of the remaining fields are read.
type AuthActionRequest struct {
	Action       string `json:"action"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
	Login        string `json:"login"`
	SessionToken string `json:"session_token"`
}

type AuthResponse struct {
	Success      bool         `json:"success"`
	User         *models.User `json:"user"`
	SessionToken string       `json:"session_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

type VerifyResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
