package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/nikbrowser/backend/internal/apps"
	"github.com/nikbrowser/backend/internal/apps/downloads"
	"github.com/nikbrowser/backend/internal/apps/nikmail"
	"github.com/nikbrowser/backend/internal/apps/searchhistory"
	"github.com/nikbrowser/backend/internal/config"
	"github.com/nikbrowser/backend/internal/handlers"
	"github.com/nikbrowser/backend/internal/models"
	"github.com/nikbrowser/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the whole stack against an in-memory database, the same
// way cmd/server does against Postgres.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.UserSettings{},
	))

	cfg := &config.Config{
		SessionTTL:    30 * 24 * time.Hour,
		MailDomain:    "nikmail.ru",
		SystemMailKey: "system-test-key",
		CORSOrigins:   "*",
	}

	mailService := nikmail.NewMailService(db, cfg)
	authService := services.NewAuthService(db, cfg, mailService)

	plugins := []apps.Plugin{
		nikmail.New(mailService),
		downloads.New(),
		searchhistory.New(),
	}
	for _, p := range plugins {
		require.NoError(t, db.AutoMigrate(p.Models()...))
	}

	app := fiber.New()
	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewHealthHandler(db),
		authService,
		plugins)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"action":   "register",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["session_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "flow@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"action": "verify_session", "session_token": token,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"action": "login", "login": "flow@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["session_token"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"action": "logout", "session_token": token,
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"action": "verify_session", "session_token": token,
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/auth", "", fiber.Map{
		"action": "self_destruct",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unknown action", body["error"])
}

func TestProtectedRoutesRejectWithoutToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/mail", "/api/downloads", "/api/search-history"} {
		status, body := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "Требуется авторизация", body["error"], path)
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/mail", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Сессия истекла", body["error"])
}

func TestMailOverTheWire(t *testing.T) {
	app := newTestApp(t)
	senderToken := register(t, app, "sender@example.com")
	recipientToken := register(t, app, "recipient@example.com")

	// Registration seeds the welcome message.
	status, body := doJSON(t, app, http.MethodGet, "/api/mail", recipientToken, nil)
	require.Equal(t, http.StatusOK, status)
	emails := body["emails"].([]interface{})
	require.Len(t, emails, 1)
	welcome := emails[0].(map[string]interface{})
	assert.Equal(t, "welcome@nikmail.ru", welcome["from_email"])
	recipientAddr := welcome["to_email"].(string)

	// Internal send: recipient's inbox grows, sender sees a read copy.
	status, body = doJSON(t, app, http.MethodPost, "/api/mail", senderToken, fiber.Map{
		"action": "send", "to_email": recipientAddr, "subject": "Привет", "body": "Текст",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = doJSON(t, app, http.MethodGet, "/api/mail", recipientToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["emails"].([]interface{}), 2)

	status, body = doJSON(t, app, http.MethodGet, "/api/mail", senderToken, nil)
	require.Equal(t, http.StatusOK, status)
	var sentCopy map[string]interface{}
	for _, e := range body["emails"].([]interface{}) {
		email := e.(map[string]interface{})
		if email["to_email"] == recipientAddr {
			sentCopy = email
		}
	}
	require.NotNil(t, sentCopy)
	assert.Equal(t, "Я", sentCopy["from_name"])
	assert.Equal(t, true, sentCopy["is_read"])
}

func TestSystemSendRequiresKey(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "target@example.com")

	status, body := doJSON(t, app, http.MethodGet, "/api/mail", token, nil)
	require.Equal(t, http.StatusOK, status)
	addr := body["emails"].([]interface{})[0].(map[string]interface{})["to_email"].(string)

	// Session alone is not enough.
	status, body = doJSON(t, app, http.MethodPost, "/api/mail", token, fiber.Map{
		"action": "system_send", "to_nikmail": addr, "subject": "s", "body": "b",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Недостаточно прав", body["error"])

	// With the capability key the delivery goes through.
	b, err := json.Marshal(fiber.Map{
		"action": "system_send", "to_nikmail": addr, "subject": "Новости", "body": "Текст",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/mail", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Token", token)
	req.Header.Set("X-System-Key", "system-test-key")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDownloadsOverTheWire(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "dl@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/downloads", token, fiber.Map{
		"file_name": "report.pdf", "file_url": "https://example.com/report.pdf",
	})
	require.Equal(t, http.StatusOK, status)
	item := body["download"].(map[string]interface{})
	id := item["id"].(string)
	assert.Equal(t, "completed", item["download_status"])

	status, body = doJSON(t, app, http.MethodPut, "/api/downloads", token, fiber.Map{
		"id": id, "is_installed": true,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["download"].(map[string]interface{})["is_installed"])

	status, body = doJSON(t, app, http.MethodDelete, "/api/downloads?id="+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	// The deleted row stays listed with the new status.
	status, body = doJSON(t, app, http.MethodGet, "/api/downloads", token, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["downloads"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "deleted", items[0].(map[string]interface{})["download_status"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/downloads?id=not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchHistoryOverTheWire(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "search@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/search-history", token, fiber.Map{
		"action": "add", "search_query": "golang fiber",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	// Incognito searches are acknowledged but never stored.
	status, body = doJSON(t, app, http.MethodPost, "/api/search-history", token, fiber.Map{
		"action": "add", "search_query": "секрет", "is_incognito": true,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Incognito mode - not saved", body["message"])

	// An empty query is rejected before the incognito acknowledgement.
	for _, incognito := range []bool{false, true} {
		status, body = doJSON(t, app, http.MethodPost, "/api/search-history", token, fiber.Map{
			"action": "add", "search_query": "   ", "is_incognito": incognito,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Search query required", body["error"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/search-history", token, nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["history"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "golang fiber", entries[0].(map[string]interface{})["search_query"])

	status, body = doJSON(t, app, http.MethodPost, "/api/search-history", token, fiber.Map{
		"action": "clear",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "History cleared", body["message"])

	status, body = doJSON(t, app, http.MethodGet, "/api/search-history", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["history"])
}
