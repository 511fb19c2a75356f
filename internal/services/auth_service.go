package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/config"
	"github.com/nikbrowser/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordTooShort   = errors.New("Пароль должен содержать минимум 6 символов")
	ErrContactRequired    = errors.New("Укажите email или номер телефона")
	ErrInvalidEmail       = errors.New("Некорректный email")
	ErrInvalidPhone       = errors.New("Некорректный номер телефона")
	ErrEmailTaken         = errors.New("Email уже зарегистрирован")
	ErrPhoneTaken         = errors.New("Телефон уже зарегистрирован")
	ErrInvalidCredentials = errors.New("Неверный логин или пароль")
	ErrSessionInvalid     = errors.New("Invalid or expired session")
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "")
)

// WelcomeMailer seeds the first message of a freshly created mailbox.
// Implemented by the nikmail app; injected so registration does not reach
// into mail internals. The transaction keeps registration atomic.
type WelcomeMailer interface {
	SendWelcome(tx *gorm.DB, user *models.User) error
}

type RegisterRequest struct {
	Email       string
	Phone       string
	Password    string
	DisplayName string
}

// AuthResult is what register and login hand back to the transport layer.
type AuthResult struct {
	User         *models.User
	SessionToken string
	ExpiresAt    time.Time
}

type AuthService struct {
	db      *gorm.DB
	cfg     *config.Config
	welcome WelcomeMailer
}

func NewAuthService(db *gorm.DB, cfg *config.Config, welcome WelcomeMailer) *AuthService {
	return &AuthService{db: db, cfg: cfg, welcome: welcome}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResult, error) {
	if len(req.Password) < 6 {
		return nil, ErrPasswordTooShort
	}
	if req.Email == "" && req.Phone == "" {
		return nil, ErrContactRequired
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}
	if req.Phone != "" && !phonePattern.MatchString(phoneStrip.Replace(req.Phone)) {
		return nil, ErrInvalidPhone
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var result AuthResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Email != "" {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrEmailTaken
			}
		}
		if req.Phone != "" {
			var count int64
			if err := tx.Model(&models.User{}).Where("phone = ?", req.Phone).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrPhoneTaken
			}
		}

		nikmail, err := s.generateNikmail(tx, req.Email, req.Phone)
		if err != nil {
			return err
		}

		user := models.User{
			ID:           uuid.New(),
			Nikmail:      nikmail,
			PasswordHash: string(hash),
			DisplayName:  req.DisplayName,
			IsActive:     true,
		}
		if req.Email != "" {
			user.Email = &req.Email
		}
		if req.Phone != "" {
			user.Phone = &req.Phone
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		settings := models.UserSettings{
			ID:                  uuid.New(),
			UserID:              user.ID,
			DarkMode:            false,
			DefaultSearchEngine: "google",
		}
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("failed to create settings: %w", err)
		}

		session, token, err := s.createSession(tx, user.ID)
		if err != nil {
			return err
		}

		if s.welcome != nil {
			if err := s.welcome.SendWelcome(tx, &user); err != nil {
				return fmt.Errorf("failed to seed welcome mail: %w", err)
			}
		}

		result = AuthResult{User: &user, SessionToken: token, ExpiresAt: session.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Login matches an active user by email or phone. Unknown login and wrong
// password produce the same error so callers cannot enumerate accounts.
func (s *AuthService) Login(login, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.Where("(email = ? OR phone = ?) AND is_active = ?", login, login, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	var result AuthResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&user).Update("last_login", now).Error; err != nil {
			return err
		}
		session, token, err := s.createSession(tx, user.ID)
		if err != nil {
			return err
		}
		result = AuthResult{User: &user, SessionToken: token, ExpiresAt: session.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifySession resolves a session token to its user. Valid means the
// session is unexpired and the owner is still active.
func (s *AuthService) VerifySession(token string) (*models.User, error) {
	var session models.Session
	err := s.db.Where("session_token = ? AND expires_at > ?", token, time.Now().UTC()).First(&session).Error
	if err != nil {
		return nil, ErrSessionInvalid
	}

	var user models.User
	err = s.db.Where("id = ? AND is_active = ?", session.UserID, true).First(&user).Error
	if err != nil {
		return nil, ErrSessionInvalid
	}
	return &user, nil
}

// Logout expires the named session immediately. Idempotent; an unknown
// token is not an error.
func (s *AuthService) Logout(token string) error {
	return s.db.Model(&models.Session{}).
		Where("session_token = ?", token).
		Update("expires_at", time.Now().UTC()).Error
}

func (s *AuthService) createSession(tx *gorm.DB, userID uuid.UUID) (*models.Session, string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return nil, "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(rawBytes)

	session := models.Session{
		ID:           uuid.New(),
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    time.Now().UTC().Add(s.cfg.SessionTTL),
	}
	if err := tx.Create(&session).Error; err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}
	return &session, token, nil
}

// generateNikmail derives the internal address from the email local part,
// the last digits of the phone, or a random base, plus a random suffix.
// Retries on the rare suffix collision.
func (s *AuthService) generateNikmail(tx *gorm.DB, email, phone string) (string, error) {
	var base string
	switch {
	case email != "":
		base = strings.SplitN(email, "@", 2)[0]
	case phone != "":
		digits := phoneStrip.Replace(strings.TrimPrefix(phone, "+"))
		if len(digits) > 6 {
			digits = digits[len(digits)-6:]
		}
		base = digits
	default:
		base = randomHex(4)
	}

	for attempt := 0; attempt < 5; attempt++ {
		addr := base + randomHex(2) + "@" + s.cfg.MailDomain
		var count int64
		if err := tx.Model(&models.User{}).Where("nikmail = ?", addr).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return addr, nil
		}
	}
	return "", errors.New("failed to allocate a unique nikmail address")
}

// randomHex returns 2*n hex characters from crypto/rand.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
