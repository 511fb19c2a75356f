package nikmail

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/config"
	"github.com/nikbrowser/backend/internal/models"
	"github.com/nikbrowser/backend/internal/scope"
	"gorm.io/gorm"
)

var (
	ErrRecipientRequired = errors.New("Укажите получателя")
	ErrMailboxNotFound   = errors.New("Пользователь не найден")
)

type MailService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewMailService(db *gorm.DB, cfg *config.Config) *MailService {
	return &MailService{db: db, cfg: cfg}
}

// List returns the caller's messages for a folder, newest first. The limit
// is honored as the caller supplied it; zero or negative means no cap.
func (s *MailService) List(userID uuid.UUID, folder string, limit int) ([]Email, error) {
	q := s.db.Scopes(scope.ForUser(userID), scope.MailFolder(folder)).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var emails []Email
	if err := q.Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// Send writes the sender's own read copy unconditionally and, when the
// address belongs to a registered internal mailbox, an unread copy for the
// recipient. An unknown recipient is not an error; the sender only ever
// sees their own copy.
func (s *MailService) Send(sender *models.User, toEmail, subject, body string) (uuid.UUID, error) {
	if toEmail == "" {
		return uuid.Nil, ErrRecipientRequired
	}

	fromName := sender.DisplayName
	if fromName == "" {
		fromName = strings.SplitN(sender.Nikmail, "@", 2)[0]
	}

	var sentID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if strings.HasSuffix(toEmail, "@"+s.cfg.MailDomain) {
			var recipient models.User
			err := tx.Where("nikmail = ?", toEmail).First(&recipient).Error
			switch {
			case err == nil:
				delivered := Email{
					ID:        uuid.New(),
					UserID:    recipient.ID,
					FromEmail: sender.Nikmail,
					FromName:  fromName,
					ToEmail:   toEmail,
					Subject:   subject,
					Body:      body,
				}
				if err := tx.Create(&delivered).Error; err != nil {
					return fmt.Errorf("failed to deliver email: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Unknown internal address: only the sender's copy is written.
			default:
				return err
			}
		}

		now := time.Now().UTC()
		sent := Email{
			ID:        uuid.New(),
			UserID:    sender.ID,
			FromEmail: sender.Nikmail,
			FromName:  "Я",
			ToEmail:   toEmail,
			Subject:   subject,
			Body:      body,
			IsRead:    true,
			ReadAt:    &now,
		}
		if err := tx.Create(&sent).Error; err != nil {
			return fmt.Errorf("failed to store sent copy: %w", err)
		}
		sentID = sent.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return sentID, nil
}

// MarkRead sets the read flag and timestamp, scoped to the caller. A
// message the caller does not own is left untouched without an error.
func (s *MailService) MarkRead(userID, emailID uuid.UUID) error {
	return s.db.Model(&Email{}).
		Scopes(scope.ForUser(userID)).
		Where("id = ?", emailID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		}).Error
}

// ToggleStar flips the star flag and returns the new value, or false when
// no owned row matched.
func (s *MailService) ToggleStar(userID, emailID uuid.UUID) (bool, error) {
	result := s.db.Model(&Email{}).
		Scopes(scope.ForUser(userID)).
		Where("id = ?", emailID).
		UpdateColumn("is_starred", gorm.Expr("NOT is_starred"))
	if result.Error != nil {
		return false, fmt.Errorf("failed to toggle star: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	var email Email
	if err := s.db.Select("is_starred").First(&email, "id = ?", emailID).Error; err != nil {
		return false, err
	}
	return email.IsStarred, nil
}

// Archive hides a message from the inbox without deleting it.
func (s *MailService) Archive(userID, emailID uuid.UUID) error {
	return s.db.Model(&Email{}).
		Scopes(scope.ForUser(userID)).
		Where("id = ?", emailID).
		Update("is_archived", true).Error
}

// SystemSend delivers straight into an internal mailbox by nikmail address.
// The transport layer gates this behind the system capability key.
func (s *MailService) SystemSend(toNikmail, subject, body, fromEmail, fromName string) (uuid.UUID, error) {
	if fromEmail == "" {
		fromEmail = "system@" + s.cfg.MailDomain
	}
	if fromName == "" {
		fromName = "NikMail Система"
	}

	var recipient models.User
	if err := s.db.Where("nikmail = ?", toNikmail).First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrMailboxNotFound
		}
		return uuid.Nil, err
	}

	email := Email{
		ID:        uuid.New(),
		UserID:    recipient.ID,
		FromEmail: fromEmail,
		FromName:  fromName,
		ToEmail:   toNikmail,
		Subject:   subject,
		Body:      body,
	}
	if err := s.db.Create(&email).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to deliver system email: %w", err)
	}
	return email.ID, nil
}

// SendWelcome seeds the first message of a new mailbox. Runs inside the
// registration transaction; satisfies services.WelcomeMailer.
func (s *MailService) SendWelcome(tx *gorm.DB, user *models.User) error {
	name := user.DisplayName
	if name == "" {
		name = strings.SplitN(user.Nikmail, "@", 2)[0]
	}

	email := Email{
		ID:        uuid.New(),
		UserID:    user.ID,
		FromEmail: "welcome@" + s.cfg.MailDomain,
		FromName:  "Команда NikMail",
		ToEmail:   user.Nikmail,
		Subject:   "Добро пожаловать в NikMail! 🎉",
		Body:      welcomeBody(name, user.Nikmail),
	}
	return tx.Create(&email).Error
}

func welcomeBody(name, nikmail string) string {
	return fmt.Sprintf(`Привет, %s!

Поздравляем с регистрацией в NikMail!

Ваш личный почтовый адрес: %s

Теперь вы можете:
📧 Отправлять и получать письма
⭐ Помечать важные сообщения
📦 Архивировать письма
🔍 Искать в интернете с сохранением истории

Все ваши данные надёжно защищены и хранятся на серверах.

Если у вас есть вопросы, просто ответьте на это письмо.

С уважением,
Команда NikMail 🚀
`, name, nikmail)
}
