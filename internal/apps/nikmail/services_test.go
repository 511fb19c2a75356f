package nikmail

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nikbrowser/backend/internal/config"
	"github.com/nikbrowser/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*MailService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &Email{}))

	cfg := &config.Config{MailDomain: "nikmail.ru", SystemMailKey: "test-key"}
	return NewMailService(db, cfg), db
}

func createUser(t *testing.T, db *gorm.DB, nikmail, displayName string) *models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.New(),
		Nikmail:      nikmail,
		PasswordHash: "x",
		DisplayName:  displayName,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestSendToInternalRecipient(t *testing.T) {
	svc, db := newTestService(t)
	sender := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")
	recipient := createUser(t, db, "olga3c4d@nikmail.ru", "Ольга")

	sentID, err := svc.Send(sender, recipient.Nikmail, "Привет", "Как дела?")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, sentID)

	// Recipient gets an unread copy attributed to the sender.
	var delivered Email
	require.NoError(t, db.First(&delivered, "user_id = ?", recipient.ID).Error)
	assert.Equal(t, sender.Nikmail, delivered.FromEmail)
	assert.Equal(t, "Иван", delivered.FromName)
	assert.Equal(t, "Привет", delivered.Subject)
	assert.False(t, delivered.IsRead)
	assert.Nil(t, delivered.ReadAt)

	// Sender keeps an already-read copy of their own.
	var sent Email
	require.NoError(t, db.First(&sent, "id = ?", sentID).Error)
	assert.Equal(t, sender.ID, sent.UserID)
	assert.Equal(t, "Я", sent.FromName)
	assert.True(t, sent.IsRead)
	require.NotNil(t, sent.ReadAt)
}

func TestSendToUnknownAddress(t *testing.T) {
	svc, db := newTestService(t)
	sender := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	for _, to := range []string{"nobody5e6f@nikmail.ru", "someone@gmail.com"} {
		_, err := svc.Send(sender, to, "Тема", "Текст")
		require.NoError(t, err)
	}

	// Only the two sender copies exist; nothing was delivered anywhere.
	var count int64
	require.NoError(t, db.Model(&Email{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var emails []Email
	require.NoError(t, db.Find(&emails).Error)
	for _, e := range emails {
		assert.Equal(t, sender.ID, e.UserID)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	svc, db := newTestService(t)
	sender := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	_, err := svc.Send(sender, "", "Тема", "Текст")
	assert.ErrorIs(t, err, ErrRecipientRequired)
}

func TestSendFromNameFallsBackToLocalPart(t *testing.T) {
	svc, db := newTestService(t)
	sender := createUser(t, db, "ivan1a2b@nikmail.ru", "")
	recipient := createUser(t, db, "olga3c4d@nikmail.ru", "Ольга")

	_, err := svc.Send(sender, recipient.Nikmail, "Тема", "Текст")
	require.NoError(t, err)

	var delivered Email
	require.NoError(t, db.First(&delivered, "user_id = ?", recipient.ID).Error)
	assert.Equal(t, "ivan1a2b", delivered.FromName)
}

func TestListFolders(t *testing.T) {
	svc, db := newTestService(t)
	user := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	seed := []Email{
		{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail, Subject: "plain"},
		{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail, Subject: "starred", IsStarred: true},
		{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail, Subject: "archived", IsArchived: true},
		{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail, Subject: "starred+archived", IsStarred: true, IsArchived: true},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	subjects := func(emails []Email) []string {
		out := make([]string, 0, len(emails))
		for _, e := range emails {
			out = append(out, e.Subject)
		}
		return out
	}

	inbox, err := svc.List(user.ID, "inbox", 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plain", "starred"}, subjects(inbox))

	starred, err := svc.List(user.ID, "starred", 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"starred"}, subjects(starred))

	archived, err := svc.List(user.ID, "archived", 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"archived", "starred+archived"}, subjects(archived))

	all, err := svc.List(user.ID, "all", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListIsScopedToOwner(t *testing.T) {
	svc, db := newTestService(t)
	owner := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")
	other := createUser(t, db, "olga3c4d@nikmail.ru", "Ольга")

	require.NoError(t, db.Create(&Email{
		ID: uuid.New(), UserID: other.ID, FromEmail: "a@x.ru", ToEmail: other.Nikmail,
	}).Error)

	emails, err := svc.List(owner.ID, "inbox", 50)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestMarkRead(t *testing.T) {
	svc, db := newTestService(t)
	user := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	email := Email{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail}
	require.NoError(t, db.Create(&email).Error)

	require.NoError(t, svc.MarkRead(user.ID, email.ID))

	var got Email
	require.NoError(t, db.First(&got, "id = ?", email.ID).Error)
	assert.True(t, got.IsRead)
	require.NotNil(t, got.ReadAt)
	assert.WithinDuration(t, time.Now(), *got.ReadAt, time.Minute)

	// Someone else's message stays untouched, silently.
	other := createUser(t, db, "olga3c4d@nikmail.ru", "Ольга")
	require.NoError(t, svc.MarkRead(other.ID, email.ID))
	require.NoError(t, db.First(&got, "id = ?", email.ID).Error)
	assert.True(t, got.IsRead)
}

func TestToggleStar(t *testing.T) {
	svc, db := newTestService(t)
	user := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	email := Email{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail}
	require.NoError(t, db.Create(&email).Error)

	starred, err := svc.ToggleStar(user.ID, email.ID)
	require.NoError(t, err)
	assert.True(t, starred)

	starred, err = svc.ToggleStar(user.ID, email.ID)
	require.NoError(t, err)
	assert.False(t, starred)

	// Toggling a message the caller does not own is a no-op reported as false.
	other := createUser(t, db, "olga3c4d@nikmail.ru", "Ольга")
	starred, err = svc.ToggleStar(other.ID, email.ID)
	require.NoError(t, err)
	assert.False(t, starred)

	var got Email
	require.NoError(t, db.First(&got, "id = ?", email.ID).Error)
	assert.False(t, got.IsStarred)
}

func TestArchive(t *testing.T) {
	svc, db := newTestService(t)
	user := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	email := Email{ID: uuid.New(), UserID: user.ID, FromEmail: "a@x.ru", ToEmail: user.Nikmail}
	require.NoError(t, db.Create(&email).Error)

	require.NoError(t, svc.Archive(user.ID, email.ID))

	inbox, err := svc.List(user.ID, "inbox", 50)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	archived, err := svc.List(user.ID, "archived", 50)
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestSystemSend(t *testing.T) {
	svc, db := newTestService(t)
	user := createUser(t, db, "ivan1a2b@nikmail.ru", "Иван")

	id, err := svc.SystemSend(user.Nikmail, "Обновление", "Текст", "", "")
	require.NoError(t, err)

	var got Email
	require.NoError(t, db.First(&got, "id = ?", id).Error)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "system@nikmail.ru", got.FromEmail)
	assert.Equal(t, "NikMail Система", got.FromName)
	assert.False(t, got.IsRead)

	_, err = svc.SystemSend("nobody@nikmail.ru", "Тема", "Текст", "", "")
	assert.ErrorIs(t, err, ErrMailboxNotFound)
}

func TestSendWelcome(t *testing.T) {
	svc, db := newTestService(t)
	user := createUser(t, db, "anna5e6f@nikmail.ru", "Анна")

	require.NoError(t, svc.SendWelcome(db, user))

	var got Email
	require.NoError(t, db.First(&got, "user_id = ?", user.ID).Error)
	assert.Equal(t, "welcome@nikmail.ru", got.FromEmail)
	assert.Equal(t, "Команда NikMail", got.FromName)
	assert.Contains(t, got.Body, "Анна")
	assert.Contains(t, got.Body, user.Nikmail)
	assert.False(t, got.IsRead)
}
