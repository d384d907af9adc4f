package dao

import (
	"context"
	"errors"
	"strings"

	"dlh/dlh/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultSessionTitle = "New Chat"
	titleLimit          = 50
)

type ChatDAO struct {
	DB *gorm.DB
}

func NewChatDAO(db *gorm.DB) *ChatDAO {
	return &ChatDAO{DB: db}
}

// DeriveTitle keeps the first 50 characters of the text, with an ellipsis when cut.
func DeriveTitle(content string) string {
	content = strings.TrimSpace(content)
	r := []rune(content)
	if len(r) <= titleLimit {
		return content
	}
	return string(r[:titleLimit]) + "..."
}

func (dao *ChatDAO) CreateSession(ctx context.Context, userID uuid.UUID, title string, courseID *string) (*models.ChatSession, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultSessionTitle
	}
	s := &models.ChatSession{UserID: userID, Title: title, CourseID: courseID}
	if err := dao.DB.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (dao *ChatDAO) GetSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	var s models.ChatSession
	err := dao.DB.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (dao *ChatDAO) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error) {
	return dao.RecentSessions(ctx, userID, -1)
}

// RecentSessions is ListSessions capped at limit rows; a negative limit means no cap.
func (dao *ChatDAO) RecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (dao *ChatDAO) CountSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dao.DB.WithContext(ctx).Model(&models.ChatSession{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// DeleteSession removes the session together with its messages.
func (dao *ChatDAO) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.ChatSession{}).Error
	})
}

// ListMessages returns the session's messages, oldest first.
func (dao *ChatDAO) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := dao.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// SaveMessage appends a message. The first user message of a session sets its
// title; later messages never change it.
func (dao *ChatDAO) SaveMessage(ctx context.Context, sessionID uuid.UUID, role, content string, interrupted bool) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		SessionID:   sessionID,
		Role:        role,
		Content:     content,
		Interrupted: interrupted,
	}
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s models.ChatSession
		if err := tx.First(&s, "id = ?", sessionID).Error; err != nil {
			return err
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": msg.CreatedAt}
		if role == models.MessageRoleUser && !s.Titled {
			updates["title"] = DeriveTitle(content)
			updates["titled"] = true
		}
		return tx.Model(&s).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}
