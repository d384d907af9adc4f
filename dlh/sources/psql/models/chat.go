package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type ChatSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Profile   Profile   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Titled    bool      `json:"-" gorm:"not null;default:false"`
	CourseID  *string   `json:"course_id,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

type ChatMessage struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID   `json:"session_id" gorm:"type:uuid;not null;index"`
	Session     ChatSession `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE"`
	Role        string      `json:"role" gorm:"type:varchar(50);not null"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	Interrupted bool        `json:"interrupted" gorm:"not null;default:false"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
