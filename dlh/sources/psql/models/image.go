package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeneratedImage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Profile   Profile   `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Prompt    string    `json:"prompt" gorm:"type:text;not null"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(1024);not null"`
	ObjectKey string    `json:"-" gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (GeneratedImage) TableName() string {
	return "generated_images"
}

func (g *GeneratedImage) BeforeCreate(tx *gorm.DB) error {
	assignID(&g.ID)
	return nil
}
