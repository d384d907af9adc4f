package models

import "time"

const SettingBotKnowledge = "bot_knowledge"

// AdminSetting is a single key/value row edited from the admin back-office.
type AdminSetting struct {
	Key       string    `json:"key" gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value" gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AdminSetting) TableName() string {
	return "admin_settings"
}
