package dao

import (
	"context"
	"errors"
	"strings"

	"dlh/dlh/sources/psql/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingDAO struct {
	DB *gorm.DB
}

func NewSettingDAO(db *gorm.DB) *SettingDAO {
	return &SettingDAO{DB: db}
}

// Get returns ("", false, nil) when the key has never been written.
func (dao *SettingDAO) Get(ctx context.Context, key string) (string, bool, error) {
	var s models.AdminSetting
	err := dao.DB.WithContext(ctx).Where(&models.AdminSetting{Key: key}).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value, true, nil
}

func (dao *SettingDAO) Upsert(ctx context.Context, key, value string) error {
	return dao.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.AdminSetting{Key: key, Value: value}).Error
}

// BotKnowledge is the free-text knowledge blob mixed into the tutor prompt.
func (dao *SettingDAO) BotKnowledge(ctx context.Context) (string, error) {
	v, _, err := dao.Get(ctx, models.SettingBotKnowledge)
	return v, err
}

func (dao *SettingDAO) SetBotKnowledge(ctx context.Context, value string) error {
	return dao.Upsert(ctx, models.SettingBotKnowledge, value)
}

// AppendBotKnowledge adds text as a new paragraph and returns the stored result.
func (dao *SettingDAO) AppendBotKnowledge(ctx context.Context, text string) (string, error) {
	var out string
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txDAO := &SettingDAO{DB: tx}
		current, err := txDAO.BotKnowledge(ctx)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(text)
		if current = strings.TrimSpace(current); current != "" {
			out = current + "\n\n" + out
		}
		return txDAO.SetBotKnowledge(ctx, out)
	})
	return out, err
}
