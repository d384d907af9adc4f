package dao

import (
	"context"
	"errors"
	"strings"

	"dlh/dlh/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileDAO struct {
	DB *gorm.DB
}

func NewProfileDAO(db *gorm.DB) *ProfileDAO {
	return &ProfileDAO{DB: db}
}

func (dao *ProfileDAO) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := dao.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (dao *ProfileDAO) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := dao.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts the profile and its initial role in one transaction.
func (dao *ProfileDAO) CreateProfile(ctx context.Context, p *models.Profile, role string) error {
	p.Email = NormalizeEmail(p.Email)
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: p.ID, Role: role}).Error
	})
}

func (dao *ProfileDAO) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return dao.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error
}

// SearchProfiles matches q case-insensitively against name and email. Empty q lists everyone.
func (dao *ProfileDAO) SearchProfiles(ctx context.Context, q string) ([]models.Profile, error) {
	var profiles []models.Profile
	db := dao.DB.WithContext(ctx)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if err := db.Order("created_at desc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (dao *ProfileDAO) ToggleSuspended(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return dao.toggle(ctx, id, "is_suspended", func(p *models.Profile) bool { return p.IsSuspended })
}

func (dao *ProfileDAO) ToggleVerified(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return dao.toggle(ctx, id, "is_verified", func(p *models.Profile) bool { return p.IsVerified })
}

func (dao *ProfileDAO) toggle(ctx context.Context, id uuid.UUID, column string, current func(*models.Profile) bool) (*models.Profile, error) {
	var out *models.Profile
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Profile
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&p).Update(column, !current(&p)).Error; err != nil {
			return err
		}
		out = &p
		return tx.First(out, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return out, err
}

// DeleteProfile removes the profile and everything it owns.
func (dao *ProfileDAO) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := tx.Model(&models.ChatSession{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("session_id IN (?)", sessions).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&models.ChatSession{}, &models.GeneratedImage{}, &models.UserRole{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Profile{}).Error
	})
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
