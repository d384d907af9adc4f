package dao

import (
	"context"

	"dlh/dlh/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleDAO struct {
	DB *gorm.DB
}

func NewRoleDAO(db *gorm.DB) *RoleDAO {
	return &RoleDAO{DB: db}
}

func (dao *RoleDAO) Roles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var roles []string
	err := dao.DB.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ?", userID).Order("role").Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (dao *RoleDAO) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var n int64
	err := dao.DB.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).Count(&n).Error
	return n > 0, err
}

func (dao *RoleDAO) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return dao.HasRole(ctx, userID, models.RoleAdmin)
}

// SetRole replaces every role of the user with role.
func (dao *RoleDAO) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserRole{UserID: userID, Role: role}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).Where("id = ?", userID).Update("user_type", role).Error
	})
}
