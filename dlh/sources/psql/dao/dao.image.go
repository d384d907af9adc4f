package dao

import (
	"context"
	"errors"

	"dlh/dlh/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageDAO struct {
	DB *gorm.DB
}

func NewImageDAO(db *gorm.DB) *ImageDAO {
	return &ImageDAO{DB: db}
}

func (dao *ImageDAO) CreateImage(ctx context.Context, img *models.GeneratedImage) error {
	return dao.DB.WithContext(ctx).Create(img).Error
}

func (dao *ImageDAO) GetImage(ctx context.Context, id uuid.UUID) (*models.GeneratedImage, error) {
	var img models.GeneratedImage
	err := dao.DB.WithContext(ctx).First(&img, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (dao *ImageDAO) ListImages(ctx context.Context, userID uuid.UUID) ([]models.GeneratedImage, error) {
	return dao.RecentImages(ctx, userID, -1)
}

func (dao *ImageDAO) RecentImages(ctx context.Context, userID uuid.UUID, limit int) ([]models.GeneratedImage, error) {
	var imgs []models.GeneratedImage
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&imgs).Error
	if err != nil {
		return nil, err
	}
	return imgs, nil
}

func (dao *ImageDAO) CountImages(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dao.DB.WithContext(ctx).Model(&models.GeneratedImage{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (dao *ImageDAO) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.GeneratedImage{}).Error
}
