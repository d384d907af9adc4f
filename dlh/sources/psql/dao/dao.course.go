package dao

import (
	"context"
	"errors"
	"strings"

	"dlh/dlh/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseDAO struct {
	DB *gorm.DB
}

func NewCourseDAO(db *gorm.DB) *CourseDAO {
	return &CourseDAO{DB: db}
}

type CourseFilter struct {
	Category string
	Query    string
}

// ListPublished returns published courses, newest first.
func (dao *CourseDAO) ListPublished(ctx context.Context, f CourseFilter) ([]models.Course, error) {
	db := dao.DB.WithContext(ctx).Where("is_published = ?", true)
	if c := strings.TrimSpace(f.Category); c != "" {
		db = db.Where("category = ?", c)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var courses []models.Course
	if err := db.Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (dao *CourseDAO) ListAll(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := dao.DB.WithContext(ctx).Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (dao *CourseDAO) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var c models.Course
	err := dao.DB.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (dao *CourseDAO) CreateCourse(ctx context.Context, c *models.Course) error {
	return dao.DB.WithContext(ctx).Create(c).Error
}

func (dao *CourseDAO) UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return dao.DB.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(updates).Error
}

func (dao *CourseDAO) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	return dao.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Course{}).Error
}

// SeedCourses inserts the courses whose title is not present yet and returns how many were added.
func (dao *CourseDAO) SeedCourses(ctx context.Context, courses []models.Course) (int, error) {
	added := 0
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&models.Course{}).Pluck("title", &existing).Error; err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, t := range existing {
			seen[t] = true
		}
		for i := range courses {
			if seen[courses[i].Title] {
				continue
			}
			if err := tx.Create(&courses[i]).Error; err != nil {
				return err
			}
			seen[courses[i].Title] = true
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
