package controllers

import (
	"context"
	"strings"

	"dlh/dlh/config"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/utils/logging"
	"dlh/dlh/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CourseController struct {
	courses *dao.CourseDAO
	catalog []config.CourseEntry
}

func NewCourseController(courses *dao.CourseDAO, catalog []config.CourseEntry) *CourseController {
	return &CourseController{courses: courses, catalog: catalog}
}

func (c *CourseController) ListPublished(ctx context.Context, category, q string) ([]models.Course, error) {
	return c.courses.ListPublished(ctx, dao.CourseFilter{Category: category, Query: q})
}

// GetPublished hides drafts from the public catalog.
func (c *CourseController) GetPublished(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := c.courses.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil || !course.IsPublished {
		return nil, ErrNotFound
	}
	return course, nil
}

func (c *CourseController) ListAll(ctx context.Context) ([]models.Course, error) {
	return c.courses.ListAll(ctx)
}

func (c *CourseController) Create(ctx context.Context, tutorID uuid.UUID, req types.CourseRequest) (*models.Course, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, invalid("title is required")
	}
	course := &models.Course{
		Title:       strings.TrimSpace(*req.Title),
		IsPublished: true,
		TutorID:     &tutorID,
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = strings.TrimSpace(*req.Category)
	}
	if req.ImageURL != nil {
		course.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if err := c.courses.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (c *CourseController) Update(ctx context.Context, id uuid.UUID, req types.CourseRequest) (*models.Course, error) {
	existing, err := c.courses.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, invalid("title is required")
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if len(updates) > 0 {
		if err := c.courses.UpdateCourse(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return c.courses.GetCourse(ctx, id)
}

func (c *CourseController) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := c.courses.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return c.courses.DeleteCourse(ctx, id)
}

// Seed publishes the configured catalog, skipping titles that already exist.
func (c *CourseController) Seed(ctx context.Context, tutorID uuid.UUID) (*types.SeedResponse, error) {
	rows := make([]models.Course, 0, len(c.catalog))
	for _, e := range c.catalog {
		rows = append(rows, models.Course{
			Title:       e.Title,
			Description: e.Description,
			Category:    e.Category,
			ImageURL:    e.ImageURL,
			IsPublished: true,
			TutorID:     &tutorID,
		})
	}
	added, err := c.courses.SeedCourses(ctx, rows)
	if err != nil {
		return nil, err
	}
	logging.AppLogger.Info("seeded courses", zap.Int("added", added), zap.Int("catalog", len(rows)))
	return &types.SeedResponse{Added: added}, nil
}
