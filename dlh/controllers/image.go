package controllers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/sources/storage"
	"dlh/dlh/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxPromptLen = 1000

// ImageGenerator turns a prompt into encoded image bytes.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type ImageController struct {
	images    *dao.ImageDAO
	generator ImageGenerator
	store     storage.ObjectStore
}

func NewImageController(images *dao.ImageDAO, generator ImageGenerator, store storage.ObjectStore) *ImageController {
	return &ImageController{images: images, generator: generator, store: store}
}

func (c *ImageController) Generate(ctx context.Context, userID uuid.UUID, prompt string) (*models.GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, invalid("Prompt is required")
	}
	if len([]rune(prompt)) > maxPromptLen {
		return nil, invalid("prompt must be at most %d characters", maxPromptLen)
	}

	data, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	img := &models.GeneratedImage{ID: uuid.New(), UserID: userID, Prompt: prompt}
	img.ObjectKey = fmt.Sprintf("generated/%s/%s.png", userID, img.ID)
	url, err := c.store.Put(ctx, img.ObjectKey, bytes.NewReader(data), int64(len(data)), "image/png")
	if err != nil {
		return nil, err
	}
	img.ImageURL = url

	if err := c.images.CreateImage(ctx, img); err != nil {
		if rmErr := c.store.Remove(ctx, img.ObjectKey); rmErr != nil {
			logging.ErrorLogger.Error("orphaned generated image", zap.String("key", img.ObjectKey), zap.Error(rmErr))
		}
		return nil, err
	}
	return img, nil
}

func (c *ImageController) List(ctx context.Context, userID uuid.UUID) ([]models.GeneratedImage, error) {
	return c.images.ListImages(ctx, userID)
}

func (c *ImageController) Delete(ctx context.Context, userID, id uuid.UUID) error {
	img, err := c.images.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if img == nil || img.UserID != userID {
		return ErrNotFound
	}
	if err := c.store.Remove(ctx, img.ObjectKey); err != nil {
		logging.ErrorLogger.Error("failed to remove image object", zap.String("key", img.ObjectKey), zap.Error(err))
	}
	return c.images.DeleteImage(ctx, id)
}
