package controllers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/sources/storage"
	"dlh/dlh/utils/types"

	"github.com/google/uuid"
)

const (
	MaxAvatarBytes = 5 << 20
	recentLimit    = 5
)

type UserController struct {
	profiles *dao.ProfileDAO
	roles    *dao.RoleDAO
	chats    *dao.ChatDAO
	images   *dao.ImageDAO
	store    storage.ObjectStore
}

func NewUserController(profiles *dao.ProfileDAO, roles *dao.RoleDAO, chats *dao.ChatDAO, images *dao.ImageDAO, store storage.ObjectStore) *UserController {
	return &UserController{profiles: profiles, roles: roles, chats: chats, images: images, store: store}
}

func (c *UserController) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := c.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (c *UserController) UpdateProfile(ctx context.Context, id uuid.UUID, req types.UpdateProfileRequest) (*models.Profile, error) {
	updates := profileUpdates(req)
	if name, ok := updates["full_name"]; ok && strings.TrimSpace(name.(string)) == "" {
		return nil, invalid("full_name cannot be empty")
	}
	if len(updates) > 0 {
		if err := c.profiles.UpdateProfile(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return c.GetProfile(ctx, id)
}

func profileUpdates(req types.UpdateProfileRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	set("full_name", req.FullName)
	set("course_of_interest", req.CourseOfInterest)
	set("phone_number", req.PhoneNumber)
	set("country", req.Country)
	set("gender", req.Gender)
	return updates
}

// Avatar is an uploaded image as received from the multipart form.
type Avatar struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadAvatar replaces the user's avatar object and points the profile at it.
func (c *UserController) UploadAvatar(ctx context.Context, id uuid.UUID, a Avatar) (*models.Profile, error) {
	if !strings.HasPrefix(a.ContentType, "image/") {
		return nil, invalid("avatar must be an image")
	}
	if a.Size <= 0 || a.Size > MaxAvatarBytes {
		return nil, invalid("avatar must be smaller than 5 MB")
	}

	key := fmt.Sprintf("avatars/%s/avatar%s", id, avatarExt(a.Filename, a.ContentType))
	url, err := c.store.Put(ctx, key, a.Body, a.Size, a.ContentType)
	if err != nil {
		return nil, err
	}
	// defeat browser caches, the key never changes
	url = fmt.Sprintf("%s?t=%d", url, time.Now().UnixMilli())

	if err := c.profiles.UpdateProfile(ctx, id, map[string]interface{}{"avatar_url": url}); err != nil {
		return nil, err
	}
	return c.GetProfile(ctx, id)
}

func avatarExt(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); len(ext) > 1 && len(ext) <= 6 && isAlnum(ext[1:]) {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

func (c *UserController) Role(ctx context.Context, id uuid.UUID) (*types.RoleResponse, error) {
	isAdmin, err := c.roles.IsAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	return &types.RoleResponse{IsAdmin: isAdmin}, nil
}

func (c *UserController) Dashboard(ctx context.Context, id uuid.UUID) (*types.Dashboard, error) {
	var d types.Dashboard
	var err error
	if d.SessionCount, err = c.chats.CountSessions(ctx, id); err != nil {
		return nil, err
	}
	if d.ImageCount, err = c.images.CountImages(ctx, id); err != nil {
		return nil, err
	}
	if d.Sessions, err = c.chats.RecentSessions(ctx, id, recentLimit); err != nil {
		return nil, err
	}
	if d.Images, err = c.images.RecentImages(ctx, id, recentLimit); err != nil {
		return nil, err
	}
	return &d, nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
