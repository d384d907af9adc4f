package controllers

import (
	"context"
	"net/url"
	"strings"

	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/utils/logging"
	"dlh/dlh/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageScraper fetches a page and returns its readable text.
type PageScraper interface {
	ScrapePage(ctx context.Context, targetURL string) (string, error)
}

type AdminController struct {
	profiles *dao.ProfileDAO
	roles    *dao.RoleDAO
	settings *dao.SettingDAO
	scraper  PageScraper
}

func NewAdminController(profiles *dao.ProfileDAO, roles *dao.RoleDAO, settings *dao.SettingDAO, scraper PageScraper) *AdminController {
	return &AdminController{profiles: profiles, roles: roles, settings: settings, scraper: scraper}
}

func (c *AdminController) SearchUsers(ctx context.Context, q string) ([]models.Profile, error) {
	return c.profiles.SearchProfiles(ctx, q)
}

func (c *AdminController) UpdateUser(ctx context.Context, id uuid.UUID, req types.AdminUpdateUserRequest) (*models.Profile, error) {
	if err := c.exists(ctx, id); err != nil {
		return nil, err
	}
	updates := profileUpdates(req.UpdateProfileRequest)
	if req.Email != nil {
		updates["email"] = dao.NormalizeEmail(*req.Email)
	}
	if req.UserType != nil {
		if !models.ValidRole(*req.UserType) {
			return nil, invalid("user_type must be student, tutor or admin")
		}
		updates["user_type"] = *req.UserType
	}
	if len(updates) > 0 {
		if err := c.profiles.UpdateProfile(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return c.profiles.GetProfileByID(ctx, id)
}

func (c *AdminController) ToggleSuspended(ctx context.Context, actor, id uuid.UUID) (*models.Profile, error) {
	if actor == id {
		return nil, invalid("you cannot suspend your own account")
	}
	return c.found(c.profiles.ToggleSuspended(ctx, id))
}

func (c *AdminController) ToggleVerified(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return c.found(c.profiles.ToggleVerified(ctx, id))
}

func (c *AdminController) DeleteUser(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return invalid("you cannot delete your own account")
	}
	if err := c.exists(ctx, id); err != nil {
		return err
	}
	logging.AppLogger.Info("admin deleted user", zap.String("actor", actor.String()), zap.String("user_id", id.String()))
	return c.profiles.DeleteProfile(ctx, id)
}

func (c *AdminController) SetRole(ctx context.Context, id uuid.UUID, role string) ([]string, error) {
	if !models.ValidRole(role) {
		return nil, invalid("role must be student, tutor or admin")
	}
	if err := c.exists(ctx, id); err != nil {
		return nil, err
	}
	if err := c.roles.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	return c.roles.Roles(ctx, id)
}

func (c *AdminController) Knowledge(ctx context.Context) (*types.KnowledgeResponse, error) {
	v, err := c.settings.BotKnowledge(ctx)
	if err != nil {
		return nil, err
	}
	return &types.KnowledgeResponse{Value: v}, nil
}

func (c *AdminController) SetKnowledge(ctx context.Context, value string) (*types.KnowledgeResponse, error) {
	value = strings.TrimSpace(value)
	if err := c.settings.SetBotKnowledge(ctx, value); err != nil {
		return nil, err
	}
	return &types.KnowledgeResponse{Value: value}, nil
}

// ImportKnowledge appends the readable text of a web page to the bot knowledge.
func (c *AdminController) ImportKnowledge(ctx context.Context, rawURL string) (*types.KnowledgeResponse, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("url must be an absolute http(s) URL")
	}
	text, err := c.scraper.ScrapePage(ctx, u.String())
	if err != nil {
		logging.ErrorLogger.Error("knowledge import failed", zap.String("url", u.String()), zap.Error(err))
		return nil, invalid("could not import %s", u.String())
	}
	out, err := c.settings.AppendBotKnowledge(ctx, "Source: "+u.String()+"\n"+text)
	if err != nil {
		return nil, err
	}
	return &types.KnowledgeResponse{Value: out}, nil
}

func (c *AdminController) exists(ctx context.Context, id uuid.UUID) error {
	_, err := c.found(c.profiles.GetProfileByID(ctx, id))
	return err
}

func (c *AdminController) found(p *models.Profile, err error) (*models.Profile, error) {
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}
