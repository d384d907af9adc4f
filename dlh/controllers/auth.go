package controllers

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"dlh/dlh/config"
	"dlh/dlh/middlewares"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/utils/logging"
	"dlh/dlh/utils/types"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type AuthController struct {
	profiles *dao.ProfileDAO
	cfg      config.Config
	now      func() time.Time
}

func NewAuthController(profiles *dao.ProfileDAO, cfg config.Config) *AuthController {
	return &AuthController{
		profiles: profiles,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (c *AuthController) Signup(ctx context.Context, req types.SignupRequest) (*types.AuthResponse, error) {
	email := dao.NormalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, invalid("full_name is required")
	}

	existing, err := c.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{
		Email:            email,
		PasswordHash:     string(hash),
		FullName:         fullName,
		UserType:         models.RoleStudent,
		CourseOfInterest: req.CourseOfInterest,
		PhoneNumber:      req.PhoneNumber,
		Country:          req.Country,
		Gender:           req.Gender,
	}
	if err := c.profiles.CreateProfile(ctx, p, models.RoleStudent); err != nil {
		return nil, err
	}
	logging.AppLogger.Info("user signed up", zap.String("user_id", p.ID.String()))
	return c.issue(p)
}

func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	p, err := c.profiles.GetProfileByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrUnauthorized
	}
	if p.IsSuspended {
		return nil, ErrSuspended
	}
	return c.issue(p)
}

func (c *AuthController) issue(p *models.Profile) (*types.AuthResponse, error) {
	token, err := middlewares.IssueToken(c.cfg.JWTSecret, p.ID, c.now())
	if err != nil {
		return nil, err
	}
	return &types.AuthResponse{Token: token, User: p}, nil
}
