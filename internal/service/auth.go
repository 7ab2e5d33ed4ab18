package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	User        *models.User
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return s.createUser(ctx, req, middleware.RoleUser)
}

// CreateAdmin registers a user with the admin role, or promotes an existing
// user with that username.
func (s *AuthService) CreateAdmin(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	u, err := s.createUser(ctx, req, middleware.RoleAdmin)
	if !errors.Is(err, ErrConflict) {
		return u, err
	}
	existing, err := s.Repo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, translate(err, "user")
	}
	if err := s.Repo.UpdateUserRole(ctx, existing.ID, middleware.RoleAdmin); err != nil {
		return nil, err
	}
	existing.Role = middleware.RoleAdmin
	return existing, nil
}

func (s *AuthService) createUser(ctx context.Context, req transport.RegisterRequest, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req).orNil(); err != nil {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req).orNil(); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrUnauthorized
	}

	token, exp, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Role, s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &LoginResult{AccessToken: token, AccessExp: exp, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUserById(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return u, nil
}
