package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/merchantiq/pricewise-backend/pkg/auth"
	"github.com/merchantiq/pricewise-backend/pkg/auth/session"
	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/security"
)

const (
	defaultLoginRateLimit  = 5
	defaultLoginRateWindow = time.Minute
)

type userReader interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users     userReader
	Sessions  sessionManager
	Limiter   rateLimiter
	JWT       config.JWTConfig
	RateLimit config.AuthRateLimitConfig
	Logger    *logger.Logger
}

// Service implements login, token refresh, and logout.
type Service struct {
	users     userReader
	sessions  sessionManager
	limiter   rateLimiter
	jwt       config.JWTConfig
	rateLimit config.AuthRateLimitConfig
	logg      *logger.Logger
}

// NewService builds an auth service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, errors.New("user reader is required")
	}
	if params.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if params.JWT.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Service{
		users:     params.Users,
		sessions:  params.Sessions,
		limiter:   params.Limiter,
		jwt:       params.JWT,
		rateLimit: params.RateLimit,
		logg:      params.Logger,
	}, nil
}

// TokenPair is the issued credential set.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult carries the authenticated user and their tokens.
type LoginResult struct {
	User   *models.User
	Tokens TokenPair
}

// Login verifies credentials and opens a refresh session. Failures are
// deliberately indistinguishable between unknown email, wrong password, and
// deactivated account.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.limiter != nil {
		limit := int64(s.rateLimit.LoginEmailLimit)
		if limit <= 0 {
			limit = defaultLoginRateLimit
		}
		window := s.rateLimit.LoginWindow
		if window <= 0 {
			window = defaultLoginRateWindow
		}
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:"+email, limit, window)
		if err != nil && s.logg != nil {
			s.logg.Warn(ctx, "login rate limit check failed")
		}
		if err == nil && !allowed {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.users.UpdateUser(ctx, user); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "recording last login failed")
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates a refresh session and issues a fresh token pair. The access
// token may already be expired; its signature still has to verify.
func (s *Service) Refresh(ctx context.Context, accessToken, refreshToken string) (*LoginResult, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	user, err := s.users.FindUserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, fmt.Errorf("rotating session: %w", err)
	}

	access, err := auth.MintAccessToken(s.jwt, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}

	return &LoginResult{
		User:   user,
		Tokens: TokenPair{AccessToken: access, RefreshToken: newRefresh},
	}, nil
}

// Logout tears down the refresh session tied to the presented access token.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	return s.sessions.Revoke(ctx, claims.ID)
}

func (s *Service) issueTokens(ctx context.Context, user *models.User) (TokenPair, error) {
	accessID := session.NewAccessID()
	access, err := auth.MintAccessToken(s.jwt, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("minting access token: %w", err)
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("opening session: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
