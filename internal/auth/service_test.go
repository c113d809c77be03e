package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db/models"
	"github.com/merchantiq/pricewise-backend/pkg/enums"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:                 "test-secret",
	Issuer:                 "pricewise-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

type stubUsers struct {
	user    *models.User
	updated bool
}

func (s *stubUsers) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUsers) UpdateUser(ctx context.Context, user *models.User) error {
	s.updated = true
	return nil
}

type stubSessions struct {
	revoked []string
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return uuid.NewString(), "rotated-token", nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubLimiter struct {
	allowed bool
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	return s.allowed, 1, nil
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "sales@example.com",
		FirstName:    "Sam",
		LastName:     "Seller",
		Role:         enums.UserRoleMember,
		PasswordHash: hash,
		IsActive:     true,
	}
}

func newTestService(t *testing.T, users userReader, limiter rateLimiter) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:    users,
		Sessions: &stubSessions{},
		Limiter:  limiter,
		JWT:      testJWT,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginSuccessIssuesTokenPair(t *testing.T) {
	users := &stubUsers{user: testUser(t, "hunter2!")}
	svc := newTestService(t, users, &stubLimiter{allowed: true})

	result, err := svc.Login(context.Background(), "Sales@Example.com", "hunter2!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", result.Tokens)
	}
	if !users.updated {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, &stubUsers{user: testUser(t, "hunter2!")}, &stubLimiter{allowed: true})

	_, err := svc.Login(context.Background(), "sales@example.com", "wrong")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, &stubUsers{}, &stubLimiter{allowed: true})

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	user := testUser(t, "hunter2!")
	user.IsActive = false
	svc := newTestService(t, &stubUsers{user: user}, &stubLimiter{allowed: true})

	_, err := svc.Login(context.Background(), user.Email, "hunter2!")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	svc := newTestService(t, &stubUsers{user: testUser(t, "hunter2!")}, &stubLimiter{allowed: false})

	_, err := svc.Login(context.Background(), "sales@example.com", "hunter2!")
	if pkgerrors.As(err).Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := newTestService(t, &stubUsers{user: testUser(t, "hunter2!")}, nil)

	_, err := svc.Refresh(context.Background(), "not-a-jwt", "refresh")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	users := &stubUsers{user: testUser(t, "hunter2!")}
	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{
		Users:    users,
		Sessions: sessions,
		JWT:      testJWT,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Login(context.Background(), users.user.Email, "hunter2!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.Tokens.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revoked session, got %d", len(sessions.revoked))
	}
}
