package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/auth"
)

type fakeAuthUserStore struct {
	user       *models.User
	lastLogins []int64
	passwords  map[int64]string
}

func (f *fakeAuthUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, apperrors.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeAuthUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, apperrors.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeAuthUserStore) UpdatePassword(_ context.Context, userID int64, hash string) error {
	if f.passwords == nil {
		f.passwords = map[int64]string{}
	}
	f.passwords[userID] = hash
	return nil
}

func (f *fakeAuthUserStore) UpdateLastLogin(_ context.Context, userID int64) error {
	f.lastLogins = append(f.lastLogins, userID)
	return nil
}

type fakeTokenStore struct {
	tokens  map[string]int64
	revoked map[string]bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]int64{}, revoked: map[string]bool{}}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, _ time.Time) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, error) {
	if f.revoked[token] {
		return 0, apperrors.ErrTokenRevoked
	}
	userID, ok := f.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	return userID, nil
}

func (f *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	if _, ok := f.tokens[token]; !ok {
		return apperrors.ErrTokenNotFound
	}
	f.revoked[token] = true
	return nil
}

func (f *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for token, owner := range f.tokens {
		if owner == userID {
			f.revoked[token] = true
		}
	}
	return nil
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "vtcms-test",
	})
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	return &models.User{
		ID:       1,
		Email:    "officer@naita.lk",
		Password: hash,
		RoleType: models.RoleTrainingOfficer,
		District: "Matara",
		IsActive: true,
	}
}

func TestLogin(t *testing.T) {
	users := &fakeAuthUserStore{user: activeUser(t)}
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, testJWTService())

	user, pair, err := svc.Login(context.Background(), "officer@naita.lk", "correct horse")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("user ID = %d, want 1", user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("missing tokens in pair")
	}
	if tokens.tokens[pair.RefreshToken] != 1 {
		t.Error("refresh token was not stored")
	}
	if len(users.lastLogins) != 1 {
		t.Error("last login was not stamped")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := &fakeAuthUserStore{user: activeUser(t)}
	svc := NewAuthService(users, newFakeTokenStore(), testJWTService())

	_, _, err := svc.Login(context.Background(), "officer@naita.lk", "wrong")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(&fakeAuthUserStore{}, newFakeTokenStore(), testJWTService())

	_, _, err := svc.Login(context.Background(), "nobody@naita.lk", "whatever")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("unknown users must look like bad credentials, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	user := activeUser(t)
	user.IsActive = false
	svc := NewAuthService(&fakeAuthUserStore{user: user}, newFakeTokenStore(), testJWTService())

	_, _, err := svc.Login(context.Background(), "officer@naita.lk", "correct horse")
	if !errors.Is(err, apperrors.ErrAccountDisabled) {
		t.Fatalf("expected disabled account error, got %v", err)
	}
}

func TestRefreshTokenRotates(t *testing.T) {
	users := &fakeAuthUserStore{user: activeUser(t)}
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, testJWTService())

	_, pair, err := svc.Login(context.Background(), "officer@naita.lk", "correct horse")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	_, next, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken() error: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if !tokens.revoked[pair.RefreshToken] {
		t.Error("old refresh token was not revoked")
	}

	// The old token cannot be replayed.
	if _, _, err := svc.RefreshToken(context.Background(), pair.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("replayed token: got %v, want revoked error", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	users := &fakeAuthUserStore{user: activeUser(t)}
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, testJWTService())

	_, pair, err := svc.Login(context.Background(), "officer@naita.lk", "correct horse")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), 1, "correct horse", "new password 9"); err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}
	if users.passwords[1] == "" {
		t.Error("password hash was not stored")
	}
	if !tokens.revoked[pair.RefreshToken] {
		t.Error("outstanding refresh token survived a password change")
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	users := &fakeAuthUserStore{user: activeUser(t)}
	svc := NewAuthService(users, newFakeTokenStore(), testJWTService())

	err := svc.ChangePassword(context.Background(), 1, "guess", "new password 9")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
