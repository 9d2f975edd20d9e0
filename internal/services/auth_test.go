package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshadid/thegiftspace/internal/domain"
)

func newAuthFixture(t *testing.T) (domain.AuthService, *memUserRepo) {
	t.Helper()

	users := newMemUserRepo()
	service := NewAuthService(AuthServiceDependencies{
		Users:       users,
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		AdminEmails: []string{"admin@example.com"},
	})
	return service, users
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newAuthFixture(t)

	token, err := service.Register(context.Background(), domain.RegisterParams{
		Email:    "Sara@Example.com",
		Name:     "Sara",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "sara@example.com", token.User.Email, "emails are stored lowercased")
	assert.False(t, token.User.IsAdmin)

	// The issued token resolves back to the user.
	user, err := service.VerifyToken(context.Background(), token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.User.ID, user.ID)

	// Login with either casing.
	login, err := service.Login(context.Background(), "SARA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, token.User.ID, login.User.ID)
}

func TestRegister_Validation(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), domain.RegisterParams{
		Email:    "not-an-email",
		Password: "long enough",
	})
	assert.Error(t, err)

	_, err = service.Register(context.Background(), domain.RegisterParams{
		Email:    "sara@example.com",
		Password: "short",
	})
	assert.Error(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	params := domain.RegisterParams{Email: "sara@example.com", Password: "correct horse"}

	_, err := service.Register(context.Background(), params)
	require.NoError(t, err)

	_, err = service.Register(context.Background(), params)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegister_AdminEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	token, err := service.Register(context.Background(), domain.RegisterParams{
		Email:    "Admin@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.True(t, token.User.IsAdmin)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), domain.RegisterParams{
		Email:    "sara@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "sara@example.com", "wrong password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown accounts produce the same error as bad passwords.
	_, err = service.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyToken_Invalid(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.VerifyToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	service, users := newAuthFixture(t)

	token, err := service.Register(context.Background(), domain.RegisterParams{
		Email:    "sara@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	other := NewAuthService(AuthServiceDependencies{
		Users:     users,
		JWTSecret: "different-secret",
		TokenTTL:  time.Hour,
	})

	_, err = other.VerifyToken(context.Background(), token.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyToken_Expired(t *testing.T) {
	users := newMemUserRepo()
	service := NewAuthService(AuthServiceDependencies{
		Users:     users,
		JWTSecret: "test-secret",
		TokenTTL:  time.Nanosecond,
	})

	token, err := service.Register(context.Background(), domain.RegisterParams{
		Email:    "sara@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = service.VerifyToken(context.Background(), token.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
