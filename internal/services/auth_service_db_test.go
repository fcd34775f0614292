// internal/services/auth_service_db_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	utils.SetJWTSecret("test-secret")
	store := newTestLedger(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	return NewAuthService(store.DB(), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	registered, err := svc.Register(&RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, registered.Account.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Nil(t, registered.Account.LastLoginAt)

	login, err := svc.Login(&LoginRequest{
		Email:    "alice@test.local",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotNil(t, login.Account.LastLoginAt)

	_, err = svc.Login(&LoginRequest{
		Email:    "alice@test.local",
		Password: "wrong-password",
	})
	assert.True(t, models.IsKind(err, models.KindUnauthorized), "got %v", err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Username: "alice2",
		Email:    "alice@test.local",
		Password: "password123",
	})
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)
}
