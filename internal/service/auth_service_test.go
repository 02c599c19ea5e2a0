package service_test

import (
	"testing"
	"time"

	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_IssueAndValidate(t *testing.T) {
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(cfg)

	result, err := authService.IssueToken(424242)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	userID, err := authService.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(424242), userID)
}

func TestAuthService_ValidateToken(t *testing.T) {
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(cfg)

	sign := func(secret string, claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: sign("other-secret", jwt.MapClaims{"sub": "1", "exp": future})},
		{name: "expired", token: sign(cfg.JWTSecret, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Hour).Unix()})},
		{name: "non numeric subject", token: sign(cfg.JWTSecret, jwt.MapClaims{"sub": "alice", "exp": future})},
		{name: "missing subject", token: sign(cfg.JWTSecret, jwt.MapClaims{"exp": future})},
		{name: "zero subject", token: sign(cfg.JWTSecret, jwt.MapClaims{"sub": "0", "exp": future})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.ValidateToken(tt.token)
			assert.ErrorIs(t, err, service.ErrInvalidToken)
		})
	}
}

func TestAuthService_IssueToken_RejectsInvalidUser(t *testing.T) {
	authService := service.NewAuthService(testutil.TestConfig())

	_, err := authService.IssueToken(0)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAuthService_CheckAdminSecret(t *testing.T) {
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(cfg)

	assert.NoError(t, authService.CheckAdminSecret(testutil.AdminSecret))
	assert.ErrorIs(t, authService.CheckAdminSecret("guess"), service.ErrInvalidSecret)
	assert.ErrorIs(t, authService.CheckAdminSecret(""), service.ErrInvalidSecret)

	cfg.AdminSecretHash = ""
	assert.ErrorIs(t, authService.CheckAdminSecret(testutil.AdminSecret), service.ErrInvalidSecret)
}
