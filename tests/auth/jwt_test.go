package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJwtConfig() *config.JwtConfig {
	return &config.JwtConfig{
		Secret:        "test-signing-secret-at-least-32-chars",
		Issuer:        "costing-api",
		ExpiryMinutes: 60,
	}
}

func testUser(role domain.UserRole) *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Email:     "user@example.com",
		Username:  "user1",
		FullName:  "Test User",
		Role:      role,
		IsActive:  true,
	}
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	manager := auth.NewTokenManager(testJwtConfig())
	user := testUser(domain.RoleManager)

	token, expiresAt, err := manager.IssueToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now().UTC()))

	userCtx, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, user.Username, userCtx.Username)
	assert.Equal(t, user.FullName, userCtx.FullName)
	assert.Equal(t, domain.RoleManager, userCtx.Role)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	cfg := testJwtConfig()
	cfg.ExpiryMinutes = -1 // issued already expired
	manager := auth.NewTokenManager(cfg)

	token, _, err := manager.IssueToken(testUser(domain.RoleViewer))
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager(testJwtConfig())
	token, _, err := issuer.IssueToken(testUser(domain.RoleAdmin))
	require.NoError(t, err)

	otherCfg := testJwtConfig()
	otherCfg.Secret = "a-completely-different-signing-secret"
	validator := auth.NewTokenManager(otherCfg)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	issuerCfg := testJwtConfig()
	issuerCfg.Issuer = "some-other-service"
	issuer := auth.NewTokenManager(issuerCfg)

	token, _, err := issuer.IssueToken(testUser(domain.RoleAdmin))
	require.NoError(t, err)

	validator := auth.NewTokenManager(testJwtConfig())
	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	manager := auth.NewTokenManager(testJwtConfig())

	_, err := manager.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_MissingSecret(t *testing.T) {
	manager := auth.NewTokenManager(&config.JwtConfig{Issuer: "costing-api", ExpiryMinutes: 60})

	_, _, err := manager.IssueToken(testUser(domain.RoleAdmin))
	assert.Error(t, err)

	_, err = manager.ValidateToken("anything")
	assert.Error(t, err)
}
