package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/http/handler"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthHandler(t *testing.T) (*handler.AuthHandler, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	tokenManager := auth.NewTokenManager(&config.JwtConfig{
		Secret:        "test-secret-at-least-32-characters-long",
		Issuer:        "costing-api-test",
		ExpiryMinutes: 60,
	})
	svc := service.NewAuthService(repository.NewUserRepository(db), tokenManager, zap.NewNop())
	return handler.NewAuthHandler(svc, zap.NewNop()), db
}

func uniqueHandlerEmail() (string, string) {
	suffix := time.Now().UnixNano() % 1_000_000_000
	return fmt.Sprintf("handler%d@slcgroup.com.au", suffix), fmt.Sprintf("handler%d", suffix)
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	h, db := setupAuthHandler(t)
	defer testutil.CleanupTestData(t, db)

	email, username := uniqueHandlerEmail()
	registerBody := fmt.Sprintf(`{"email":%q,"username":%q,"password":"s3cretpass","fullName":"Handler Test","role":"admin"}`, email, username)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(registerBody))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var user domain.UserDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, email, user.Email)
	// Anonymous registration cannot pick a role
	assert.Equal(t, domain.RoleViewer, user.Role)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(registerBody))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login returns bearer token", func(t *testing.T) {
		loginBody := fmt.Sprintf(`{"email":%q,"password":"s3cretpass"}`, email)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(loginBody))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var token domain.TokenDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&token))
		assert.Equal(t, "Bearer", token.TokenType)
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		loginBody := fmt.Sprintf(`{"email":%q,"password":"wrongpassword"}`, email)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(loginBody))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h, db := setupAuthHandler(t)
	defer testutil.CleanupTestData(t, db)

	body := `{"email":"not-an-email","username":"ab","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var apiErr domain.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Contains(t, apiErr.Errors, "email")
	assert.Contains(t, apiErr.Errors, "username")
	assert.Contains(t, apiErr.Errors, "password")
}

func TestAuthHandler_Me(t *testing.T) {
	h, db := setupAuthHandler(t)
	defer testutil.CleanupTestData(t, db)

	user := testutil.CreateTestUser(t, db, domain.RoleManager)

	t.Run("with user context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
			UserID:   user.ID,
			Email:    user.Email,
			Username: user.Username,
			Role:     user.Role,
		})
		rec := httptest.NewRecorder()
		h.Me(rec, req.WithContext(ctx))

		require.Equal(t, http.StatusOK, rec.Code)
		var dto domain.UserDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, user.Email, dto.Email)
	})

	t.Run("without user context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
