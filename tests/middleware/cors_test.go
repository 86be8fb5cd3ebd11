package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func corsConfig(origins ...string) *config.CORSConfig {
	return &config.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "x-api-key"},
		MaxAge:         300,
	}
}

func serveCORS(t *testing.T, cfg *config.CORSConfig, environment, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := middleware.CORS(cfg, environment, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	cfg := corsConfig("https://app.slcgroup.com.au")

	t.Run("allowed origin", func(t *testing.T) {
		w := serveCORS(t, cfg, "production", "https://app.slcgroup.com.au")
		assert.Equal(t, "https://app.slcgroup.com.au", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no CORS headers", func(t *testing.T) {
		w := serveCORS(t, cfg, "production", "https://evil.example.com")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	cfg := corsConfig("*")

	w := serveCORS(t, cfg, "development", "https://anything.example.com")
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	t.Run("development allows any origin", func(t *testing.T) {
		w := serveCORS(t, corsConfig(), "development", "http://localhost:3000")
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("production denies all origins", func(t *testing.T) {
		w := serveCORS(t, corsConfig(), "production", "http://localhost:3000")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_Preflight(t *testing.T) {
	cfg := corsConfig("https://app.slcgroup.com.au")
	handler := middleware.CORS(cfg, "production", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "https://app.slcgroup.com.au")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://app.slcgroup.com.au", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
