package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func rateLimitConfig() *config.RateLimitConfig {
	return &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     3,
		RequestsPerMinuteAuth: 5,
	}
}

func hitEndpoint(handler http.Handler, remoteAddr, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_LimitByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(rateLimitConfig(), zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := hitEndpoint(handler, "10.0.0.9:1234", "/api/v1/projects")
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := hitEndpoint(handler, "10.0.0.9:1234", "/api/v1/projects")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_SeparateIPs(t *testing.T) {
	rl := middleware.NewRateLimiter(rateLimitConfig(), zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		hitEndpoint(handler, "10.0.1.1:1234", "/api/v1/projects")
	}
	w := hitEndpoint(handler, "10.0.1.1:1234", "/api/v1/projects")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different client still has budget
	w = hitEndpoint(handler, "10.0.1.2:1234", "/api/v1/projects")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_WhitelistedIP(t *testing.T) {
	cfg := rateLimitConfig()
	cfg.WhitelistIPs = []string{"10.0.2.1"}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		w := hitEndpoint(handler, "10.0.2.1:1234", "/api/v1/projects")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_WhitelistedPaths(t *testing.T) {
	cfg := rateLimitConfig()
	cfg.WhitelistPaths = []string{"/health", "/swagger/*"}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("exact match", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			w := hitEndpoint(handler, "10.0.3.1:1234", "/health")
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("prefix match", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			w := hitEndpoint(handler, "10.0.3.2:1234", fmt.Sprintf("/swagger/page%d", i))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestRateLimiter_Disabled(t *testing.T) {
	cfg := rateLimitConfig()
	cfg.Enabled = false
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		w := hitEndpoint(handler, "10.0.4.1:1234", "/api/v1/projects")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_XForwardedFor(t *testing.T) {
	cfg := rateLimitConfig()
	cfg.WhitelistIPs = []string{"192.168.1.50"}
	rl := middleware.NewRateLimiter(cfg, zap.NewNop())
	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
		req.RemoteAddr = "10.0.5.1:1234"
		req.Header.Set("X-Forwarded-For", "192.168.1.50, 10.0.0.1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
