package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slcgroup/costing-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// auditMiddleware with no audit service still captures bodies and statuses,
// which is what these tests exercise without a database.
func auditMiddleware() *middleware.AuditMiddleware {
	return middleware.NewAuditMiddleware(nil, nil, zap.NewNop())
}

func TestAudit_CapturesRequestBody(t *testing.T) {
	m := auditMiddleware()

	var captured []byte
	var bodySeenByHandler []byte
	handler := m.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestBody(r.Context())
		bodySeenByHandler, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))

	payload := `{"name":"Depot refurbishment","budget":120000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(payload))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	// The middleware reads the body but the handler must still see it
	assert.Equal(t, payload, string(bodySeenByHandler))
	require.NotNil(t, captured)
	assert.Equal(t, payload, string(captured))
}

func TestAudit_SkipsReads(t *testing.T) {
	m := auditMiddleware()

	var captured []byte
	handler := m.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestBody(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, captured)
}

func TestAudit_SkipsConfiguredMethodsAndPaths(t *testing.T) {
	m := auditMiddleware()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "options", method: http.MethodOptions, path: "/api/v1/projects"},
		{name: "head", method: http.MethodHead, path: "/api/v1/projects"},
		{name: "health", method: http.MethodPost, path: "/health"},
		{name: "swagger", method: http.MethodPost, path: "/swagger/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured []byte
			handler := m.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = middleware.GetRequestBody(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"x":1}`))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Nil(t, captured)
		})
	}
}

func TestAudit_PassesThroughErrorStatus(t *testing.T) {
	m := auditMiddleware()

	handler := m.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
