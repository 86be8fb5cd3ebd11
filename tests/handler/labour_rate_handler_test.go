package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
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

func setupLabourRateRouter(t *testing.T) (*chi.Mux, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLabourRateService(repository.NewLabourRateRepository(db), zap.NewNop())
	h := handler.NewLabourRateHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/labour-rates", h.List)
	r.Get("/labour-rates/resolve", h.Resolve)
	r.Post("/labour-rates", h.Create)
	r.Get("/labour-rates/{id}", h.GetByID)
	r.Patch("/labour-rates/{id}", h.Update)
	r.Delete("/labour-rates/{id}", h.Delete)
	return r, db
}

func uniqueHandlerLabourType(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

func TestLabourRateHandler_Resolve(t *testing.T) {
	router, db := setupLabourRateRouter(t)
	defer testutil.CleanupTestData(t, db)

	labourType := uniqueHandlerLabourType("linesworker")
	testutil.CreateTestLabourRate(t, db, labourType, domain.StateNSW, 880, 8)

	t.Run("exact match", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/labour-rates/resolve?labourType="+labourType+"&stateCode=NSW", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var dto domain.LabourRateDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, labourType, dto.LabourType)
		assert.Equal(t, 880.0, dto.CostPerPerson)
	})

	t.Run("no fallback across states", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/labour-rates/resolve?labourType="+labourType+"&stateCode=VIC", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid state code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/labour-rates/resolve?labourType="+labourType+"&stateCode=XX", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/labour-rates/resolve?labourType="+labourType, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errResp domain.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
		assert.Contains(t, errResp.Message, "stateCode")
	})
}

func TestLabourRateHandler_Create(t *testing.T) {
	router, db := setupLabourRateRouter(t)
	defer testutil.CleanupTestData(t, db)

	labourType := uniqueHandlerLabourType("rigger")
	body := fmt.Sprintf(`{"labourType":%q,"stateCode":"QLD","costPerPerson":760,"hours":8}`, labourType)

	req := httptest.NewRequest(http.MethodPost, "/labour-rates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var dto domain.LabourRateDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, labourType, dto.LabourType)
	assert.Equal(t, domain.StateQLD, dto.StateCode)

	t.Run("duplicate pair conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/labour-rates", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown state rejected by validation", func(t *testing.T) {
		bad := fmt.Sprintf(`{"labourType":%q,"stateCode":"ZZ","costPerPerson":760,"hours":8}`, uniqueHandlerLabourType("rigger"))
		req := httptest.NewRequest(http.MethodPost, "/labour-rates", strings.NewReader(bad))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var apiErr domain.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Contains(t, apiErr.Errors, "stateCode")
	})
}

func TestLabourRateHandler_GetUpdateDelete(t *testing.T) {
	router, db := setupLabourRateRouter(t)
	defer testutil.CleanupTestData(t, db)

	labourType := uniqueHandlerLabourType("surveyor")
	rate := testutil.CreateTestLabourRate(t, db, labourType, domain.StateSA, 640, 8)

	t.Run("get by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/labour-rates/%d", rate.ID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var dto domain.LabourRateDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, labourType, dto.LabourType)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/labour-rates/not-a-number", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial update", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/labour-rates/%d", rate.ID), strings.NewReader(`{"costPerPerson":700}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var dto domain.LabourRateDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, 700.0, dto.CostPerPerson)
		assert.Equal(t, 8.0, dto.Hours)
	})

	t.Run("delete then gone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/labour-rates/%d", rate.ID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/labour-rates/%d", rate.ID), nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
