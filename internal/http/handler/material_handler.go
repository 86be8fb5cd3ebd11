package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

type MaterialHandler struct {
	materialService    *service.MaterialService
	priceChangeService *service.PriceChangeService
	logger             *zap.Logger
}

func NewMaterialHandler(materialService *service.MaterialService, priceChangeService *service.PriceChangeService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService:    materialService,
		priceChangeService: priceChangeService,
		logger:             logger,
	}
}

// List godoc
// @Summary List materials
// @Description Get paginated list of catalog materials with optional filters
// @Tags Materials
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by material ID or description"
// @Param stateCode query string false "Filter by state" Enums(NSW, VIC, QLD, NT, SA, WA, TAS, ACT)
// @Param site query string false "Filter by site"
// @Param minCost query number false "Minimum unit cost (inclusive)"
// @Param maxCost query number false "Maximum unit cost (inclusive)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.MaterialDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials [get]
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.MaterialFilter{
		Search:    r.URL.Query().Get("search"),
		StateCode: r.URL.Query().Get("stateCode"),
		Site:      r.URL.Query().Get("site"),
	}
	if v := r.URL.Query().Get("minCost"); v != "" {
		if minCost, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinCost = &minCost
		}
	}
	if v := r.URL.Query().Get("maxCost"); v != "" {
		if maxCost, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxCost = &maxCost
		}
	}

	result, err := h.materialService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list materials", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list materials",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get material
// @Description Get a catalog material by its numeric ID
// @Tags Materials
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} domain.MaterialDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [get]
func (h *MaterialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid material ID format",
		})
		return
	}

	material, err := h.materialService.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Material not found",
			})
			return
		}
		h.logger.Error("failed to get material", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get material",
		})
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// Create godoc
// @Summary Create material
// @Description Add a material to the catalog
// @Tags Materials
// @Accept json
// @Produce json
// @Param request body service.CreateMaterialInput true "Material data"
// @Success 201 {object} domain.MaterialDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 409 {object} domain.ErrorResponse "Duplicate material identifier"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMaterialInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMaterialExists) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "A material with this identifier already exists",
			})
			return
		}
		h.logger.Error("failed to create material", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create material",
		})
		return
	}

	respondJSON(w, http.StatusCreated, material)
}

// Update godoc
// @Summary Update material
// @Description Partially update a catalog material; omitted fields keep their values
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path int true "Material ID"
// @Param request body service.UpdateMaterialInput true "Fields to update"
// @Success 200 {object} domain.MaterialDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [patch]
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid material ID format",
		})
		return
	}

	var req service.UpdateMaterialInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	material, err := h.materialService.Update(r.Context(), uint(id), &req)
	if err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Material not found",
			})
			return
		}
		h.logger.Error("failed to update material", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update material",
		})
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// Delete godoc
// @Summary Delete material
// @Description Remove a material from the catalog. Project lines keep their snapshots.
// @Tags Materials
// @Param id path int true "Material ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid material ID format",
		})
		return
	}

	if err := h.materialService.Delete(r.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Material not found",
			})
			return
		}
		h.logger.Error("failed to delete material", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete material",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats godoc
// @Summary Material catalog statistics
// @Description Get aggregate statistics for the material catalog
// @Tags Materials
// @Produce json
// @Success 200 {object} domain.CatalogStatsDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/stats [get]
func (h *MaterialHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.materialService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get material stats", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get material statistics",
		})
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// PriceHistory godoc
// @Summary Material price history
// @Description Get the recent price changes of a material, newest first
// @Tags Materials
// @Produce json
// @Param ref path string true "Material identifier"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {array} domain.PriceChangeLogDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /materials/{ref}/price-history [get]
func (h *MaterialHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.priceChangeService.History(r.Context(), "material", chi.URLParam(r, "ref"), limit)
	if err != nil {
		h.logger.Error("failed to get material price history", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get price history",
		})
		return
	}

	respondJSON(w, http.StatusOK, history)
}
