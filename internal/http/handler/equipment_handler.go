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

type EquipmentHandler struct {
	equipmentService   *service.EquipmentService
	priceChangeService *service.PriceChangeService
	logger             *zap.Logger
}

func NewEquipmentHandler(equipmentService *service.EquipmentService, priceChangeService *service.PriceChangeService, logger *zap.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService:   equipmentService,
		priceChangeService: priceChangeService,
		logger:             logger,
	}
}

// List godoc
// @Summary List equipment
// @Description Get paginated list of catalog equipment with optional filters
// @Tags Equipment
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by equipment ID or name"
// @Param category query string false "Filter by category"
// @Param stateCode query string false "Filter by state" Enums(NSW, VIC, QLD, NT, SA, WA, TAS, ACT)
// @Param site query string false "Filter by site"
// @Param minCost query number false "Minimum unit cost (inclusive)"
// @Param maxCost query number false "Maximum unit cost (inclusive)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.EquipmentDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment [get]
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.EquipmentFilter{
		Search:    r.URL.Query().Get("search"),
		Category:  r.URL.Query().Get("category"),
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

	result, err := h.equipmentService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list equipment", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list equipment",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get equipment
// @Description Get a catalog equipment item by its numeric ID
// @Tags Equipment
// @Produce json
// @Param id path int true "Equipment ID"
// @Success 200 {object} domain.EquipmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid equipment ID format",
		})
		return
	}

	equipment, err := h.equipmentService.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrEquipmentNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Equipment not found",
			})
			return
		}
		h.logger.Error("failed to get equipment", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get equipment",
		})
		return
	}

	respondJSON(w, http.StatusOK, equipment)
}

// Create godoc
// @Summary Create equipment
// @Description Add an equipment item to the catalog
// @Tags Equipment
// @Accept json
// @Produce json
// @Param request body service.CreateEquipmentInput true "Equipment data"
// @Success 201 {object} domain.EquipmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 409 {object} domain.ErrorResponse "Duplicate equipment identifier"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment [post]
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEquipmentInput
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

	equipment, err := h.equipmentService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEquipmentExists) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "An equipment item with this identifier already exists",
			})
			return
		}
		h.logger.Error("failed to create equipment", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create equipment",
		})
		return
	}

	respondJSON(w, http.StatusCreated, equipment)
}

// Update godoc
// @Summary Update equipment
// @Description Partially update a catalog equipment item; omitted fields keep their values
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path int true "Equipment ID"
// @Param request body service.UpdateEquipmentInput true "Fields to update"
// @Success 200 {object} domain.EquipmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment/{id} [patch]
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid equipment ID format",
		})
		return
	}

	var req service.UpdateEquipmentInput
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

	equipment, err := h.equipmentService.Update(r.Context(), uint(id), &req)
	if err != nil {
		if errors.Is(err, service.ErrEquipmentNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Equipment not found",
			})
			return
		}
		h.logger.Error("failed to update equipment", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update equipment",
		})
		return
	}

	respondJSON(w, http.StatusOK, equipment)
}

// Delete godoc
// @Summary Delete equipment
// @Description Remove an equipment item from the catalog. Project lines keep their snapshots.
// @Tags Equipment
// @Param id path int true "Equipment ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid equipment ID format",
		})
		return
	}

	if err := h.equipmentService.Delete(r.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrEquipmentNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Equipment not found",
			})
			return
		}
		h.logger.Error("failed to delete equipment", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete equipment",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats godoc
// @Summary Equipment catalog statistics
// @Description Get aggregate statistics for the equipment catalog
// @Tags Equipment
// @Produce json
// @Success 200 {object} domain.CatalogStatsDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment/stats [get]
func (h *EquipmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.equipmentService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get equipment stats", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get equipment statistics",
		})
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// PriceHistory godoc
// @Summary Equipment price history
// @Description Get the recent price changes of an equipment item, newest first
// @Tags Equipment
// @Produce json
// @Param ref path string true "Equipment identifier"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {array} domain.PriceChangeLogDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /equipment/{ref}/price-history [get]
func (h *EquipmentHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.priceChangeService.History(r.Context(), "equipment", chi.URLParam(r, "ref"), limit)
	if err != nil {
		h.logger.Error("failed to get equipment price history", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get price history",
		})
		return
	}

	respondJSON(w, http.StatusOK, history)
}
