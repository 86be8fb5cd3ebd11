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

type LabourRateHandler struct {
	labourRateService *service.LabourRateService
	logger            *zap.Logger
}

func NewLabourRateHandler(labourRateService *service.LabourRateService, logger *zap.Logger) *LabourRateHandler {
	return &LabourRateHandler{
		labourRateService: labourRateService,
		logger:            logger,
	}
}

// List godoc
// @Summary List labour rates
// @Description Get paginated list of labour rates with optional filters
// @Tags LabourRates
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by labour type"
// @Param stateCode query string false "Filter by state" Enums(NSW, VIC, QLD, NT, SA, WA, TAS, ACT)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.LabourRateDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labour-rates [get]
func (h *LabourRateHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.LabourRateFilter{
		Search:    r.URL.Query().Get("search"),
		StateCode: r.URL.Query().Get("stateCode"),
	}

	result, err := h.labourRateService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list labour rates", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list labour rates",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Resolve godoc
// @Summary Resolve labour rate
// @Description Look up the effective rate for a labour type in a state. No fallback: a missing combination is 404.
// @Tags LabourRates
// @Produce json
// @Param labourType query string true "Labour type"
// @Param stateCode query string true "State code" Enums(NSW, VIC, QLD, NT, SA, WA, TAS, ACT)
// @Success 200 {object} domain.LabourRateDTO
// @Failure 400 {object} domain.ErrorResponse "Missing parameters or invalid state code"
// @Failure 404 {object} domain.ErrorResponse "No rate for this type and state"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labour-rates/resolve [get]
func (h *LabourRateHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	labourType := r.URL.Query().Get("labourType")
	stateCode := r.URL.Query().Get("stateCode")
	if labourType == "" || stateCode == "" {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Query parameters 'labourType' and 'stateCode' are required",
		})
		return
	}

	rate, err := h.labourRateService.Resolve(r.Context(), labourType, stateCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStateCode) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid state code",
			})
			return
		}
		if errors.Is(err, service.ErrLabourRateNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "No labour rate for this type and state",
			})
			return
		}
		h.logger.Error("failed to resolve labour rate", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to resolve labour rate",
		})
		return
	}

	respondJSON(w, http.StatusOK, rate)
}

// GetByID godoc
// @Summary Get labour rate
// @Description Get a labour rate by its numeric ID
// @Tags LabourRates
// @Produce json
// @Param id path int true "Labour rate ID"
// @Success 200 {object} domain.LabourRateDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labour-rates/{id} [get]
func (h *LabourRateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid labour rate ID format",
		})
		return
	}

	rate, err := h.labourRateService.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrLabourRateNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Labour rate not found",
			})
			return
		}
		h.logger.Error("failed to get labour rate", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get labour rate",
		})
		return
	}

	respondJSON(w, http.StatusOK, rate)
}

// Create godoc
// @Summary Create labour rate
// @Description Add a labour rate. Only one rate may exist per labour type and state.
// @Tags LabourRates
// @Accept json
// @Produce json
// @Param request body service.CreateLabourRateInput true "Labour rate data"
// @Success 201 {object} domain.LabourRateDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 409 {object} domain.ErrorResponse "Rate already exists for this type and state"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labour-rates [post]
func (h *LabourRateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLabourRateInput
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

	rate, err := h.labourRateService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrLabourRateExists) {
			respondJSON(w, http.StatusConflict, domain.ErrorResponse{
				Error:   "Conflict",
				Message: "A labour rate for this type and state already exists",
			})
			return
		}
		h.logger.Error("failed to create labour rate", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create labour rate",
		})
		return
	}

	respondJSON(w, http.StatusCreated, rate)
}

// Update godoc
// @Summary Update labour rate
// @Description Partially update a labour rate; omitted fields keep their values
// @Tags LabourRates
// @Accept json
// @Produce json
// @Param id path int true "Labour rate ID"
// @Param request body service.UpdateLabourRateInput true "Fields to update"
// @Success 200 {object} domain.LabourRateDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labour-rates/{id} [patch]
func (h *LabourRateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid labour rate ID format",
		})
		return
	}

	var req service.UpdateLabourRateInput
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

	rate, err := h.labourRateService.Update(r.Context(), uint(id), &req)
	if err != nil {
		if errors.Is(err, service.ErrLabourRateNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Labour rate not found",
			})
			return
		}
		h.logger.Error("failed to update labour rate", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update labour rate",
		})
		return
	}

	respondJSON(w, http.StatusOK, rate)
}

// Delete godoc
// @Summary Delete labour rate
// @Description Remove a labour rate. Project labour lines keep their snapshots.
// @Tags LabourRates
// @Param id path int true "Labour rate ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labour-rates/{id} [delete]
func (h *LabourRateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid labour rate ID format",
		})
		return
	}

	if err := h.labourRateService.Delete(r.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrLabourRateNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Labour rate not found",
			})
			return
		}
		h.logger.Error("failed to delete labour rate", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete labour rate",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
