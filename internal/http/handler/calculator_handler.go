package handler

import (
	"encoding/json"
	"net/http"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

type CalculatorHandler struct {
	calculatorService *service.CalculatorService
	logger            *zap.Logger
}

func NewCalculatorHandler(calculatorService *service.CalculatorService, logger *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{
		calculatorService: calculatorService,
		logger:            logger,
	}
}

// RateCard godoc
// @Summary Rate card estimate
// @Description Compute a quick estimate from the standard rate card: base amount plus a per-item support charge, a risk uplift percentage, then tax
// @Tags Calculator
// @Accept json
// @Produce json
// @Param request body service.RateCardInput true "Rate card parameters"
// @Success 200 {object} domain.RateCardResultDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /calculator/rate-card [post]
func (h *CalculatorHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	var req service.RateCardInput
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

	result, err := h.calculatorService.RateCard(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to compute rate card", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to compute rate card estimate",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}
