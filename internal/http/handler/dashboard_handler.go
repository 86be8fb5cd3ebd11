package handler

import (
	"net/http"
	"strconv"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Stats godoc
// @Summary Dashboard statistics
// @Description Get aggregate counts and quote values across the system
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStatsDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get dashboard stats", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get dashboard statistics",
		})
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Search godoc
// @Summary Global search
// @Description Search projects, materials, equipment and quotes by a single query string. A blank query returns empty results.
// @Tags Dashboard
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Maximum rows per entity (max 50)" default(10)
// @Success 200 {object} domain.SearchResultsDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /search [get]
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.dashboardService.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Error("failed to search", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to search",
		})
		return
	}

	respondJSON(w, http.StatusOK, results)
}
