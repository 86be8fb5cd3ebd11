package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

// AdminHandler exposes the administrative surface: system configuration,
// audit logs, price change history and the warehouse price sync trigger.
type AdminHandler struct {
	configService      *service.SystemConfigService
	auditLogService    *service.AuditLogService
	priceChangeService *service.PriceChangeService
	priceSyncService   *service.PriceSyncService
	logger             *zap.Logger
}

func NewAdminHandler(
	configService *service.SystemConfigService,
	auditLogService *service.AuditLogService,
	priceChangeService *service.PriceChangeService,
	priceSyncService *service.PriceSyncService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		configService:      configService,
		auditLogService:    auditLogService,
		priceChangeService: priceChangeService,
		priceSyncService:   priceSyncService,
		logger:             logger,
	}
}

// ListConfig godoc
// @Summary List configuration entries
// @Tags Admin
// @Produce json
// @Success 200 {array} domain.SystemConfigDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/config [get]
func (h *AdminHandler) ListConfig(w http.ResponseWriter, r *http.Request) {
	entries, err := h.configService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list config", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list configuration",
		})
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetConfig godoc
// @Summary Get configuration entry
// @Tags Admin
// @Produce json
// @Param key path string true "Configuration key"
// @Success 200 {object} domain.SystemConfigDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/config/{key} [get]
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	entry, err := h.configService.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, service.ErrConfigNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Configuration key not found",
			})
			return
		}
		h.logger.Error("failed to get config", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get configuration",
		})
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// SetConfig godoc
// @Summary Create or update configuration entry
// @Description Upsert a typed configuration value. The value must parse as the declared type.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body service.SetConfigInput true "Configuration entry"
// @Success 200 {object} domain.SystemConfigDTO
// @Failure 400 {object} domain.ErrorResponse "Invalid body or value does not match declared type"
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/config [put]
func (h *AdminHandler) SetConfig(w http.ResponseWriter, r *http.Request) {
	var req service.SetConfigInput
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

	entry, err := h.configService.Set(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidConfigValue) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Configuration value does not match the declared type",
			})
			return
		}
		h.logger.Error("failed to set config", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to set configuration",
		})
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// DeleteConfig godoc
// @Summary Delete configuration entry
// @Tags Admin
// @Param key path string true "Configuration key"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/config/{key} [delete]
func (h *AdminHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.configService.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		if errors.Is(err, service.ErrConfigNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Configuration key not found",
			})
			return
		}
		h.logger.Error("failed to delete config", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete configuration",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAuditLogs godoc
// @Summary List audit logs
// @Description Get paginated audit log entries with optional filters, newest first
// @Tags Admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by user" format(uuid)
// @Param action query string false "Filter by action" Enums(create, update, delete, login, export, import)
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID"
// @Param startTime query string false "Start of time range (RFC 3339)"
// @Param endTime query string false "End of time range (RFC 3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AuditLogDTO}
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.AuditLogFilter{
		EntityType: r.URL.Query().Get("entityType"),
		EntityID:   r.URL.Query().Get("entityId"),
	}
	if v := r.URL.Query().Get("userId"); v != "" {
		if userID, err := uuid.Parse(v); err == nil {
			filter.UserID = &userID
		}
	}
	if v := r.URL.Query().Get("action"); v != "" {
		action := domain.AuditAction(v)
		filter.Action = &action
	}
	if v := r.URL.Query().Get("startTime"); v != "" {
		if startTime, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTime = &startTime
		}
	}
	if v := r.URL.Query().Get("endTime"); v != "" {
		if endTime, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndTime = &endTime
		}
	}

	result, err := h.auditLogService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list audit logs",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetAuditLog godoc
// @Summary Get audit log entry
// @Tags Admin
// @Produce json
// @Param id path string true "Audit log ID" format(uuid)
// @Success 200 {object} domain.AuditLogDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/audit-logs/{id} [get]
func (h *AdminHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "audit log ID")
	if !ok {
		return
	}

	entry, err := h.auditLogService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAuditLogNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Audit log entry not found",
			})
			return
		}
		h.logger.Error("failed to get audit log", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get audit log entry",
		})
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// EntityAuditTrail godoc
// @Summary Entity audit trail
// @Description Get the recent audit entries for one entity, newest first
// @Tags Admin
// @Produce json
// @Param entityType path string true "Entity type"
// @Param entityId path string true "Entity ID"
// @Param limit query int false "Maximum rows (max 200)" default(50)
// @Success 200 {array} domain.AuditLogDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/audit-logs/entity/{entityType}/{entityId} [get]
func (h *AdminHandler) EntityAuditTrail(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.auditLogService.ListByEntity(r.Context(), chi.URLParam(r, "entityType"), chi.URLParam(r, "entityId"), limit)
	if err != nil {
		h.logger.Error("failed to get entity audit trail", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get audit trail",
		})
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// ActivitySummary godoc
// @Summary Audit activity summary
// @Description Get per-action counts over a time range. Defaults to the last 30 days.
// @Tags Admin
// @Produce json
// @Param startTime query string false "Start of time range (RFC 3339)"
// @Param endTime query string false "End of time range (RFC 3339)"
// @Success 200 {object} map[string]int64
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/audit-logs/summary [get]
func (h *AdminHandler) ActivitySummary(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	if v := r.URL.Query().Get("startTime"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			start = parsed
		}
	}
	if v := r.URL.Query().Get("endTime"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			end = parsed
		}
	}

	summary, err := h.auditLogService.ActivitySummary(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to get activity summary", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get activity summary",
		})
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// ListPriceChanges godoc
// @Summary List price changes
// @Description Get paginated price change history across the catalogs, newest first
// @Tags Admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param itemType query string false "Filter by item type" Enums(material, equipment)
// @Param itemRef query string false "Filter by item identifier"
// @Param source query string false "Filter by source" Enums(manual, warehouse_sync, bulk_import)
// @Param stateCode query string false "Filter by state" Enums(NSW, VIC, QLD, NT, SA, WA, TAS, ACT)
// @Param startTime query string false "Start of time range (RFC 3339)"
// @Param endTime query string false "End of time range (RFC 3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.PriceChangeLogDTO}
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/price-changes [get]
func (h *AdminHandler) ListPriceChanges(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.PriceChangeFilter{
		ItemType:  r.URL.Query().Get("itemType"),
		ItemRef:   r.URL.Query().Get("itemRef"),
		Source:    r.URL.Query().Get("source"),
		StateCode: r.URL.Query().Get("stateCode"),
	}
	if v := r.URL.Query().Get("startTime"); v != "" {
		if startTime, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTime = &startTime
		}
	}
	if v := r.URL.Query().Get("endTime"); v != "" {
		if endTime, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndTime = &endTime
		}
	}

	result, err := h.priceChangeService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list price changes", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list price changes",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// TriggerPriceSync godoc
// @Summary Trigger warehouse price sync
// @Description Run a synchronous price sync against the data warehouse and return the result counts
// @Tags Admin
// @Produce json
// @Success 200 {object} service.PriceSyncResult
// @Failure 403 {object} domain.ErrorResponse
// @Failure 503 {object} domain.ErrorResponse "Warehouse integration disabled"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/price-sync [post]
func (h *AdminHandler) TriggerPriceSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.priceSyncService.Sync(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrWarehouseDisabled) {
			respondJSON(w, http.StatusServiceUnavailable, domain.ErrorResponse{
				Error:   "Service Unavailable",
				Message: "Data warehouse integration is disabled",
			})
			return
		}
		h.logger.Error("failed to run price sync", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to run price sync",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}
