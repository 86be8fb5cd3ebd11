package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

func (h *QuoteHandler) respondQuoteError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Quote not found"})
	case errors.Is(err, service.ErrQuoteItemNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Quote item not found"})
	case errors.Is(err, service.ErrProjectNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Project not found"})
	default:
		h.logger.Error("failed to "+action, zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to " + action,
		})
	}
}

// List godoc
// @Summary List quotes
// @Description Get paginated list of quotes with optional filters
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by quote number or client name"
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, rejected, expired)
// @Param projectId query string false "Filter by project" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.QuoteFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("projectId"); v != "" {
		if projectID, err := uuid.Parse(v); err == nil {
			filter.ProjectID = &projectID
		}
	}

	result, err := h.quoteService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list quotes",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get quote
// @Description Get a quote with its line items
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		h.respondQuoteError(w, err, "get quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Create godoc
// @Summary Create quote
// @Description Create a quote, optionally linked to a project and seeded with items. A sequential quote number is assigned and totals are computed server side.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body service.CreateQuoteInput true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse "Linked project not found"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateQuoteInput
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

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		h.respondQuoteError(w, err, "create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// Update godoc
// @Summary Update quote
// @Description Partially update a quote; omitted fields keep their values. Status transitions raise notifications.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body service.UpdateQuoteInput true "Fields to update"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [patch]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}

	var req service.UpdateQuoteInput
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

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		h.respondQuoteError(w, err, "update quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Delete godoc
// @Summary Delete quote
// @Description Delete a quote and its items
// @Tags Quotes
// @Param id path string true "Quote ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		h.respondQuoteError(w, err, "delete quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItem appends an item and recomputes the quote totals
// @Summary Add quote item
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body service.CreateQuoteItemInput true "Item data"
// @Success 201 {object} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/items [post]
func (h *QuoteHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}

	var req service.CreateQuoteItemInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.quoteService.AddItem(r.Context(), id, &req)
	if err != nil {
		h.respondQuoteError(w, err, "add quote item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// ListItems returns the items of a quote in sort order
// @Summary List quote items
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {array} domain.QuoteItemDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/items [get]
func (h *QuoteHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}

	items, err := h.quoteService.ListItems(r.Context(), id)
	if err != nil {
		h.respondQuoteError(w, err, "list quote items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// UpdateItem updates an item and recomputes the quote totals
// @Summary Update quote item
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body service.UpdateQuoteItemInput true "Fields to update"
// @Success 200 {object} domain.QuoteItemDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/items/{itemId} [patch]
func (h *QuoteHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}
	itemID, ok := parsePathUUID(w, r, "itemId", "item ID")
	if !ok {
		return
	}

	var req service.UpdateQuoteItemInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.quoteService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		h.respondQuoteError(w, err, "update quote item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteItem removes an item and recomputes the quote totals
// @Summary Delete quote item
// @Tags Quotes
// @Param id path string true "Quote ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/items/{itemId} [delete]
func (h *QuoteHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}
	itemID, ok := parsePathUUID(w, r, "itemId", "item ID")
	if !ok {
		return
	}

	if err := h.quoteService.DeleteItem(r.Context(), id, itemID); err != nil {
		h.respondQuoteError(w, err, "delete quote item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Recalculate godoc
// @Summary Recalculate quote totals
// @Description Recompute subtotal, tax and total from the stored items and persist the result
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteTotalsDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/recalculate [post]
func (h *QuoteHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "quote ID")
	if !ok {
		return
	}

	totals, err := h.quoteService.Recalculate(r.Context(), id)
	if err != nil {
		h.respondQuoteError(w, err, "recalculate quote")
		return
	}

	respondJSON(w, http.StatusOK, totals)
}
