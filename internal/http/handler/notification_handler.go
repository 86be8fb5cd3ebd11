package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

func (h *NotificationHandler) respondNotificationError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrUserContextRequired):
		respondJSON(w, http.StatusUnauthorized, domain.ErrorResponse{Error: "Unauthorized", Message: "Authentication required"})
	case errors.Is(err, service.ErrNotificationNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Notification not found"})
	case errors.Is(err, service.ErrNotificationNotOwned):
		respondJSON(w, http.StatusForbidden, domain.ErrorResponse{Error: "Forbidden", Message: "Notification belongs to another user"})
	default:
		h.logger.Error("failed to "+action, zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to " + action,
		})
	}
}

// List godoc
// @Summary List notifications
// @Description Get the authenticated user's notifications, including broadcasts, newest first
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param unreadOnly query bool false "Only unread notifications"
// @Param type query string false "Filter by notification type"
// @Param severity query string false "Filter by severity" Enums(low, medium, high)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NotificationDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	opts := &service.NotificationListOptions{
		Type:     r.URL.Query().Get("type"),
		Severity: r.URL.Query().Get("severity"),
	}
	if v := r.URL.Query().Get("unreadOnly"); v != "" {
		if unreadOnly, err := strconv.ParseBool(v); err == nil {
			opts.UnreadOnly = unreadOnly
		}
	}

	result, err := h.notificationService.List(r.Context(), opts, page, pageSize)
	if err != nil {
		h.respondNotificationError(w, err, "list notifications")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} domain.NotificationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id} [get]
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "notification ID")
	if !ok {
		return
	}

	notification, err := h.notificationService.GetByID(r.Context(), id)
	if err != nil {
		h.respondNotificationError(w, err, "get notification")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Description Mark a single notification as read. Marking an already read notification is a no-op.
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} domain.NotificationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "notification ID")
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkAsRead(r.Context(), id)
	if err != nil {
		h.respondNotificationError(w, err, "mark notification as read")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Description Mark every unread notification visible to the user as read and return the count
// @Tags Notifications
// @Produce json
// @Success 200 {object} domain.MarkAllReadDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	result, err := h.notificationService.MarkAllAsRead(r.Context())
	if err != nil {
		h.respondNotificationError(w, err, "mark all notifications as read")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// UnreadCount godoc
// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Success 200 {object} domain.UnreadCountDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.UnreadCount(r.Context())
	if err != nil {
		h.respondNotificationError(w, err, "count unread notifications")
		return
	}

	respondJSON(w, http.StatusOK, count)
}

// Delete godoc
// @Summary Delete notification
// @Tags Notifications
// @Param id path string true "Notification ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "notification ID")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(r.Context(), id); err != nil {
		h.respondNotificationError(w, err, "delete notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
