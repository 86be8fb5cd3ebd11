package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationListOptions narrows a notification listing
type NotificationListOptions struct {
	UnreadOnly bool
	Type       string
	Severity   string
}

// NotificationService handles user notifications. Broadcast notifications
// (no user ID) are visible to every user.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(notificationRepo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// List returns a page of the current user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, opts *NotificationListOptions, page, pageSize int) (*domain.PaginatedResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	notifications, total, err := s.notificationRepo.List(ctx, userCtx.UserID, page, pageSize, opts.UnreadOnly, opts.Type, opts.Severity)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i, notification := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notification)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetByID returns a single notification if it belongs to the current user
// or is a broadcast
func (s *NotificationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	notification, err := s.getOwned(ctx, userCtx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToNotificationDTO(notification)
	return &dto, nil
}

// MarkAsRead marks a notification read. Marking an already-read
// notification is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) (*domain.NotificationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	notification, err := s.getOwned(ctx, userCtx, id)
	if err != nil {
		return nil, err
	}

	if !notification.IsRead {
		if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		notification, err = s.getOwned(ctx, userCtx, id)
		if err != nil {
			return nil, err
		}
	}

	dto := mapper.ToNotificationDTO(notification)
	return &dto, nil
}

// MarkAllAsRead marks every unread notification visible to the current
// user as read and reports how many rows were touched
func (s *NotificationService) MarkAllAsRead(ctx context.Context) (*domain.MarkAllReadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	updated, err := s.notificationRepo.MarkAllAsRead(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	if updated > 0 {
		s.logger.Info("notifications marked read",
			zap.String("userID", userCtx.UserID.String()),
			zap.Int64("updated", updated),
		)
	}

	return &domain.MarkAllReadDTO{Updated: updated}, nil
}

// UnreadCount returns the number of unread notifications for the current user
func (s *NotificationService) UnreadCount(ctx context.Context) (*domain.UnreadCountDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	count, err := s.notificationRepo.CountUnread(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &domain.UnreadCountDTO{Count: int(count)}, nil
}

// Delete removes a notification visible to the current user
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	if _, err := s.getOwned(ctx, userCtx, id); err != nil {
		return err
	}

	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// getOwned fetches a notification and enforces visibility: the user's own
// notifications plus broadcasts. Admins see everything.
func (s *NotificationService) getOwned(ctx context.Context, userCtx *auth.UserContext, id uuid.UUID) (*domain.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != nil && *notification.UserID != userCtx.UserID && !userCtx.IsAdmin() {
		return nil, ErrNotificationNotOwned
	}
	return notification, nil
}
