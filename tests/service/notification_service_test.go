package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupNotificationService(t *testing.T) (*service.NotificationService, *gorm.DB) {
	db := testutil.SetupCleanTestDB(t)
	return service.NewNotificationService(repository.NewNotificationRepository(db), zap.NewNop()), db
}

func userContext(role domain.UserRole) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Role:   role,
	})
}

func createNotification(t *testing.T, db *gorm.DB, userID *uuid.UUID, title string) *domain.Notification {
	notification := &domain.Notification{
		UserID:   userID,
		Type:     domain.NotificationTypeSystem,
		Severity: domain.SeverityLow,
		Title:    title,
		Message:  "test",
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationService_RequiresUserContext(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	_, err := svc.List(ctx, &service.NotificationListOptions{}, 1, 20)
	assert.ErrorIs(t, err, service.ErrUserContextRequired)

	_, err = svc.UnreadCount(ctx)
	assert.ErrorIs(t, err, service.ErrUserContextRequired)

	_, err = svc.MarkAllAsRead(ctx)
	assert.ErrorIs(t, err, service.ErrUserContextRequired)
}

func TestNotificationService_List_Visibility(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := userContext(domain.RoleEstimator)
	userCtx := auth.MustFromContext(ctx)
	otherID := uuid.New()

	createNotification(t, db, &userCtx.UserID, "Mine")
	createNotification(t, db, &otherID, "Someone else's")
	createNotification(t, db, nil, "Broadcast")

	page, err := svc.List(ctx, &service.NotificationListOptions{}, 1, 20)
	require.NoError(t, err)
	// Own notification plus the broadcast, never the other user's
	assert.EqualValues(t, 2, page.Total)
}

func TestNotificationService_List_Filters(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := userContext(domain.RoleEstimator)
	userCtx := auth.MustFromContext(ctx)

	read := createNotification(t, db, &userCtx.UserID, "Already read")
	require.NoError(t, db.Model(read).Update("is_read", true).Error)
	createNotification(t, db, &userCtx.UserID, "Unread")

	page, err := svc.List(ctx, &service.NotificationListOptions{UnreadOnly: true}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.List(ctx, &service.NotificationListOptions{Type: string(domain.NotificationTypePriceChange)}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := userContext(domain.RoleEstimator)
	userCtx := auth.MustFromContext(ctx)
	notification := createNotification(t, db, &userCtx.UserID, "To read")

	marked, err := svc.MarkAsRead(ctx, notification.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsRead)
	require.NotNil(t, marked.ReadAt)

	t.Run("idempotent", func(t *testing.T) {
		again, err := svc.MarkAsRead(ctx, notification.ID)
		require.NoError(t, err)
		assert.True(t, again.IsRead)
		assert.Equal(t, marked.ReadAt, again.ReadAt)
	})

	t.Run("not owned", func(t *testing.T) {
		otherID := uuid.New()
		foreign := createNotification(t, db, &otherID, "Not yours")

		_, err := svc.MarkAsRead(ctx, foreign.ID)
		assert.ErrorIs(t, err, service.ErrNotificationNotOwned)
	})

	t.Run("admin can read any", func(t *testing.T) {
		otherID := uuid.New()
		foreign := createNotification(t, db, &otherID, "Admin visible")

		_, err := svc.MarkAsRead(userContext(domain.RoleAdmin), foreign.ID)
		assert.NoError(t, err)
	})

	t.Run("missing notification", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotificationNotFound)
	})
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := userContext(domain.RoleEstimator)
	userCtx := auth.MustFromContext(ctx)

	createNotification(t, db, &userCtx.UserID, "First")
	createNotification(t, db, &userCtx.UserID, "Second")
	createNotification(t, db, nil, "Broadcast")

	result, err := svc.MarkAllAsRead(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Updated)

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count.Count)

	t.Run("second run touches nothing", func(t *testing.T) {
		result, err := svc.MarkAllAsRead(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.Updated)
	})
}

func TestNotificationService_UnreadCount(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := userContext(domain.RoleEstimator)
	userCtx := auth.MustFromContext(ctx)

	createNotification(t, db, &userCtx.UserID, "Unread one")
	createNotification(t, db, nil, "Broadcast")
	read := createNotification(t, db, &userCtx.UserID, "Read one")
	require.NoError(t, db.Model(read).Update("is_read", true).Error)

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Count)
}

func TestNotificationService_Delete(t *testing.T) {
	svc, db := setupNotificationService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := userContext(domain.RoleEstimator)
	userCtx := auth.MustFromContext(ctx)
	notification := createNotification(t, db, &userCtx.UserID, "Remove me")

	require.NoError(t, svc.Delete(ctx, notification.ID))

	_, err := svc.GetByID(ctx, notification.ID)
	assert.ErrorIs(t, err, service.ErrNotificationNotFound)

	t.Run("not owned", func(t *testing.T) {
		otherID := uuid.New()
		foreign := createNotification(t, db, &otherID, "Protected")
		assert.ErrorIs(t, svc.Delete(ctx, foreign.ID), service.ErrNotificationNotOwned)
	})
}
