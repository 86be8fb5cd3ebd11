package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, userID *uuid.UUID, notificationType domain.NotificationType, isRead bool) *domain.Notification {
	notification := &domain.Notification{
		UserID:   userID,
		Type:     notificationType,
		Severity: domain.SeverityLow,
		Title:    "seeded",
		Message:  "seeded",
		IsRead:   isRead,
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationRepository_List_VisibilityAndFilters(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewNotificationRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()

	seedNotification(t, db, &userID, domain.NotificationTypeSystem, false)
	seedNotification(t, db, &userID, domain.NotificationTypePriceChange, true)
	seedNotification(t, db, nil, domain.NotificationTypeSystem, false)
	seedNotification(t, db, &otherID, domain.NotificationTypeSystem, false)

	t.Run("own plus broadcast", func(t *testing.T) {
		_, total, err := repo.List(ctx, userID, 1, 20, false, "", "")
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("unread only", func(t *testing.T) {
		_, total, err := repo.List(ctx, userID, 1, 20, true, "", "")
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("by type", func(t *testing.T) {
		_, total, err := repo.List(ctx, userID, 1, 20, false, string(domain.NotificationTypePriceChange), "")
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestNotificationRepository_MarkAllAsRead(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewNotificationRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()

	seedNotification(t, db, &userID, domain.NotificationTypeSystem, false)
	seedNotification(t, db, nil, domain.NotificationTypeSystem, false)
	untouched := seedNotification(t, db, &otherID, domain.NotificationTypeSystem, false)

	updated, err := repo.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	// Another user's notification stays unread
	var loaded domain.Notification
	require.NoError(t, db.First(&loaded, "id = ?", untouched.ID).Error)
	assert.False(t, loaded.IsRead)

	again, err := repo.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestNotificationRepository_DeleteOlderThan(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewNotificationRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	oldRead := seedNotification(t, db, &userID, domain.NotificationTypeSystem, true)
	oldUnread := seedNotification(t, db, &userID, domain.NotificationTypeSystem, false)
	recent := seedNotification(t, db, &userID, domain.NotificationTypeSystem, true)

	aged := time.Now().UTC().AddDate(0, -3, 0)
	require.NoError(t, db.Model(&domain.Notification{}).
		Where("id IN ?", []uuid.UUID{oldRead.ID, oldUnread.ID}).
		Update("created_at", aged).Error)

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().UTC().AddDate(0, -1, 0))
	require.NoError(t, err)
	// Only read notifications are purged
	assert.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)

	var kept domain.Notification
	require.NoError(t, db.First(&kept, "id = ?", recent.ID).Error)
}
