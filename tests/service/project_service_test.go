package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProjectService(t *testing.T) (*service.ProjectService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewNotificationRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestProjectService_Create(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	start := "2026-09-01"
	project, err := svc.Create(ctx, &service.CreateProjectInput{
		Name:        "Feeder replacement stage 2",
		StateCode:   "VIC",
		Budget:      180000,
		StartDate:   &start,
		TeamMembers: []string{"j.doyle", "m.wren"},
	})
	require.NoError(t, err)

	assert.NotEqual(t, "", project.ID.String())
	assert.Equal(t, domain.ProjectStatusPlanning, project.Status)
	assert.Equal(t, domain.ProjectPriorityMedium, project.Priority)
	assert.Equal(t, domain.StateVIC, project.StateCode)
	require.NotNil(t, project.StartDate)
	assert.Equal(t, "2026-09-01T00:00:00Z", *project.StartDate)
	assert.Len(t, project.TeamMembers, 2)
}

func TestProjectService_Create_InvalidDate(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)

	bad := "01/09/2026"
	_, err := svc.Create(context.Background(), &service.CreateProjectInput{Name: "X", StartDate: &bad})
	assert.Error(t, err)
}

func TestProjectService_Update_Partial(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestProject(t, db, "Switchyard fencing")

	progress := 40
	status := "in_progress"
	updated, err := svc.Update(ctx, created.ID, &service.UpdateProjectInput{
		Status:   &status,
		Progress: &progress,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProjectStatusInProgress, updated.Status)
	assert.Equal(t, 40, updated.Progress)
	// Untouched fields survive the partial update
	assert.Equal(t, "Switchyard fencing", updated.Name)
	assert.Equal(t, 50000.0, updated.Budget)

	t.Run("missing project", func(t *testing.T) {
		_, err := svc.Update(ctx, testutil.RandomUUID(), &service.UpdateProjectInput{Progress: &progress})
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})
}

func TestProjectService_Update_CompletionNotification(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestProject(t, db, "Pole replacement program")

	status := "completed"
	_, err := svc.Update(ctx, created.ID, &service.UpdateProjectInput{Status: &status})
	require.NoError(t, err)

	var count int64
	err = db.Model(&domain.Notification{}).
		Where("type = ? AND entity_id = ?", domain.NotificationTypeProjectCompleted, created.ID.String()).
		Count(&count).Error
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestProjectService_List_Filters(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	marker := fmt.Sprintf("batch-%d", time.Now().UnixNano()%1_000_000_000)
	for i := 0; i < 3; i++ {
		testutil.CreateTestProject(t, db, fmt.Sprintf("%s project %d", marker, i))
	}

	t.Run("search", func(t *testing.T) {
		page, err := svc.List(ctx, &repository.ProjectFilter{Search: marker}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
	})

	t.Run("status filter excludes", func(t *testing.T) {
		page, err := svc.List(ctx, &repository.ProjectFilter{Search: marker, Status: "completed"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 0, page.Total)
	})

	t.Run("pagination clamps page size", func(t *testing.T) {
		page, err := svc.List(ctx, &repository.ProjectFilter{Search: marker}, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page.PageSize)
		assert.Equal(t, 2, page.TotalPages)

		clamped, err := svc.List(ctx, &repository.ProjectFilter{Search: marker}, 0, -1)
		require.NoError(t, err)
		assert.Equal(t, 1, clamped.Page)
		assert.Equal(t, 20, clamped.PageSize)
	})
}

func TestProjectService_Recent(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	older := testutil.CreateTestProject(t, db, "Older project")
	newer := testutil.CreateTestProject(t, db, "Newer project")

	// Touch the older project so it becomes the most recently updated
	require.NoError(t, db.Model(older).Update("progress", 10).Error)

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, older.ID, recent[0].ID)
	assert.Equal(t, newer.ID, recent[1].ID)

	t.Run("limit out of range falls back to default", func(t *testing.T) {
		_, err := svc.Recent(ctx, 500)
		assert.NoError(t, err)
	})
}

func TestProjectService_Delete(t *testing.T) {
	svc, db := setupProjectService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestProject(t, db, "To be removed")

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err := svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, testutil.RandomUUID()), service.ErrProjectNotFound)
}
