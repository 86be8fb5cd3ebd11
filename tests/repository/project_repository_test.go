package repository_test

import (
	"context"
	"testing"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_Filters(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewProjectRepository(db)
	ctx := context.Background()

	manager := testutil.CreateTestUser(t, db, domain.RoleManager)

	nsw := testutil.CreateTestProject(t, db, "Sydney depot rewire")
	require.NoError(t, db.Model(nsw).Updates(map[string]interface{}{
		"priority":   domain.ProjectPriorityUrgent,
		"manager_id": manager.ID,
	}).Error)

	vic := testutil.CreateTestProject(t, db, "Melbourne substation")
	require.NoError(t, db.Model(vic).Update("state_code", domain.StateVIC).Error)

	t.Run("by state", func(t *testing.T) {
		_, total, err := repo.List(ctx, &repository.ProjectFilter{StateCode: "VIC"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("by priority", func(t *testing.T) {
		projects, total, err := repo.List(ctx, &repository.ProjectFilter{Priority: "urgent"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, nsw.ID, projects[0].ID)
	})

	t.Run("by manager", func(t *testing.T) {
		projects, total, err := repo.List(ctx, &repository.ProjectFilter{ManagerID: &manager.ID}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		// Manager association is preloaded
		require.NotNil(t, projects[0].Manager)
		assert.Equal(t, manager.Email, projects[0].Manager.Email)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		_, total, err := repo.List(ctx, &repository.ProjectFilter{Search: "SYDNEY"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestProjectRepository_UpdateActualCost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewProjectRepository(db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Cost tracking project")

	require.NoError(t, repo.UpdateActualCost(ctx, project.ID, 12345.67))

	loaded, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 12345.67, loaded.ActualCost)
}

func TestProjectRepository_CountByStatus(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewProjectRepository(db)
	ctx := context.Background()

	testutil.CreateTestProject(t, db, "Planning one")
	testutil.CreateTestProject(t, db, "Planning two")
	completed := testutil.CreateTestProject(t, db, "Done")
	require.NoError(t, db.Model(completed).Update("status", domain.ProjectStatusCompleted).Error)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[domain.ProjectStatusPlanning])
	assert.EqualValues(t, 1, counts[domain.ProjectStatusCompleted])
}

func TestProjectRepository_DeleteCascadesComponents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewProjectRepository(db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Cascade project")

	line := &domain.ProjectMaterial{
		ProjectID:   project.ID,
		MaterialRef: "MAT-CASCADE",
		Quantity:    1,
		UnitPrice:   10,
		TotalPrice:  10,
	}
	require.NoError(t, db.Create(line).Error)

	task := &domain.ProjectTask{ProjectID: project.ID, Name: "Orphan check", Status: domain.TaskStatusPending}
	require.NoError(t, db.Create(task).Error)

	require.NoError(t, repo.Delete(ctx, project.ID))

	var materialCount, taskCount int64
	require.NoError(t, db.Model(&domain.ProjectMaterial{}).Where("project_id = ?", project.ID).Count(&materialCount).Error)
	require.NoError(t, db.Model(&domain.ProjectTask{}).Where("project_id = ?", project.ID).Count(&taskCount).Error)
	assert.Zero(t, materialCount)
	assert.Zero(t, taskCount)
}
