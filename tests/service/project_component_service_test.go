package service_test

import (
	"context"
	"testing"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupComponentService(t *testing.T) (*service.ProjectComponentService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewProjectComponentService(
		repository.NewProjectComponentRepository(db),
		repository.NewProjectRepository(db),
		repository.NewMaterialRepository(db),
		repository.NewEquipmentRepository(db),
		repository.NewLabourRateRepository(db),
		repository.NewNotificationRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestComponentService_AddMaterial_SnapshotPrice(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Cable renewal")
	material := testutil.CreateTestMaterial(t, db, 12.5)

	line, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
		MaterialRef: material.MaterialID,
		Quantity:    100,
	})
	require.NoError(t, err)

	assert.Equal(t, 12.5, line.UnitPrice)
	assert.Equal(t, 1250.0, line.TotalPrice)
	// Description defaults from the catalog entry
	assert.Equal(t, material.Description, line.Description)

	t.Run("catalog change does not touch the line", func(t *testing.T) {
		require.NoError(t, db.Model(material).Update("unit_cost", 99.0).Error)

		lines, err := svc.ListMaterials(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 12.5, lines[0].UnitPrice)
	})
}

func TestComponentService_AddMaterial_ExplicitPrice(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Cable renewal")
	material := testutil.CreateTestMaterial(t, db, 12.5)

	t.Run("override wins over catalog", func(t *testing.T) {
		price := 10.0
		line, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
			MaterialRef: material.MaterialID,
			Quantity:    10,
			UnitPrice:   &price,
		})
		require.NoError(t, err)
		assert.Equal(t, 10.0, line.UnitPrice)
		assert.Equal(t, 100.0, line.TotalPrice)
	})

	t.Run("unknown reference with explicit price is allowed", func(t *testing.T) {
		price := 42.0
		line, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
			MaterialRef: "MAT-CUSTOM",
			Description: "One-off bracket",
			Quantity:    2,
			UnitPrice:   &price,
		})
		require.NoError(t, err)
		assert.Equal(t, 84.0, line.TotalPrice)
	})

	t.Run("unknown reference without price fails", func(t *testing.T) {
		_, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
			MaterialRef: "MAT-MISSING",
			Quantity:    1,
		})
		assert.ErrorIs(t, err, service.ErrMaterialNotFound)
	})
}

func TestComponentService_AddEquipment(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Substation works")
	equipment := testutil.CreateTestEquipment(t, db, 350)

	line, err := svc.AddEquipment(ctx, project.ID, &service.AddProjectEquipmentInput{
		EquipmentRef: equipment.EquipmentID,
		Quantity:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, 350.0, line.UnitPrice)
	assert.Equal(t, 1400.0, line.TotalPrice)
	assert.Equal(t, equipment.EquipmentName, line.Description)

	t.Run("unknown reference without price fails", func(t *testing.T) {
		_, err := svc.AddEquipment(ctx, project.ID, &service.AddProjectEquipmentInput{
			EquipmentRef: "EQP-MISSING",
			Quantity:     1,
		})
		assert.ErrorIs(t, err, service.ErrEquipmentNotFound)
	})
}

func TestComponentService_AddLabour(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	// Project is NSW; the rate exists only in NSW
	project := testutil.CreateTestProject(t, db, "Overhead line works")
	labourType := uniqueLabourType("linesworker")
	testutil.CreateTestLabourRate(t, db, labourType, "NSW", 800, 8)

	t.Run("state defaults to the project state", func(t *testing.T) {
		line, err := svc.AddLabour(ctx, project.ID, &service.AddProjectLabourInput{
			LabourType: labourType,
			Persons:    3,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StateNSW, line.StateCode)
		// unit rate = 800 / 8 = 100/h; default hours come from the rate
		assert.Equal(t, 100.0, line.UnitRate)
		assert.Equal(t, 8.0, line.Hours)
		assert.Equal(t, 2400.0, line.TotalPrice)
	})

	t.Run("explicit hours override the rate default", func(t *testing.T) {
		hours := 4.0
		line, err := svc.AddLabour(ctx, project.ID, &service.AddProjectLabourInput{
			LabourType: labourType,
			Persons:    2,
			Hours:      &hours,
		})
		require.NoError(t, err)
		assert.Equal(t, 800.0, line.TotalPrice)
	})

	t.Run("no fallback to other states", func(t *testing.T) {
		_, err := svc.AddLabour(ctx, project.ID, &service.AddProjectLabourInput{
			LabourType: labourType,
			StateCode:  "VIC",
			Persons:    1,
		})
		assert.ErrorIs(t, err, service.ErrLabourRateNotFound)
	})

	t.Run("invalid state code", func(t *testing.T) {
		_, err := svc.AddLabour(ctx, project.ID, &service.AddProjectLabourInput{
			LabourType: labourType,
			StateCode:  "ZZ",
			Persons:    1,
		})
		assert.ErrorIs(t, err, service.ErrInvalidStateCode)
	})
}

func TestComponentService_LineOwnership(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Owner project")
	other := testutil.CreateTestProject(t, db, "Other project")
	material := testutil.CreateTestMaterial(t, db, 20)

	line, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
		MaterialRef: material.MaterialID,
		Quantity:    5,
	})
	require.NoError(t, err)

	quantity := 10.0
	_, err = svc.UpdateMaterial(ctx, other.ID, line.ID, &service.UpdateComponentLineInput{Quantity: &quantity})
	assert.ErrorIs(t, err, service.ErrProjectLineNotFound)

	assert.ErrorIs(t, svc.DeleteMaterial(ctx, other.ID, line.ID), service.ErrProjectLineNotFound)
}

func TestComponentService_UpdateMaterial_RecomputesTotal(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Rework project")
	material := testutil.CreateTestMaterial(t, db, 15)

	line, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
		MaterialRef: material.MaterialID,
		Quantity:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, line.TotalPrice)

	quantity := 20.0
	updated, err := svc.UpdateMaterial(ctx, project.ID, line.ID, &service.UpdateComponentLineInput{Quantity: &quantity})
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.TotalPrice)
}

func TestComponentService_Totals(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Fully costed project")
	material := testutil.CreateTestMaterial(t, db, 10)
	equipment := testutil.CreateTestEquipment(t, db, 100)
	labourType := uniqueLabourType("electrician")
	testutil.CreateTestLabourRate(t, db, labourType, "NSW", 880, 8)

	t.Run("empty project has zero totals", func(t *testing.T) {
		totals, err := svc.Totals(ctx, project.ID)
		require.NoError(t, err)
		assert.Zero(t, totals.GrandTotal)
	})

	_, err := svc.AddMaterial(ctx, project.ID, &service.AddProjectMaterialInput{
		MaterialRef: material.MaterialID, Quantity: 50,
	})
	require.NoError(t, err)
	_, err = svc.AddEquipment(ctx, project.ID, &service.AddProjectEquipmentInput{
		EquipmentRef: equipment.EquipmentID, Quantity: 2,
	})
	require.NoError(t, err)
	_, err = svc.AddLabour(ctx, project.ID, &service.AddProjectLabourInput{
		LabourType: labourType, Persons: 2,
	})
	require.NoError(t, err)
	_, err = svc.CreateExternalCost(ctx, project.ID, &service.CreateExternalCostInput{
		Description: "Council permit", Amount: 300,
	})
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, totals.MaterialsCost)
	assert.Equal(t, 200.0, totals.EquipmentCost)
	assert.Equal(t, 1760.0, totals.LabourCost)
	assert.Equal(t, 300.0, totals.ExternalCost)
	assert.Equal(t, 2760.0, totals.GrandTotal)

	t.Run("actual cost mirrors the grand total", func(t *testing.T) {
		var refreshed domain.Project
		require.NoError(t, db.First(&refreshed, "id = ?", project.ID).Error)
		assert.Equal(t, 2760.0, refreshed.ActualCost)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Totals(ctx, testutil.RandomUUID())
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})
}

func TestComponentService_Tasks(t *testing.T) {
	svc, db := setupComponentService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Task project")

	due := "2026-10-15"
	task, err := svc.CreateTask(ctx, project.ID, &service.CreateTaskInput{
		Name:     "Site survey",
		Assignee: "m.wren",
		DueDate:  &due,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status)

	status := "completed"
	updated, err := svc.UpdateTask(ctx, project.ID, task.ID, &service.UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)

	require.NoError(t, svc.DeleteTask(ctx, project.ID, task.ID))

	tasks, err := svc.ListTasks(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
