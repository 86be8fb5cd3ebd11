package service_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/internal/storage"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupBulkService(t *testing.T) (*service.BulkService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := service.NewBulkService(
		repository.NewMaterialRepository(db),
		repository.NewEquipmentRepository(db),
		repository.NewLabourRateRepository(db),
		repository.NewPriceChangeRepository(db),
		repository.NewNotificationRepository(db),
		store,
		zap.NewNop(),
	)
	return svc, db
}

func TestBulkService_ImportMaterials(t *testing.T) {
	svc, db := setupBulkService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	suffix := time.Now().UnixNano() % 1_000_000_000
	idA := fmt.Sprintf("MAT-IMP-A-%d", suffix)
	idB := fmt.Sprintf("MAT-IMP-B-%d", suffix)

	csvData := fmt.Sprintf(`material_id,description,unit,unit_cost,state_code
%s,HV cable 120mm,m,42.5,NSW
%s,Pillar box,ea,310,VIC
`, idA, idB)

	result, err := svc.Import(ctx, "materials", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Failed)

	var material domain.Material
	require.NoError(t, db.First(&material, "material_id = ?", idA).Error)
	assert.Equal(t, "HV cable 120mm", material.Description)
	assert.Equal(t, 42.5, material.UnitCost)
	assert.Equal(t, domain.StateNSW, material.StateCode)

	t.Run("reimport upserts and logs price changes", func(t *testing.T) {
		update := fmt.Sprintf("material_id,description,unit,unit_cost,state_code\n%s,HV cable 120mm,m,50,NSW\n", idA)
		result, err := svc.Import(ctx, "materials", strings.NewReader(update))
		require.NoError(t, err)
		assert.Zero(t, result.Imported)
		assert.Equal(t, 1, result.Updated)

		var change domain.PriceChangeLog
		require.NoError(t, db.First(&change, "item_ref = ? AND source = ?", idA, domain.PriceChangeSourceBulkImport).Error)
		assert.Equal(t, 42.5, change.OldPrice)
		assert.Equal(t, 50.0, change.NewPrice)
	})

	t.Run("bad rows are collected, import continues", func(t *testing.T) {
		idC := fmt.Sprintf("MAT-IMP-C-%d", suffix)
		mixed := fmt.Sprintf(`material_id,description,unit,unit_cost,state_code
,No id,ea,5,NSW
%s,Valid row,ea,5,NSW
%s,Bad state,ea,5,XX
`, idC, idC)
		result, err := svc.Import(ctx, "materials", strings.NewReader(mixed))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 2, result.Failed)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "line 2")
	})

	t.Run("completion notification is written", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&domain.Notification{}).
			Where("type = ?", domain.NotificationTypeImportCompleted).
			Count(&count).Error)
		assert.Greater(t, count, int64(0))
	})
}

func TestBulkService_ImportLabourRates(t *testing.T) {
	svc, db := setupBulkService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	labourType := fmt.Sprintf("import-crew-%d", time.Now().UnixNano()%1_000_000_000)
	csvData := fmt.Sprintf("labour_type,state_code,cost_per_person,hours\n%s,NSW,880,\n", labourType)

	result, err := svc.Import(ctx, "labour-rates", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	var rate domain.LabourRate
	require.NoError(t, db.First(&rate, "labour_type = ? AND state_code = ?", labourType, "NSW").Error)
	assert.Equal(t, 880.0, rate.CostPerPerson)
	// Blank hours fall back to a full day
	assert.Equal(t, 8.0, rate.Hours)

	t.Run("existing pair is updated in place", func(t *testing.T) {
		update := fmt.Sprintf("labour_type,state_code,cost_per_person,hours\n%s,NSW,920,10\n", labourType)
		result, err := svc.Import(ctx, "labour-rates", strings.NewReader(update))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)

		var count int64
		require.NoError(t, db.Model(&domain.LabourRate{}).
			Where("labour_type = ?", labourType).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestBulkService_Import_UnknownEntity(t *testing.T) {
	svc, db := setupBulkService(t)
	defer testutil.CleanupTestData(t, db)

	_, err := svc.Import(context.Background(), "projects", strings.NewReader("a,b\n1,2\n"))
	assert.ErrorIs(t, err, service.ErrUnknownBulkEntity)
}

func TestBulkService_ExportAndDownload(t *testing.T) {
	svc, db := setupBulkService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	material := testutil.CreateTestMaterial(t, db, 17.25)

	result, err := svc.Export(ctx, "materials")
	require.NoError(t, err)
	assert.Equal(t, "materials", result.Entity)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.GreaterOrEqual(t, result.RowCount, 1)
	assert.NotEmpty(t, result.StoragePath)
	assert.Greater(t, result.SizeBytes, int64(0))

	reader, err := svc.DownloadExport(ctx, result.StoragePath)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(content), "material_id,description,unit,unit_cost")
	assert.Contains(t, string(content), material.MaterialID)

	t.Run("unknown entity", func(t *testing.T) {
		_, err := svc.Export(ctx, "quotes")
		assert.ErrorIs(t, err, service.ErrUnknownBulkEntity)
	})
}
