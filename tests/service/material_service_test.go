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

func setupMaterialService(t *testing.T) (*service.MaterialService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewMaterialService(
		repository.NewMaterialRepository(db),
		repository.NewPriceChangeRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func uniqueMaterialID() string {
	return fmt.Sprintf("MAT-%d", time.Now().UnixNano()%1_000_000_000)
}

func TestMaterialService_Create(t *testing.T) {
	svc, db := setupMaterialService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	materialID := uniqueMaterialID()
	material, err := svc.Create(ctx, &service.CreateMaterialInput{
		MaterialID:  materialID,
		Description: "25mm conduit",
		Unit:        "m",
		UnitCost:    3.4,
		StateCode:   "NSW",
	})
	require.NoError(t, err)
	assert.Equal(t, materialID, material.MaterialID)
	assert.Equal(t, 3.4, material.UnitCost)

	t.Run("duplicate reference conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, &service.CreateMaterialInput{
			MaterialID:  materialID,
			Description: "Different description",
		})
		assert.ErrorIs(t, err, service.ErrMaterialExists)
	})
}

func TestMaterialService_Update_PriceChangeLogged(t *testing.T) {
	svc, db := setupMaterialService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestMaterial(t, db, 10.0)

	newCost := 12.5
	updated, err := svc.Update(ctx, created.ID, &service.UpdateMaterialInput{UnitCost: &newCost})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.UnitCost)

	var changes []domain.PriceChangeLog
	require.NoError(t, db.Where("item_ref = ?", created.MaterialID).Find(&changes).Error)
	require.Len(t, changes, 1)
	assert.Equal(t, "material", changes[0].ItemType)
	assert.Equal(t, 10.0, changes[0].OldPrice)
	assert.Equal(t, 12.5, changes[0].NewPrice)
	assert.InDelta(t, 25.0, changes[0].ChangePct, 0.001)
	assert.Equal(t, domain.PriceChangeSourceManual, changes[0].Source)

	t.Run("same price is not logged", func(t *testing.T) {
		samePrice := 12.5
		_, err := svc.Update(ctx, created.ID, &service.UpdateMaterialInput{UnitCost: &samePrice})
		require.NoError(t, err)

		require.NoError(t, db.Where("item_ref = ?", created.MaterialID).Find(&changes).Error)
		assert.Len(t, changes, 1)
	})

	t.Run("non-price update is not logged", func(t *testing.T) {
		description := "Renamed part"
		_, err := svc.Update(ctx, created.ID, &service.UpdateMaterialInput{Description: &description})
		require.NoError(t, err)

		require.NoError(t, db.Where("item_ref = ?", created.MaterialID).Find(&changes).Error)
		assert.Len(t, changes, 1)
	})
}

func TestMaterialService_Update_Partial(t *testing.T) {
	svc, db := setupMaterialService(t)
	defer testutil.CleanupTestData(t, db)

	created := testutil.CreateTestMaterial(t, db, 5.0)

	site := "Western depot"
	updated, err := svc.Update(context.Background(), created.ID, &service.UpdateMaterialInput{Site: &site})
	require.NoError(t, err)
	assert.Equal(t, "Western depot", updated.Site)
	assert.Equal(t, 5.0, updated.UnitCost)
	assert.Equal(t, created.Description, updated.Description)
}

func TestMaterialService_List(t *testing.T) {
	svc, db := setupMaterialService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestMaterial(t, db, 7.0)

	page, err := svc.List(ctx, &repository.MaterialFilter{Search: created.MaterialID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	empty, err := svc.List(ctx, &repository.MaterialFilter{Search: "no-such-material-ref"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, empty.Total)
}

func TestMaterialService_Delete(t *testing.T) {
	svc, db := setupMaterialService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestMaterial(t, db, 2.0)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err := svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrMaterialNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), service.ErrMaterialNotFound)
}

func TestMaterialService_Stats(t *testing.T) {
	svc, db := setupMaterialService(t)
	testutil.CleanupTestData(t, db)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	testutil.CreateTestMaterial(t, db, 10)
	testutil.CreateTestMaterial(t, db, 20)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Count)
	assert.Equal(t, 30.0, stats.TotalValue)
}
