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

func seedPriceChange(t *testing.T, db *gorm.DB, itemType, itemRef string, source domain.PriceChangeSource, oldPrice, newPrice float64) {
	change := &domain.PriceChangeLog{
		ItemType:  itemType,
		ItemRef:   itemRef,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		ChangePct: (newPrice - oldPrice) / oldPrice * 100,
		Source:    source,
		StateCode: domain.StateNSW,
	}
	require.NoError(t, db.Create(change).Error)
}

func TestPriceChangeService_List(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	svc := service.NewPriceChangeService(repository.NewPriceChangeRepository(db), zap.NewNop())
	ctx := context.Background()

	seedPriceChange(t, db, "material", "MAT-001", domain.PriceChangeSourceManual, 10, 12)
	seedPriceChange(t, db, "material", "MAT-002", domain.PriceChangeSourceWarehouseSync, 20, 18)
	seedPriceChange(t, db, "equipment", "EQ-001", domain.PriceChangeSourceWarehouseSync, 300, 330)

	t.Run("all changes", func(t *testing.T) {
		result, err := svc.List(ctx, nil, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 3, result.Total)
	})

	t.Run("by item type", func(t *testing.T) {
		result, err := svc.List(ctx, &repository.PriceChangeFilter{ItemType: "equipment"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, result.Total)
	})

	t.Run("by source", func(t *testing.T) {
		result, err := svc.List(ctx, &repository.PriceChangeFilter{Source: string(domain.PriceChangeSourceWarehouseSync)}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, result.Total)
	})

	t.Run("by time window", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Hour)
		result, err := svc.List(ctx, &repository.PriceChangeFilter{StartTime: &future}, 1, 20)
		require.NoError(t, err)
		assert.Zero(t, result.Total)
	})

	t.Run("page size is clamped", func(t *testing.T) {
		result, err := svc.List(ctx, nil, 0, 500)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 200, result.PageSize)
	})
}

func TestPriceChangeService_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestData(t, db)
	svc := service.NewPriceChangeService(repository.NewPriceChangeRepository(db), zap.NewNop())
	ctx := context.Background()

	itemRef := fmt.Sprintf("MAT-HIST-%d", time.Now().UnixNano()%1_000_000_000)
	seedPriceChange(t, db, "material", itemRef, domain.PriceChangeSourceManual, 10, 12)
	seedPriceChange(t, db, "material", itemRef, domain.PriceChangeSourceWarehouseSync, 12, 15)
	seedPriceChange(t, db, "material", "MAT-OTHER", domain.PriceChangeSourceManual, 5, 6)

	history, err := svc.History(ctx, "material", itemRef, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first
	assert.Equal(t, 15.0, history[0].NewPrice)
	assert.Equal(t, 12.0, history[1].NewPrice)

	t.Run("limit out of range falls back to default", func(t *testing.T) {
		history, err := svc.History(ctx, "material", itemRef, -1)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})
}
