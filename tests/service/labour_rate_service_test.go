package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLabourRateService(t *testing.T) (*service.LabourRateService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLabourRateRepository(db)
	return service.NewLabourRateService(repo, zap.NewNop()), db
}

func uniqueLabourType(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

func TestLabourRateService_Create(t *testing.T) {
	svc, db := setupLabourRateService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	labourType := uniqueLabourType("electrician")
	rate, err := svc.Create(ctx, &service.CreateLabourRateInput{
		LabourType:    labourType,
		StateCode:     "NSW",
		CostPerPerson: 880,
		Hours:         8,
	})
	require.NoError(t, err)
	assert.NotZero(t, rate.ID)
	assert.Equal(t, labourType, rate.LabourType)
	assert.Equal(t, 880.0, rate.CostPerPerson)

	t.Run("duplicate type and state conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, &service.CreateLabourRateInput{
			LabourType:    labourType,
			StateCode:     "NSW",
			CostPerPerson: 900,
			Hours:         8,
		})
		assert.ErrorIs(t, err, service.ErrLabourRateExists)
	})

	t.Run("same type in another state is allowed", func(t *testing.T) {
		other, err := svc.Create(ctx, &service.CreateLabourRateInput{
			LabourType:    labourType,
			StateCode:     "VIC",
			CostPerPerson: 920,
			Hours:         8,
		})
		require.NoError(t, err)
		assert.NotEqual(t, rate.ID, other.ID)
	})
}

func TestLabourRateService_Create_DefaultHours(t *testing.T) {
	svc, db := setupLabourRateService(t)
	defer testutil.CleanupTestData(t, db)

	rate, err := svc.Create(context.Background(), &service.CreateLabourRateInput{
		LabourType:    uniqueLabourType("rigger"),
		StateCode:     "QLD",
		CostPerPerson: 760,
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, rate.Hours)
}

func TestLabourRateService_Resolve(t *testing.T) {
	svc, db := setupLabourRateService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	labourType := uniqueLabourType("linesworker")
	testutil.CreateTestLabourRate(t, db, labourType, "NSW", 950, 8)

	t.Run("exact match", func(t *testing.T) {
		rate, err := svc.Resolve(ctx, labourType, "NSW")
		require.NoError(t, err)
		assert.Equal(t, 950.0, rate.CostPerPerson)
	})

	t.Run("no fallback across states", func(t *testing.T) {
		_, err := svc.Resolve(ctx, labourType, "TAS")
		assert.ErrorIs(t, err, service.ErrLabourRateNotFound)
	})

	t.Run("unknown labour type", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "no-such-type", "NSW")
		assert.ErrorIs(t, err, service.ErrLabourRateNotFound)
	})

	t.Run("invalid state code", func(t *testing.T) {
		_, err := svc.Resolve(ctx, labourType, "XX")
		assert.ErrorIs(t, err, service.ErrInvalidStateCode)
	})
}

func TestLabourRateService_Update(t *testing.T) {
	svc, db := setupLabourRateService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestLabourRate(t, db, uniqueLabourType("fitter"), "SA", 700, 8)

	newCost := 750.0
	updated, err := svc.Update(ctx, created.ID, &service.UpdateLabourRateInput{CostPerPerson: &newCost})
	require.NoError(t, err)
	assert.Equal(t, 750.0, updated.CostPerPerson)
	// Hours untouched by the partial update
	assert.Equal(t, 8.0, updated.Hours)

	t.Run("missing rate", func(t *testing.T) {
		_, err := svc.Update(ctx, 999999, &service.UpdateLabourRateInput{CostPerPerson: &newCost})
		assert.ErrorIs(t, err, service.ErrLabourRateNotFound)
	})
}

func TestLabourRateService_Delete(t *testing.T) {
	svc, db := setupLabourRateService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	created := testutil.CreateTestLabourRate(t, db, uniqueLabourType("welder"), "WA", 820, 8)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err := svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrLabourRateNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), service.ErrLabourRateNotFound)
}

func TestLabourRateService_List(t *testing.T) {
	svc, db := setupLabourRateService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	labourType := uniqueLabourType("surveyor")
	testutil.CreateTestLabourRate(t, db, labourType, "NSW", 600, 8)
	testutil.CreateTestLabourRate(t, db, labourType, "VIC", 620, 8)

	page, err := svc.List(ctx, &repository.LabourRateFilter{Search: labourType}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	filtered, err := svc.List(ctx, &repository.LabourRateFilter{Search: labourType, StateCode: "VIC"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, filtered.Total)
}
