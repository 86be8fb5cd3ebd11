package service_test

import (
	"context"
	"testing"

	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/datawarehouse"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPriceSyncService_WarehouseDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestData(t, db)

	// A disabled warehouse config yields a nil client
	client, err := datawarehouse.NewClient(&config.DataWarehouseConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, client)

	svc := service.NewPriceSyncService(
		client,
		repository.NewMaterialRepository(db),
		repository.NewEquipmentRepository(db),
		repository.NewPriceChangeRepository(db),
		repository.NewNotificationRepository(db),
		zap.NewNop(),
	)

	result, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, service.ErrWarehouseDisabled)
	assert.Nil(t, result)
}

func TestDataWarehouseClient_MissingCredentials(t *testing.T) {
	client, err := datawarehouse.NewClient(&config.DataWarehouseConfig{
		Enabled: true,
		URL:     "sqlserver.example.internal",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
}
