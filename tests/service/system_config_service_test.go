package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

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

func setupConfigService(t *testing.T) (*service.SystemConfigService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	return service.NewSystemConfigService(repository.NewSystemConfigRepository(db), zap.NewNop()), db
}

func uniqueConfigKey(prefix string) string {
	return fmt.Sprintf("%s.%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

func TestSystemConfigService_SetAndGet(t *testing.T) {
	svc, db := setupConfigService(t)
	defer testutil.CleanupTestData(t, db)

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: uuid.New(),
		Email:  "admin@slcgroup.com.au",
		Role:   domain.RoleAdmin,
	})

	key := uniqueConfigKey("quotes.default_validity_days")
	created, err := svc.Set(ctx, &service.SetConfigInput{
		Key:       key,
		Value:     "30",
		ValueType: "int",
	})
	require.NoError(t, err)
	assert.Equal(t, "30", created.Value)
	assert.Equal(t, "int", created.ValueType)
	assert.Equal(t, "admin@slcgroup.com.au", created.UpdatedBy)

	got, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "30", got.Value)

	t.Run("set replaces the existing value", func(t *testing.T) {
		updated, err := svc.Set(ctx, &service.SetConfigInput{Key: key, Value: "45", ValueType: "int"})
		require.NoError(t, err)
		assert.Equal(t, "45", updated.Value)

		got, err := svc.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "45", got.Value)
	})
}

func TestSystemConfigService_Set_TypeValidation(t *testing.T) {
	svc, db := setupConfigService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	tests := []struct {
		name      string
		value     string
		valueType string
		wantErr   bool
	}{
		{name: "valid int", value: "42", valueType: "int"},
		{name: "invalid int", value: "4.2", valueType: "int", wantErr: true},
		{name: "valid float", value: "10.5", valueType: "float"},
		{name: "invalid float", value: "ten", valueType: "float", wantErr: true},
		{name: "valid bool", value: "true", valueType: "bool"},
		{name: "invalid bool", value: "yes please", valueType: "bool", wantErr: true},
		{name: "anything is a string", value: "!@#$", valueType: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Set(ctx, &service.SetConfigInput{
				Key:       uniqueConfigKey("validation"),
				Value:     tt.value,
				ValueType: tt.valueType,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidConfigValue)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSystemConfigService_Set_DefaultType(t *testing.T) {
	svc, db := setupConfigService(t)
	defer testutil.CleanupTestData(t, db)

	created, err := svc.Set(context.Background(), &service.SetConfigInput{
		Key:   uniqueConfigKey("branding.company_name"),
		Value: "SLC Group",
	})
	require.NoError(t, err)
	assert.Equal(t, "string", created.ValueType)
}

func TestSystemConfigService_GetAndDelete_Missing(t *testing.T) {
	svc, db := setupConfigService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	_, err := svc.Get(ctx, "no.such.key")
	assert.ErrorIs(t, err, service.ErrConfigNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "no.such.key"), service.ErrConfigNotFound)
}

func TestSystemConfigService_Delete(t *testing.T) {
	svc, db := setupConfigService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	key := uniqueConfigKey("temp.value")
	_, err := svc.Set(ctx, &service.SetConfigInput{Key: key, Value: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, key))

	_, err = svc.Get(ctx, key)
	assert.ErrorIs(t, err, service.ErrConfigNotFound)
}

func TestSystemConfigService_List(t *testing.T) {
	svc, db := setupConfigService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	keyA := uniqueConfigKey("a.key")
	keyB := uniqueConfigKey("b.key")
	_, err := svc.Set(ctx, &service.SetConfigInput{Key: keyB, Value: "2"})
	require.NoError(t, err)
	_, err = svc.Set(ctx, &service.SetConfigInput{Key: keyA, Value: "1"})
	require.NoError(t, err)

	configs, err := svc.List(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(configs), 2)

	// Ordered by key
	var keys []string
	for _, cfg := range configs {
		keys = append(keys, cfg.Key)
	}
	assert.Less(t, indexOf(keys, keyA), indexOf(keys, keyB))
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
