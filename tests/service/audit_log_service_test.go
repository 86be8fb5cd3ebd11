package service_test

import (
	"context"
	"net/http/httptest"
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

func setupAuditLogService(t *testing.T) (*service.AuditLogService, *gorm.DB) {
	db := testutil.SetupCleanTestDB(t)
	return service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop()), db
}

func TestAuditLogService_Log(t *testing.T) {
	svc, db := setupAuditLogService(t)
	defer testutil.CleanupTestData(t, db)

	userID := uuid.New()
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: userID,
		Email:  "manager@slcgroup.com.au",
		Role:   domain.RoleManager,
	})

	req := httptest.NewRequest("PUT", "/api/v1/materials/42", nil)
	req.RemoteAddr = "10.1.2.3:5000"

	err := svc.Log(ctx, req, service.LogEntry{
		Action:     domain.AuditActionUpdate,
		EntityType: "Material",
		EntityID:   "42",
		OldValues:  map[string]interface{}{"unit_cost": 10.0},
		NewValues:  map[string]interface{}{"unit_cost": 12.5},
	})
	require.NoError(t, err)

	var record domain.AuditLog
	require.NoError(t, db.First(&record, "entity_type = ?", "Material").Error)
	require.NotNil(t, record.UserID)
	assert.Equal(t, userID, *record.UserID)
	assert.Equal(t, "manager@slcgroup.com.au", record.UserEmail)
	assert.Equal(t, domain.AuditActionUpdate, record.Action)
	assert.Equal(t, "10.1.2.3", record.IPAddress)
	assert.Equal(t, "/api/v1/materials/42", record.Path)
	assert.Equal(t, "PUT", record.Method)
	assert.JSONEq(t, `{"unit_cost":10}`, record.OldValues)
	assert.JSONEq(t, `{"unit_cost":12.5}`, record.NewValues)
}

func TestAuditLogService_Log_NoUserOrRequest(t *testing.T) {
	svc, db := setupAuditLogService(t)
	defer testutil.CleanupTestData(t, db)

	err := svc.Log(context.Background(), nil, service.LogEntry{
		Action:     domain.AuditActionDelete,
		EntityType: "Quote",
		EntityID:   uuid.New().String(),
	})
	require.NoError(t, err)

	var record domain.AuditLog
	require.NoError(t, db.First(&record, "entity_type = ?", "Quote").Error)
	assert.Nil(t, record.UserID)
	assert.Empty(t, record.UserEmail)
	// The jsonb columns always receive valid JSON
	assert.Equal(t, "null", record.OldValues)
	assert.Equal(t, "null", record.NewValues)
}

func TestAuditLogService_List(t *testing.T) {
	svc, db := setupAuditLogService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	for _, action := range []domain.AuditAction{domain.AuditActionCreate, domain.AuditActionCreate, domain.AuditActionDelete} {
		require.NoError(t, svc.Log(ctx, nil, service.LogEntry{
			Action:     action,
			EntityType: "Project",
			EntityID:   uuid.New().String(),
		}))
	}

	page, err := svc.List(ctx, &repository.AuditLogFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	createAction := domain.AuditActionCreate
	filtered, err := svc.List(ctx, &repository.AuditLogFilter{Action: &createAction}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, filtered.Total)
}

func TestAuditLogService_ListByEntity(t *testing.T) {
	svc, db := setupAuditLogService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	entityID := uuid.New().String()
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "Project", EntityID: entityID}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionUpdate, EntityType: "Project", EntityID: entityID}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionUpdate, EntityType: "Project", EntityID: uuid.New().String()}))

	history, err := svc.ListByEntity(ctx, "Project", entityID, 50)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAuditLogService_ActivitySummary(t *testing.T) {
	svc, db := setupAuditLogService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "Quote", EntityID: "a"}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "Quote", EntityID: "b"}))
	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionExport, EntityType: "Bulk", EntityID: ""}))

	summary, err := svc.ActivitySummary(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary[domain.AuditActionCreate])
	assert.EqualValues(t, 1, summary[domain.AuditActionExport])
}

func TestAuditLogService_Purge(t *testing.T) {
	svc, db := setupAuditLogService(t)
	defer testutil.CleanupTestData(t, db)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, nil, service.LogEntry{Action: domain.AuditActionCreate, EntityType: "Project", EntityID: "x"}))

	// Age the record past the retention window
	old := time.Now().UTC().AddDate(0, -2, 0)
	require.NoError(t, db.Model(&domain.AuditLog{}).Where("entity_id = ?", "x").Update("created_at", old).Error)

	deleted, err := svc.Purge(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
