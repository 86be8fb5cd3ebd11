package domain_test

import (
	"testing"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStateCode_IsValid(t *testing.T) {
	valid := []domain.StateCode{
		domain.StateNSW, domain.StateVIC, domain.StateQLD, domain.StateNT,
		domain.StateSA, domain.StateWA, domain.StateTAS, domain.StateACT,
	}
	for _, state := range valid {
		assert.True(t, state.IsValid(), "expected %s to be valid", state)
	}

	invalid := []domain.StateCode{"", "XX", "nsw", "NSW "}
	for _, state := range invalid {
		assert.False(t, state.IsValid(), "expected %q to be invalid", state)
	}
}

func TestUserRole_IsValid(t *testing.T) {
	for _, role := range []domain.UserRole{domain.RoleAdmin, domain.RoleManager, domain.RoleEstimator, domain.RoleViewer} {
		assert.True(t, role.IsValid())
	}
	assert.False(t, domain.UserRole("superuser").IsValid())
	assert.False(t, domain.UserRole("").IsValid())
}

func TestProjectStatus_IsValid(t *testing.T) {
	for _, status := range []domain.ProjectStatus{
		domain.ProjectStatusPlanning, domain.ProjectStatusInProgress,
		domain.ProjectStatusCompleted, domain.ProjectStatusOnHold, domain.ProjectStatusCancelled,
	} {
		assert.True(t, status.IsValid())
	}
	assert.False(t, domain.ProjectStatus("archived").IsValid())
}

func TestQuoteStatus_IsValid(t *testing.T) {
	for _, status := range []domain.QuoteStatus{
		domain.QuoteStatusDraft, domain.QuoteStatusSent, domain.QuoteStatusAccepted,
		domain.QuoteStatusRejected, domain.QuoteStatusExpired,
	} {
		assert.True(t, status.IsValid())
	}
	assert.False(t, domain.QuoteStatus("open").IsValid())
}

func TestQuoteItemType_IsValid(t *testing.T) {
	for _, itemType := range []domain.QuoteItemType{
		domain.QuoteItemTypeMaterial, domain.QuoteItemTypeEquipment,
		domain.QuoteItemTypeLabour, domain.QuoteItemTypeTask, domain.QuoteItemTypeExternal,
	} {
		assert.True(t, itemType.IsValid())
	}

	// Line items use the US spelling on the wire
	assert.Equal(t, domain.QuoteItemType("labor"), domain.QuoteItemTypeLabour)
	assert.False(t, domain.QuoteItemType("labour").IsValid())
}

func TestTaskStatus_IsValid(t *testing.T) {
	for _, status := range []domain.TaskStatus{
		domain.TaskStatusPending, domain.TaskStatusInProgress,
		domain.TaskStatusCompleted, domain.TaskStatusBlocked,
	} {
		assert.True(t, status.IsValid())
	}
	assert.False(t, domain.TaskStatus("done").IsValid())
}

func TestNotificationSeverity_IsValid(t *testing.T) {
	for _, severity := range []domain.NotificationSeverity{
		domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical,
	} {
		assert.True(t, severity.IsValid())
	}
	assert.False(t, domain.NotificationSeverity("urgent").IsValid())
}

func TestNotificationType_IsValid(t *testing.T) {
	for _, notificationType := range []domain.NotificationType{
		domain.NotificationTypePriceChange,
		domain.NotificationTypeQuoteCreated,
		domain.NotificationTypeQuoteExpired,
		domain.NotificationTypeProjectOverBudget,
		domain.NotificationTypeImportCompleted,
		domain.NotificationTypeSystem,
	} {
		assert.True(t, notificationType.IsValid())
	}
	assert.False(t, domain.NotificationType("reminder").IsValid())
}
