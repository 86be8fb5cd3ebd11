package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database.
// It uses environment variables or falls back to docker-compose defaults.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "costing_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "costing_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "costing")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	return db
}

// SetupCleanTestDB connects to the test database and wipes data first,
// for tests that depend on exact row counts.
func SetupCleanTestDB(t *testing.T) *gorm.DB {
	db := SetupTestDB(t)
	CleanupTestData(t, db)
	return db
}

// CleanupTestData cleans up test data from all tables.
// This should be called after tests to ensure a clean state.
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"quote_items",
		"quotes",
		"project_materials",
		"project_equipment",
		"project_labours",
		"project_tasks",
		"external_costs",
		"notifications",
		"audit_logs",
		"price_change_logs",
		"system_configs",
		"projects",
		"labour_rates",
		"materials",
		"equipment",
		"users",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestProject creates a project with sensible defaults
func CreateTestProject(t *testing.T, db *gorm.DB, name string) *domain.Project {
	project := &domain.Project{
		Name:      name,
		Status:    domain.ProjectStatusPlanning,
		Priority:  domain.ProjectPriorityMedium,
		StateCode: domain.StateNSW,
		Budget:    50000,
	}
	err := db.Create(project).Error
	require.NoError(t, err)
	return project
}

// CreateTestMaterial creates a catalog material with a unique reference
func CreateTestMaterial(t *testing.T, db *gorm.DB, unitCost float64) *domain.Material {
	material := &domain.Material{
		MaterialID:  fmt.Sprintf("MAT-%d", uniqueSuffix()),
		Description: "Test material",
		Unit:        "each",
		UnitCost:    unitCost,
		StateCode:   domain.StateNSW,
	}
	err := db.Create(material).Error
	require.NoError(t, err)
	return material
}

// CreateTestEquipment creates a catalog equipment item with a unique reference
func CreateTestEquipment(t *testing.T, db *gorm.DB, unitCost float64) *domain.Equipment {
	equipment := &domain.Equipment{
		EquipmentID:   fmt.Sprintf("EQP-%d", uniqueSuffix()),
		EquipmentName: "Test equipment",
		Category:      "access",
		UnitCost:      unitCost,
		StateCode:     domain.StateNSW,
	}
	err := db.Create(equipment).Error
	require.NoError(t, err)
	return equipment
}

// CreateTestLabourRate creates a labour rate for the given type and state
func CreateTestLabourRate(t *testing.T, db *gorm.DB, labourType string, stateCode domain.StateCode, costPerPerson, hours float64) *domain.LabourRate {
	rate := &domain.LabourRate{
		LabourType:    labourType,
		StateCode:     stateCode,
		CostPerPerson: costPerPerson,
		Hours:         hours,
	}
	err := db.Create(rate).Error
	require.NoError(t, err)
	return rate
}

// CreateTestUser creates an active user account with a unique email
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	suffix := uniqueSuffix()
	user := &domain.User{
		Email:          fmt.Sprintf("user%d@example.com", suffix),
		Username:       fmt.Sprintf("user%d", suffix),
		HashedPassword: "not-a-real-hash",
		FullName:       "Test User",
		Role:           role,
		IsActive:       true,
	}
	err := db.Create(user).Error
	require.NoError(t, err)
	return user
}

// NewBroadcastNotification builds an unsaved broadcast notification
func NewBroadcastNotification(title string) *domain.Notification {
	return &domain.Notification{
		Type:     domain.NotificationTypeSystem,
		Severity: domain.SeverityLow,
		Title:    title,
		Message:  "broadcast",
	}
}

// uniqueSuffix returns a unique integer for test data
func uniqueSuffix() int64 {
	return time.Now().UnixNano() % 1_000_000_000
}

// RandomUUID is a convenience wrapper for tests that need throwaway IDs
func RandomUUID() uuid.UUID {
	return uuid.New()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
