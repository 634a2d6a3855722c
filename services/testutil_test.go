package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// newTestDB opens a fresh in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Convert{},
		&models.ActivityRecord{},
		&models.HealthScoreSnapshot{},
		&models.Alert{},
		&models.CallScript{},
		&models.VoiceCall{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		EnvType:              "LOCAL",
		JWTSecretKey:         "test-secret",
		DefaultAdminEmail:    "admin@test.local",
		DefaultAdminPassword: "Test@123",
		DemoSeed:             42,
	}
}

// createTestConvert inserts a convert in the entry stage
func createTestConvert(t *testing.T, db *gorm.DB) *models.Convert {
	t.Helper()

	convert := &models.Convert{
		FirstName: "Chinedu",
		LastName:  "Okafor",
		Phone:     "08031234567",
		Stage:     models.StageNew,
		Source:    models.SourceService,
	}
	require.NoError(t, db.Create(convert).Error)
	return convert
}

// recordTestActivity inserts an activity record directly
func recordTestActivity(t *testing.T, db *gorm.DB, convertID uint, kind models.ActivityType, outcome string, at time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&models.ActivityRecord{
		ConvertID: convertID,
		Type:      kind,
		Outcome:   outcome,
		Timestamp: at,
	}).Error)
}

func testCtx() context.Context {
	return context.Background()
}
