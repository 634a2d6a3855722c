package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func TestEnsureAdminIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeedService(db, newTestConfig(), nil)

	require.NoError(t, svc.EnsureAdmin(testCtx()))
	require.NoError(t, svc.EnsureAdmin(testCtx()))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@test.local").First(&admin).Error)
	assert.Equal(t, models.RoleClientAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, models.CheckPasswordHash("Test@123", admin.Password))
}

func TestSeedDemoDataSkipsExistingConverts(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeedService(db, newTestConfig(), nil)
	createTestConvert(t, db)

	require.NoError(t, svc.SeedDemoData(testCtx()))

	var count int64
	require.NoError(t, db.Model(&models.Convert{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "an already populated database is left alone")
}

func TestGetDemoStatsCountsTables(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeedService(db, newTestConfig(), nil)

	convert := createTestConvert(t, db)
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeCompleted, convert.CreatedAt)
	require.NoError(t, db.Create(&models.Alert{
		ConvertID: convert.ID, Rule: models.RuleMissedFollowup,
		Severity: models.SeverityHigh, Title: "x", Status: models.AlertOpen,
	}).Error)

	stats, err := svc.GetDemoStats(testCtx())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Converts)
	assert.EqualValues(t, 1, stats.Activities)
	assert.EqualValues(t, 1, stats.Alerts)
	assert.Zero(t, stats.VoiceCalls)
}

func TestResetDemoDataReseeds(t *testing.T) {
	if testing.Short() {
		t.Skip("reseeds the full demo dataset")
	}

	db := newTestDB(t)
	svc := NewSeedService(db, newTestConfig(), nil)
	createTestConvert(t, db)

	require.NoError(t, svc.ResetDemoData(testCtx()))

	stats, err := svc.GetDemoStats(testCtx())
	require.NoError(t, err)
	assert.EqualValues(t, 100, stats.Converts)
	assert.EqualValues(t, 4, stats.Scripts)
	assert.EqualValues(t, 15, stats.VoiceCalls)
	// admin plus the seeded staff accounts
	assert.EqualValues(t, 8, stats.Users)

	// Stage walks ran through the real ledger
	var ledger int64
	require.NoError(t, db.Model(&models.ActivityRecord{}).
		Where("type = ?", models.ActivityStageChange).Count(&ledger).Error)
	assert.Greater(t, ledger, int64(0))
}
