package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/models"
)

// backdateConvert rewrites created_at so threshold rules can be pinned
func backdateConvert(t *testing.T, db *gorm.DB, convertID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Convert{}).Where("id = ?", convertID).
		Update("created_at", at).Error)
}

func insertSnapshot(t *testing.T, db *gorm.DB, convertID uint, score int, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.HealthScoreSnapshot{
		ConvertID:  convertID,
		Score:      score,
		Factors:    models.FactorMap{models.FactorRecency: score},
		ComputedAt: at,
	}).Error)
}

func TestAlertScoreDropMediumSeverity(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -10))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	insertSnapshot(t, db, convert.ID, 75, now.AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 55, now.AddDate(0, 0, -1))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, models.RuleScoreDrop, raised[0].Rule)
	assert.Equal(t, models.SeverityMedium, raised[0].Severity)
	assert.Equal(t, models.AlertOpen, raised[0].Status)
}

func TestAlertScoreDropHighSeverity(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -10))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	insertSnapshot(t, db, convert.ID, 62, now.AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 38, now.AddDate(0, 0, -1))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, models.RuleScoreDrop, raised[0].Rule)
	assert.Equal(t, models.SeverityHigh, raised[0].Severity)
}

func TestAlertScoreDropAboveCeilingIgnored(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -10))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	// A drop that stays above 60 is not alert-worthy
	insertSnapshot(t, db, convert.ID, 90, now.AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 70, now.AddDate(0, 0, -1))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	assert.Empty(t, raised)
}

func TestAlertEvaluateDoesNotDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -10))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	insertSnapshot(t, db, convert.ID, 75, now.AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 55, now.AddDate(0, 0, -1))

	first, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&models.Alert{}).
		Where("convert_id = ? AND rule = ?", convert.ID, models.RuleScoreDrop).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAlertAutoResolveWhenConditionClears(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -10))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	insertSnapshot(t, db, convert.ID, 75, now.AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 55, now.AddDate(0, 0, -3))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)

	// Score recovers; the open alert is resolved on the next evaluation
	insertSnapshot(t, db, convert.ID, 80, now.AddDate(0, 0, -1))
	_, err = svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)

	var alert models.Alert
	require.NoError(t, db.First(&alert, raised[0].ID).Error)
	assert.Equal(t, models.AlertResolved, alert.Status)
	require.NotNil(t, alert.ResolvedAt)
}

func TestAlertAcknowledgedNotAutoResolved(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -10))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	insertSnapshot(t, db, convert.ID, 75, now.AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 55, now.AddDate(0, 0, -3))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)

	_, err = svc.UpdateStatus(testCtx(), raised[0].ID, models.AlertAcknowledged)
	require.NoError(t, err)

	insertSnapshot(t, db, convert.ID, 80, now.AddDate(0, 0, -1))
	_, err = svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)

	var alert models.Alert
	require.NoError(t, db.First(&alert, raised[0].ID).Error)
	assert.Equal(t, models.AlertAcknowledged, alert.Status, "a worker owns it now")
}

func TestAlertStageStagnation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	require.NoError(t, db.Model(&models.Convert{}).Where("id = ?", convert.ID).
		Update("stage", models.StageInClasses).Error)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -60))
	recordTestActivity(t, db, convert.ID, models.ActivityStageChange, "in_followup->in_classes",
		now.AddDate(0, 0, -46))
	// Recent contact keeps missed_followup out of the picture (wrong stage
	// anyway) and isolates the stagnation rule.
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -2))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, models.RuleStageStagnation, raised[0].Rule)
	assert.Equal(t, models.SeverityMedium, raised[0].Severity)
}

func TestAlertStageStagnationSkipsTerminalStages(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	require.NoError(t, db.Model(&models.Convert{}).Where("id = ?", convert.ID).
		Update("stage", models.StageEstablished).Error)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -200))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	assert.Empty(t, raised)
}

func TestAlertMissedFollowup(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -30))
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, now.AddDate(0, 0, -22))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, models.RuleMissedFollowup, raised[0].Rule)
	assert.Equal(t, models.SeverityHigh, raised[0].Severity)
}

func TestAlertMissedFollowupExactlyAtThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -30))
	// Exactly 21 days is not yet more than 21 days
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended,
		now.Add(-21*24*time.Hour))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	assert.Empty(t, raised)
}

func TestAlertMissedFollowupWithinThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	backdateConvert(t, db, convert.ID, now.AddDate(0, 0, -30))
	recordTestActivity(t, db, convert.ID, models.ActivityVoiceCall, string(models.OutcomeInterested),
		now.AddDate(0, 0, -20))

	raised, err := svc.Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	assert.Empty(t, raised)
}

func TestAlertStatusWorkflow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)
	convert := createTestConvert(t, db)

	alert := &models.Alert{
		ConvertID: convert.ID,
		Rule:      models.RuleMissedFollowup,
		Severity:  models.SeverityHigh,
		Title:     "Missed follow-up",
		Status:    models.AlertOpen,
	}
	require.NoError(t, db.Create(alert).Error)

	for _, status := range []models.AlertStatus{
		models.AlertAcknowledged, models.AlertInProgress, models.AlertResolved,
	} {
		updated, err := svc.UpdateStatus(testCtx(), alert.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	var final models.Alert
	require.NoError(t, db.First(&final, alert.ID).Error)
	assert.NotNil(t, final.ResolvedAt)

	// Resolved is terminal
	_, err := svc.UpdateStatus(testCtx(), alert.ID, models.AlertOpen)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAlertStatusInvalidEdge(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)
	convert := createTestConvert(t, db)

	alert := &models.Alert{
		ConvertID: convert.ID,
		Rule:      models.RuleScoreDrop,
		Severity:  models.SeverityMedium,
		Title:     "Health score dropped",
		Status:    models.AlertOpen,
	}
	require.NoError(t, db.Create(alert).Error)

	// open -> in_progress skips acknowledgement
	_, err := svc.UpdateStatus(testCtx(), alert.ID, models.AlertInProgress)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Same-status update is an idempotent no-op
	updated, err := svc.UpdateStatus(testCtx(), alert.ID, models.AlertOpen)
	require.NoError(t, err)
	assert.Equal(t, models.AlertOpen, updated.Status)
}

func TestGetAlertsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db, newTestConfig()).(*AlertService)
	convert := createTestConvert(t, db)
	other := createTestConvert(t, db)

	for _, a := range []models.Alert{
		{ConvertID: convert.ID, Rule: models.RuleScoreDrop, Severity: models.SeverityMedium, Title: "a", Status: models.AlertOpen},
		{ConvertID: convert.ID, Rule: models.RuleMissedFollowup, Severity: models.SeverityHigh, Title: "b", Status: models.AlertResolved},
		{ConvertID: other.ID, Rule: models.RuleStageStagnation, Severity: models.SeverityMedium, Title: "c", Status: models.AlertOpen},
	} {
		alert := a
		require.NoError(t, db.Create(&alert).Error)
	}

	alerts, total, err := svc.GetAlerts(testCtx(), AlertFilter{Status: models.AlertOpen}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, alerts, 2)

	alerts, total, err = svc.GetAlerts(testCtx(), AlertFilter{ConvertID: convert.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	alerts, total, err = svc.GetAlerts(testCtx(), AlertFilter{Severity: models.SeverityHigh}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.RuleMissedFollowup, alerts[0].Rule)
}
