package services

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func TestStageTransitionForward(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	updated, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageInFollowup,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageInFollowup, updated.Stage)
	require.NotNil(t, updated.LastActivityAt)

	var records []models.ActivityRecord
	require.NoError(t, db.Where("convert_id = ? AND type = ?",
		convert.ID, models.ActivityStageChange).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "new->in_followup", records[0].Outcome)
}

func TestStageTransitionSkippingStageRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageEstablished,
	})
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Nothing written on a rejected transition
	var count int64
	require.NoError(t, db.Model(&models.ActivityRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStageTransitionUnknownStage(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: "graduated",
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStageTransitionSameStageNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	updated, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageNew,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageNew, updated.Stage)

	var count int64
	require.NoError(t, db.Model(&models.ActivityRecord{}).Count(&count).Error)
	assert.Zero(t, count, "no ledger record for a no-op")
}

func TestStageTransitionOptimisticGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageInFollowup,
	})
	require.NoError(t, err)

	// A second caller still assuming the entry stage loses
	fromNew := models.StageNew
	_, err = svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage:   models.StageInClasses,
		FromStage: &fromNew,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestStageTransitionNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)

	_, err := svc.Transition(testCtx(), 9999, &StageTransitionRequest{
		ToStage: models.StageInFollowup,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStageTransitionToInactiveResolvesAlerts(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	require.NoError(t, db.Create(&models.Alert{
		ConvertID: convert.ID,
		Rule:      models.RuleMissedFollowup,
		Severity:  models.SeverityHigh,
		Title:     "Missed follow-up",
		Status:    models.AlertOpen,
	}).Error)

	_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageInactive,
	})
	require.NoError(t, err)

	var alert models.Alert
	require.NoError(t, db.Where("convert_id = ?", convert.ID).First(&alert).Error)
	assert.Equal(t, models.AlertResolved, alert.Status)
	assert.NotNil(t, alert.ResolvedAt)
}

func TestStageTransitionToInactiveLeavesNoOpenAlerts(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	// A dropping score raises an open alert before the convert drops out
	insertSnapshot(t, db, convert.ID, 75, time.Now().AddDate(0, 0, -7))
	insertSnapshot(t, db, convert.ID, 55, time.Now().AddDate(0, 0, -1))
	raised, err := NewAlertService(db, newTestConfig()).Evaluate(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, raised, 1)

	_, err = svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageInactive,
	})
	require.NoError(t, err)

	// The transition's own snapshot still shows the drop, but the rule
	// sweep must not reopen anything for an inactive convert
	var open int64
	require.NoError(t, db.Model(&models.Alert{}).
		Where("convert_id = ? AND status = ?", convert.ID, models.AlertOpen).
		Count(&open).Error)
	assert.Zero(t, open)

	var total int64
	require.NoError(t, db.Model(&models.Alert{}).
		Where("convert_id = ?", convert.ID).Count(&total).Error)
	assert.EqualValues(t, 1, total, "no new alert raised by the transition")
}

func TestStageTransitionInvalidatesCachedSnapshot(t *testing.T) {
	db := newTestDB(t)
	cache := newTestRedis(t)
	svc := NewStageService(db, newTestConfig(), cache)
	convert := createTestConvert(t, db)

	require.NoError(t, cache.CacheHealthSnapshot(convert.ID, models.HealthScoreSnapshot{
		ConvertID: convert.ID,
		Score:     88,
	}))

	_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageInFollowup,
	})
	require.NoError(t, err)

	var cached models.HealthScoreSnapshot
	err = cache.GetHealthSnapshot(convert.ID, &cached)
	require.ErrorIs(t, err, redis.Nil)
}

func TestStageReactivationFromInactive(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	for _, stage := range []models.ConvertStage{models.StageInFollowup, models.StageInactive, models.StageInFollowup} {
		_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{ToStage: stage})
		require.NoError(t, err)
	}

	var reloaded models.Convert
	require.NoError(t, db.First(&reloaded, convert.ID).Error)
	assert.Equal(t, models.StageInFollowup, reloaded.Stage)
}

func TestStageTransitionHandedOverIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewStageService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	for _, stage := range []models.ConvertStage{
		models.StageInFollowup, models.StageInClasses, models.StageInHouseFellowship,
		models.StageEstablished, models.StageHandedOver,
	} {
		_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{ToStage: stage})
		require.NoError(t, err)
	}

	_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{
		ToStage: models.StageInactive,
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStageHistoryOrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewStageService(db, cfg, nil)
	convert := createTestConvert(t, db)

	for _, stage := range []models.ConvertStage{models.StageInFollowup, models.StageInClasses} {
		_, err := svc.Transition(testCtx(), convert.ID, &StageTransitionRequest{ToStage: stage})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	history, err := svc.History(testCtx(), convert.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "new->in_followup", history[0].Outcome)
	assert.Equal(t, "in_followup->in_classes", history[1].Outcome)
}
