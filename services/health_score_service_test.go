package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func TestComputeScoreNoActivityMeansNoScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthScoreService(db, newTestConfig())
	convert := createTestConvert(t, db)

	snapshot, err := svc.ComputeScore(testCtx(), convert.ID)
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	_, err = svc.GetLatest(testCtx(), convert.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestComputeScoreConvertNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthScoreService(db, newTestConfig())

	_, err := svc.ComputeScore(testCtx(), 424242)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestComputeScoreWeightedFactors(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	svc := NewHealthScoreService(db, cfg).(*HealthScoreService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)

	// Six visits and three fellowship meetings in the window, one class
	// attended out of two, one answered call out of two.
	for i := 0; i < 6; i++ {
		recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended,
			now.AddDate(0, 0, -7*(i+1)))
	}
	for i := 0; i < 3; i++ {
		recordTestActivity(t, db, convert.ID, models.ActivityFellowship, models.OutcomeAttended,
			now.AddDate(0, 0, -10*(i+1)))
	}
	recordTestActivity(t, db, convert.ID, models.ActivityClassAttendance, models.OutcomeAttended, now.AddDate(0, 0, -14))
	recordTestActivity(t, db, convert.ID, models.ActivityClassAttendance, models.OutcomeMissed, now.AddDate(0, 0, -21))
	recordTestActivity(t, db, convert.ID, models.ActivityVoiceCall, string(models.OutcomeInterested), now.AddDate(0, 0, -5))
	recordTestActivity(t, db, convert.ID, models.ActivityVoiceCall, "no_answer", now.AddDate(0, 0, -6))

	snapshot, err := svc.ComputeScore(testCtx(), convert.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	// Most recent activity 5 days back: recency 94. Visits 6/12 -> 50,
	// classes 1/2 -> 50, fellowship 3/6 -> 50, calls 1/2 -> 50.
	assert.Equal(t, 94, snapshot.Factors[models.FactorRecency])
	assert.Equal(t, 50, snapshot.Factors[models.FactorVisitFrequency])
	assert.Equal(t, 50, snapshot.Factors[models.FactorClassAttendance])
	assert.Equal(t, 50, snapshot.Factors[models.FactorFellowship])
	assert.Equal(t, 50, snapshot.Factors[models.FactorCallResponsiveness])

	// 94*30 + 50*25 + 50*15 + 50*15 + 50*15 = 6320 -> 63
	assert.Equal(t, 63, snapshot.Score)

	var reloaded models.Convert
	require.NoError(t, db.First(&reloaded, convert.ID).Error)
	require.NotNil(t, reloaded.HealthScore)
	assert.Equal(t, 63, *reloaded.HealthScore)
}

func TestComputeScoreOldActivityScoresZeroRecency(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthScoreService(db, newTestConfig()).(*HealthScoreService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended,
		now.AddDate(0, 0, -120))

	snapshot, err := svc.ComputeScore(testCtx(), convert.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 0, snapshot.Factors[models.FactorRecency])
	assert.Equal(t, 0, snapshot.Factors[models.FactorVisitFrequency], "outside the window")
	assert.Equal(t, 0, snapshot.Score)
}

func TestComputeScoreIdempotentWithoutNewActivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthScoreService(db, newTestConfig()).(*HealthScoreService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended,
		now.AddDate(0, 0, -3))

	first, err := svc.ComputeScore(testCtx(), convert.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.ComputeScore(testCtx(), convert.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "unchanged inputs reuse the snapshot")

	var count int64
	require.NoError(t, db.Model(&models.HealthScoreSnapshot{}).
		Where("convert_id = ?", convert.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetLatestRecomputesAfterNewActivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthScoreService(db, newTestConfig()).(*HealthScoreService)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	convert := createTestConvert(t, db)
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended,
		now.AddDate(0, 0, -40))

	first, err := svc.ComputeScore(testCtx(), convert.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	// New activity after the snapshot marks it stale
	later := now.AddDate(0, 0, 7)
	recordTestActivity(t, db, convert.ID, models.ActivityVisit, models.OutcomeAttended, later)
	require.NoError(t, db.Model(&models.Convert{}).Where("id = ?", convert.ID).
		Update("last_activity_at", later).Error)
	svc.now = func() time.Time { return later }

	latest, err := svc.GetLatest(testCtx(), convert.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.NotEqual(t, first.ID, latest.ID)
	assert.Greater(t, latest.Score, first.Score)
}
