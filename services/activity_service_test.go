package services

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func TestRecordActivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	record, err := svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
		Type:    models.ActivityVisit,
		Outcome: models.OutcomeCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityVisit, record.Type)

	var reloaded models.Convert
	require.NoError(t, db.First(&reloaded, convert.ID).Error)
	require.NotNil(t, reloaded.LastActivityAt)
	require.NotNil(t, reloaded.HealthScore, "recording an activity triggers a score")
}

func TestRecordActivityBackdatedKeepsLastActivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	_, err := svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
		Type:    models.ActivityVisit,
		Outcome: models.OutcomeCompleted,
	})
	require.NoError(t, err)

	var after models.Convert
	require.NoError(t, db.First(&after, convert.ID).Error)
	mark := *after.LastActivityAt

	// A backdated entry must not pull last_activity_at backwards
	old := time.Now().AddDate(0, 0, -30)
	_, err = svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
		Type:      models.ActivityFellowship,
		Outcome:   models.OutcomeAttended,
		Timestamp: &old,
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&after, convert.ID).Error)
	assert.True(t, after.LastActivityAt.Equal(mark))
}

func TestRecordActivityInvalidatesCachedSnapshot(t *testing.T) {
	db := newTestDB(t)
	cache := newTestRedis(t)
	svc := NewActivityService(db, newTestConfig(), cache)
	convert := createTestConvert(t, db)

	require.NoError(t, cache.CacheHealthSnapshot(convert.ID, models.HealthScoreSnapshot{
		ConvertID: convert.ID,
		Score:     80,
	}))

	_, err := svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
		Type:    models.ActivityVisit,
		Outcome: models.OutcomeCompleted,
	})
	require.NoError(t, err)

	// The stale cache entry is gone; readers fall through to the new score
	var cached models.HealthScoreSnapshot
	err = cache.GetHealthSnapshot(convert.ID, &cached)
	require.ErrorIs(t, err, redis.Nil)
}

func TestRecordActivityRejectsStageChange(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	_, err := svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
		Type: models.ActivityStageChange,
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordActivityUnknownType(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	_, err := svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
		Type: "prayer_meeting",
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordActivityConvertNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)

	_, err := svc.Record(testCtx(), 9999, &RecordActivityRequest{
		Type: models.ActivityNote,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetActivitiesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)
	convert := createTestConvert(t, db)

	base := time.Now().AddDate(0, 0, -10)
	for i := 0; i < 3; i++ {
		at := base.AddDate(0, 0, i)
		_, err := svc.Record(testCtx(), convert.ID, &RecordActivityRequest{
			Type:      models.ActivityVisit,
			Outcome:   models.OutcomeCompleted,
			Timestamp: &at,
		})
		require.NoError(t, err)
	}

	records, total, err := svc.GetActivities(testCtx(), convert.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, records, 2)
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp))
}

func TestGetActivitiesConvertNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db, newTestConfig(), nil)

	_, _, err := svc.GetActivities(testCtx(), 9999, 1, 10)
	require.ErrorIs(t, err, ErrNotFound)
}
