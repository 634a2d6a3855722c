package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func newTestRedis(t *testing.T) *RedisService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisServiceWithClient(client)
}

func TestRedisSetGetDelete(t *testing.T) {
	svc := newTestRedis(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, svc.Set("k", payload{Name: "x", Count: 3}, 0))

	var got payload
	require.NoError(t, svc.Get("k", &got))
	assert.Equal(t, payload{Name: "x", Count: 3}, got)

	require.NoError(t, svc.Delete("k"))
	err := svc.Get("k", &got)
	require.ErrorIs(t, err, redis.Nil)
}

func TestRedisDashboardStatsRoundtrip(t *testing.T) {
	svc := newTestRedis(t)

	stats := DashboardStats{TotalConverts: 42, OpenAlerts: 3}
	require.NoError(t, svc.CacheDashboardStats(stats))

	var got DashboardStats
	require.NoError(t, svc.GetDashboardStats(&got))
	assert.Equal(t, stats, got)
}

func TestRedisHealthSnapshotInvalidation(t *testing.T) {
	svc := newTestRedis(t)

	snapshot := models.HealthScoreSnapshot{
		ConvertID: 5,
		Score:     77,
		Factors:   models.FactorMap{models.FactorRecency: 90},
	}
	require.NoError(t, svc.CacheHealthSnapshot(5, snapshot))

	var got models.HealthScoreSnapshot
	require.NoError(t, svc.GetHealthSnapshot(5, &got))
	assert.Equal(t, 77, got.Score)

	// Another convert's cache is a different key
	err := svc.GetHealthSnapshot(6, &got)
	require.ErrorIs(t, err, redis.Nil)

	require.NoError(t, svc.InvalidateHealthSnapshot(5))
	err = svc.GetHealthSnapshot(5, &got)
	require.ErrorIs(t, err, redis.Nil)
}
