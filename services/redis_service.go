package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dependify/DemoeCRM/config"
)

// Cache lifetimes. Dashboard numbers tolerate a minute of lag; health
// snapshots are invalidated on every rescore so they can live longer.
const (
	dashboardCacheTTL = time.Minute
	snapshotCacheTTL  = 5 * time.Minute
)

// RedisService handles Redis cache operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// NewRedisServiceWithClient wraps an existing client, used in tests
func NewRedisServiceWithClient(client *redis.Client) *RedisService {
	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CacheDashboardStats caches the dashboard stats payload
func (s *RedisService) CacheDashboardStats(stats interface{}) error {
	return s.Set("dashboard:stats", stats, dashboardCacheTTL)
}

// GetDashboardStats reads the cached dashboard stats payload
func (s *RedisService) GetDashboardStats(dest interface{}) error {
	return s.Get("dashboard:stats", dest)
}

// CacheHealthSnapshot caches a convert's latest health snapshot
func (s *RedisService) CacheHealthSnapshot(convertID uint, snapshot interface{}) error {
	return s.Set(healthSnapshotKey(convertID), snapshot, snapshotCacheTTL)
}

// GetHealthSnapshot reads a convert's cached health snapshot
func (s *RedisService) GetHealthSnapshot(convertID uint, dest interface{}) error {
	return s.Get(healthSnapshotKey(convertID), dest)
}

// InvalidateHealthSnapshot drops a convert's cached snapshot after a rescore
func (s *RedisService) InvalidateHealthSnapshot(convertID uint) error {
	return s.Delete(healthSnapshotKey(convertID))
}

func healthSnapshotKey(convertID uint) string {
	return fmt.Sprintf("health_snapshot:%d", convertID)
}
