package container

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/services"
)

// ServiceContainer wires every service with its dependencies
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// Base services
	jwtService   services.InterfaceJWTService
	redisService *services.RedisService

	// Voice-agent event publishing
	callEventPublisher services.InterfaceCallEventPublisher

	// Domain services
	userService        services.InterfaceUserService
	convertService     services.InterfaceConvertService
	stageService       services.InterfaceStageService
	activityService    services.InterfaceActivityService
	healthScoreService services.InterfaceHealthScoreService
	alertService       services.InterfaceAlertService
	voiceCallService   services.InterfaceVoiceCallService
	analyticsService   services.InterfaceAnalyticsService
	seedService        services.InterfaceSeedService

	mu sync.RWMutex
}

// NewServiceContainer creates a new service container
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("configuration is nil")
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			config.Warning("redis ping failed, caching disabled", zap.Error(err))
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config)
	c.redisService = services.NewRedisService(c.config)

	// An empty broker URL disables call event publishing
	if c.config.MQTTBrokerURL != "" {
		c.callEventPublisher = services.NewCallEventPublisher(c.config)
		if err := c.callEventPublisher.Connect(); err != nil {
			config.Warning("mqtt connect failed, call events disabled", zap.Error(err))
		}
	} else {
		c.callEventPublisher = services.NewNoopCallEventPublisher()
	}

	c.userService = services.NewUserService(c.db, c.config)
	c.convertService = services.NewConvertService(c.db, c.config)
	c.stageService = services.NewStageService(c.db, c.config, c.redisService)
	c.activityService = services.NewActivityService(c.db, c.config, c.redisService)
	c.healthScoreService = services.NewHealthScoreService(c.db, c.config)
	c.alertService = services.NewAlertService(c.db, c.config)
	c.voiceCallService = services.NewVoiceCallService(c.db, c.config,
		c.callEventPublisher, services.NewRandomOutcomeStrategy(c.config.DemoSeed),
		c.redisService)
	c.analyticsService = services.NewAnalyticsService(c.db, c.config)
	c.seedService = services.NewSeedService(c.db, c.config, c.redisService)
}

// GetService returns the named service
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "call_events":
		return c.callEventPublisher
	case "user":
		return c.userService
	case "convert":
		return c.convertService
	case "stage":
		return c.stageService
	case "activity":
		return c.activityService
	case "health_score":
		return c.healthScoreService
	case "alert":
		return c.alertService
	case "voice_call":
		return c.voiceCallService
	case "analytics":
		return c.analyticsService
	case "seed":
		return c.seedService
	}
	return nil
}

// GetDB returns the database handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	return c.db
}

// GetConfig returns the application configuration
func (c *ServiceContainer) GetConfig() *config.Config {
	return c.config
}

// Shutdown releases container-held connections
func (c *ServiceContainer) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.callEventPublisher != nil {
		c.callEventPublisher.Disconnect()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
