package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/controllers"
	_ "github.com/dependify/DemoeCRM/docs"
	"github.com/dependify/DemoeCRM/middleware"
	"github.com/dependify/DemoeCRM/services/container"
)

// SetupRouter initialises and returns the configured engine
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	serviceContainer := container.NewServiceContainer(db, cfg, nil)
	middleware.InitAuthMiddleware(cfg)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes registers routes that need no token
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// Health check
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Login takes an IP rate limit to slow down guessing
	api.POST("/auth/login",
		middleware.IPRateLimiter(1, 5),
		controllers.HandleJWTFunc(container, "login"))
}

// registerAuthenticatedRoutes registers routes behind bearer auth
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	authenticated := api.Group("")
	authenticated.Use(middleware.Authentication())

	// Account
	authenticated.GET("/auth/me", controllers.HandleJWTFunc(container, "me"))

	// Staff accounts
	authenticated.GET("/users", controllers.HandleUserFunc(container, "getUsers"))
	authenticated.GET("/users/:id", controllers.HandleUserFunc(container, "getUser"))

	// Convert registry, stage ledger and activity history
	authenticated.GET("/converts", controllers.HandleConvertFunc(container, "getConverts"))
	authenticated.POST("/converts", controllers.HandleConvertFunc(container, "createConvert"))
	authenticated.GET("/converts/:id", controllers.HandleConvertFunc(container, "getConvert"))
	authenticated.PATCH("/converts/:id", controllers.HandleConvertFunc(container, "updateConvert"))
	authenticated.POST("/converts/:id/stage", controllers.HandleConvertFunc(container, "transitionStage"))
	authenticated.GET("/converts/:id/stage", controllers.HandleConvertFunc(container, "getStageHistory"))
	authenticated.GET("/converts/:id/activities", controllers.HandleConvertFunc(container, "getActivities"))
	authenticated.POST("/converts/:id/activities", controllers.HandleConvertFunc(container, "recordActivity"))

	// Health scoring
	authenticated.GET("/health-scores/:id", controllers.HandleHealthScoreFunc(container, "getHealthScore"))
	authenticated.POST("/health-scores/:id/recalculate", controllers.HandleHealthScoreFunc(container, "recalculate"))

	// Alerts
	authenticated.GET("/alerts", controllers.HandleAlertFunc(container, "getAlerts"))
	authenticated.GET("/alerts/:id", controllers.HandleAlertFunc(container, "getAlert"))
	authenticated.PATCH("/alerts/:id", controllers.HandleAlertFunc(container, "updateAlertStatus"))

	// Voice agent
	authenticated.GET("/voice-agent/calls", controllers.HandleVoiceCallFunc(container, "getCalls"))
	authenticated.POST("/voice-agent/calls", controllers.HandleVoiceCallFunc(container, "scheduleCall"))
	authenticated.GET("/voice-agent/calls/:id", controllers.HandleVoiceCallFunc(container, "getCall"))
	authenticated.POST("/voice-agent/calls/:id/start", controllers.HandleVoiceCallFunc(container, "startCall"))
	authenticated.POST("/voice-agent/calls/:id/complete", controllers.HandleVoiceCallFunc(container, "completeCall"))
	authenticated.POST("/voice-agent/calls/:id/simulate", controllers.HandleVoiceCallFunc(container, "simulateCall"))
	authenticated.POST("/voice-agent/calls/:id/reschedule", controllers.HandleVoiceCallFunc(container, "rescheduleCall"))
	authenticated.GET("/voice-agent/scripts", controllers.HandleVoiceCallFunc(container, "getScripts"))
	authenticated.POST("/voice-agent/scripts", controllers.HandleVoiceCallFunc(container, "createScript"))

	// Dashboard and analytics
	authenticated.GET("/dashboard/stats", controllers.HandleDashboardFunc(container, "getStats"))
	authenticated.GET("/dashboard/stage-distribution", controllers.HandleDashboardFunc(container, "getStageDistribution"))
	authenticated.GET("/dashboard/recent-activity", controllers.HandleDashboardFunc(container, "getRecentActivity"))
	authenticated.GET("/analytics/converts", controllers.HandleDashboardFunc(container, "getConvertAnalytics"))
	authenticated.GET("/analytics/voice-calls", controllers.HandleDashboardFunc(container, "getVoiceCallAnalytics"))

	// Demo dataset
	authenticated.POST("/demo/reset", controllers.HandleDemoFunc(container, "reset"))
	authenticated.GET("/demo/stats", controllers.HandleDemoFunc(container, "stats"))
}
