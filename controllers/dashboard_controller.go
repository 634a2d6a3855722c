package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceDashboardController defines the reporting controller interface
type InterfaceDashboardController interface {
	GetStats()
	GetStageDistribution()
	GetRecentActivity()
	GetConvertAnalytics()
	GetVoiceCallAnalytics()
}

// DashboardController handles dashboard and analytics requests
type DashboardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(ctx *gin.Context, container *container.ServiceContainer) *DashboardController {
	return &DashboardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDashboardFunc returns a gin handler dispatching to the named method
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDashboardController(ctx, container)

		switch method {
		case "getStats":
			controller.GetStats()
		case "getStageDistribution":
			controller.GetStageDistribution()
		case "getRecentActivity":
			controller.GetRecentActivity()
		case "getConvertAnalytics":
			controller.GetConvertAnalytics()
		case "getVoiceCallAnalytics":
			controller.GetVoiceCallAnalytics()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

// GetStats returns the headline dashboard numbers
// @Summary      Dashboard stats
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=services.DashboardStats}
// @Router       /dashboard/stats [get]
func (c *DashboardController) GetStats() {
	redisService := c.Container.GetService("redis").(*services.RedisService)
	var cached services.DashboardStats
	if err := redisService.GetDashboardStats(&cached); err == nil {
		response.Success(c.Ctx, &cached)
		return
	}

	analyticsService := c.Container.GetService("analytics").(services.InterfaceAnalyticsService)
	stats, err := analyticsService.GetDashboardStats(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	_ = redisService.CacheDashboardStats(stats)
	response.Success(c.Ctx, stats)
}

// GetStageDistribution returns convert counts per lifecycle stage
// @Summary      Stage distribution
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /dashboard/stage-distribution [get]
func (c *DashboardController) GetStageDistribution() {
	analyticsService := c.Container.GetService("analytics").(services.InterfaceAnalyticsService)
	distribution, err := analyticsService.GetStageDistribution(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, distribution)
}

// GetRecentActivity returns the latest interaction events
// @Summary      Recent activity
// @Tags         Dashboard
// @Produce      json
// @Param        limit query int false "Number of events, defaults to 20"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /dashboard/recent-activity [get]
func (c *DashboardController) GetRecentActivity() {
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "20"))

	analyticsService := c.Container.GetService("analytics").(services.InterfaceAnalyticsService)
	records, err := analyticsService.GetRecentActivity(c.Ctx.Request.Context(), limit)
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, records)
}

// GetConvertAnalytics returns the convert breakdown report
// @Summary      Convert analytics
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=services.ConvertAnalytics}
// @Router       /analytics/converts [get]
func (c *DashboardController) GetConvertAnalytics() {
	analyticsService := c.Container.GetService("analytics").(services.InterfaceAnalyticsService)
	report, err := analyticsService.GetConvertAnalytics(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, report)
}

// GetVoiceCallAnalytics returns the call performance report
// @Summary      Voice call analytics
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=services.VoiceCallAnalytics}
// @Router       /analytics/voice-calls [get]
func (c *DashboardController) GetVoiceCallAnalytics() {
	analyticsService := c.Container.GetService("analytics").(services.InterfaceAnalyticsService)
	report, err := analyticsService.GetVoiceCallAnalytics(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, report)
}
