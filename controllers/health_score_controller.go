package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/models"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceHealthScoreController defines the health score controller interface
type InterfaceHealthScoreController interface {
	GetHealthScore()
	Recalculate()
}

// HealthScoreController handles health score requests
type HealthScoreController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthScoreController creates a new health score controller
func NewHealthScoreController(ctx *gin.Context, container *container.ServiceContainer) *HealthScoreController {
	return &HealthScoreController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthScoreFunc returns a gin handler dispatching to the named method
func HandleHealthScoreFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthScoreController(ctx, container)

		switch method {
		case "getHealthScore":
			controller.GetHealthScore()
		case "recalculate":
			controller.Recalculate()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

// GetHealthScore returns a convert's latest health snapshot
// @Summary      Health score
// @Description  Latest health snapshot for the convert, recomputed when stale
// @Tags         HealthScore
// @Produce      json
// @Param        id path int true "Convert ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.HealthScoreSnapshot}
// @Failure      404  {object}  ErrorResponse
// @Router       /health-scores/{id} [get]
func (c *HealthScoreController) GetHealthScore() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	redisService := c.Container.GetService("redis").(*services.RedisService)
	var cached models.HealthScoreSnapshot
	if err := redisService.GetHealthSnapshot(id, &cached); err == nil {
		response.Success(c.Ctx, &cached)
		return
	}

	scoreService := c.Container.GetService("health_score").(services.InterfaceHealthScoreService)
	snapshot, err := scoreService.GetLatest(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{NotFound: code.ErrConvertNotFound})
		return
	}

	// Cache failures are invisible to the caller
	_ = redisService.CacheHealthSnapshot(id, snapshot)
	response.Success(c.Ctx, snapshot)
}

// Recalculate forces a fresh score computation
// @Summary      Recalculate health score
// @Description  Recompute the score from stored history. Identical inputs return the previous snapshot.
// @Tags         HealthScore
// @Produce      json
// @Param        id path int true "Convert ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.HealthScoreSnapshot}
// @Failure      404  {object}  ErrorResponse
// @Router       /health-scores/{id}/recalculate [post]
func (c *HealthScoreController) Recalculate() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	scoreService := c.Container.GetService("health_score").(services.InterfaceHealthScoreService)
	snapshot, err := scoreService.ComputeScore(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{NotFound: code.ErrConvertNotFound})
		return
	}
	if snapshot == nil {
		response.NotFound(c.Ctx, "no activity recorded yet, score is not defined")
		return
	}

	redisService := c.Container.GetService("redis").(*services.RedisService)
	_ = redisService.InvalidateHealthSnapshot(id)

	response.Success(c.Ctx, snapshot)
}
