package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceDemoController defines the demo dataset controller interface
type InterfaceDemoController interface {
	ResetDemoData()
	GetDemoStats()
}

// DemoController handles demo dataset requests
type DemoController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDemoController creates a new demo controller
func NewDemoController(ctx *gin.Context, container *container.ServiceContainer) *DemoController {
	return &DemoController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDemoFunc returns a gin handler dispatching to the named method
func HandleDemoFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDemoController(ctx, container)

		switch method {
		case "reset":
			controller.ResetDemoData()
		case "stats":
			controller.GetDemoStats()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

// ResetDemoData wipes the domain tables and reseeds the demo dataset
// @Summary      Reset demo data
// @Description  Drop all converts, activities, alerts, scripts and calls, then reseed
// @Tags         Demo
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=services.DemoStats}
// @Router       /demo/reset [post]
func (c *DemoController) ResetDemoData() {
	seedService := c.Container.GetService("seed").(services.InterfaceSeedService)
	if err := seedService.ResetDemoData(c.Ctx.Request.Context()); err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	stats, err := seedService.GetDemoStats(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, stats)
}

// GetDemoStats counts rows in each domain table
// @Summary      Demo dataset stats
// @Tags         Demo
// @Produce     json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=services.DemoStats}
// @Router       /demo/stats [get]
func (c *DemoController) GetDemoStats() {
	seedService := c.Container.GetService("seed").(services.InterfaceSeedService)
	stats, err := seedService.GetDemoStats(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, stats)
}
