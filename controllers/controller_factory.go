package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// BaseController is the common controller interface
type BaseController interface {
	GetContainer() *container.ServiceContainer
	GetContext() *gin.Context
}

// BaseControllerImpl is the common controller implementation
type BaseControllerImpl struct {
	Container *container.ServiceContainer
	Context   *gin.Context
}

// GetContainer implements BaseController
func (c *BaseControllerImpl) GetContainer() *container.ServiceContainer {
	return c.Container
}

// GetContext implements BaseController
func (c *BaseControllerImpl) GetContext() *gin.Context {
	return c.Context
}

// ControllerFactory creates controllers bound to the service container
type ControllerFactory struct {
	Container *container.ServiceContainer
}

// NewControllerFactory creates a new controller factory
func NewControllerFactory(container *container.ServiceContainer) *ControllerFactory {
	return &ControllerFactory{
		Container: container,
	}
}

// ErrorResponse documents the failure envelope in swagger annotations
type ErrorResponse struct {
	Code    int         `json:"code" example:"102000"`
	Message string      `json:"message" example:"convert not found"`
	Data    interface{} `json:"data"`
}

// parsePagination reads the page/page_size query parameters with the
// usual defaults and bounds
func parsePagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// parseIDParam reads a positive numeric path parameter
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(ctx, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// parseQueryID parses a positive numeric query value
func parseQueryID(ctx *gin.Context, raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.ParamError(ctx, "invalid id query parameter")
		return 0, false
	}
	return uint(id), true
}

// pagedData wraps a listing in the shared pagination envelope
func pagedData(items interface{}, total int64, page, pageSize int) gin.H {
	return gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        items,
	}
}

// domainErrorCodes maps domain sentinels onto a resource's error codes
type domainErrorCodes struct {
	NotFound int
	Invalid  int
	Conflict int
}

// failDomainError translates a service-layer error into the unified
// response envelope. Unmapped errors are reported as storage failures
// without leaking internals.
func failDomainError(ctx *gin.Context, err error, codes domainErrorCodes) {
	if codes.NotFound == 0 {
		codes.NotFound = code.ErrRecordNotFound
	}
	if codes.Invalid == 0 {
		codes.Invalid = code.ErrValidation
	}
	if codes.Conflict == 0 {
		codes.Conflict = code.ErrStageConflict
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		response.FailWithMessage(ctx, codes.NotFound, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrInvalidState):
		response.FailWithMessage(ctx, codes.Invalid, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		response.FailWithMessage(ctx, codes.Conflict, err.Error(), nil)
	case errors.Is(err, services.ErrTransientStorage):
		response.Fail(ctx, code.ErrTransientStorage, nil)
	default:
		response.Fail(ctx, code.ErrDatabase, nil)
	}
}
