package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/models"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceConvertController defines the convert controller interface
type InterfaceConvertController interface {
	GetConverts()
	GetConvert()
	CreateConvert()
	UpdateConvert()
	TransitionStage()
	GetStageHistory()
	RecordActivity()
	GetActivities()
}

// ConvertController handles convert registry requests
type ConvertController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewConvertController creates a new convert controller
func NewConvertController(ctx *gin.Context, container *container.ServiceContainer) *ConvertController {
	return &ConvertController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleConvertFunc returns a gin handler dispatching to the named method
func HandleConvertFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewConvertController(ctx, container)

		switch method {
		case "getConverts":
			controller.GetConverts()
		case "getConvert":
			controller.GetConvert()
		case "createConvert":
			controller.CreateConvert()
		case "updateConvert":
			controller.UpdateConvert()
		case "transitionStage":
			controller.TransitionStage()
		case "getStageHistory":
			controller.GetStageHistory()
		case "recordActivity":
			controller.RecordActivity()
		case "getActivities":
			controller.GetActivities()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

var convertCodes = domainErrorCodes{
	NotFound: code.ErrConvertNotFound,
	Invalid:  code.ErrInvalidStageTransition,
	Conflict: code.ErrStageConflict,
}

// GetConverts lists converts with filters
// @Summary      List converts
// @Description  List converts with optional stage, source, worker and search filters
// @Tags         Convert
// @Produce      json
// @Param        page query int false "Page number, defaults to 1"
// @Param        page_size query int false "Page size, defaults to 10"
// @Param        stage query string false "Filter by lifecycle stage"
// @Param        source query string false "Filter by source channel"
// @Param        assigned_worker_id query int false "Filter by assigned worker"
// @Param        search query string false "Search in names and phone"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /converts [get]
func (c *ConvertController) GetConverts() {
	page, pageSize := parsePagination(c.Ctx)

	var workerID uint
	if raw := c.Ctx.Query("assigned_worker_id"); raw != "" {
		if id, ok := parseQueryID(c.Ctx, raw); ok {
			workerID = id
		} else {
			return
		}
	}

	filter := services.ConvertFilter{
		Stage:            models.ConvertStage(c.Ctx.Query("stage")),
		Source:           models.ConvertSource(c.Ctx.Query("source")),
		AssignedWorkerID: workerID,
		Search:           c.Ctx.Query("search"),
	}

	convertService := c.Container.GetService("convert").(services.InterfaceConvertService)
	converts, total, err := convertService.GetAllConverts(c.Ctx.Request.Context(), filter, page, pageSize)
	if err != nil {
		failDomainError(c.Ctx, err, convertCodes)
		return
	}
	response.Success(c.Ctx, pagedData(converts, total, page, pageSize))
}

// GetConvert returns one convert
// @Summary      Convert detail
// @Tags         Convert
// @Produce      json
// @Param        id path int true "Convert ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.Convert}
// @Failure      404  {object}  ErrorResponse
// @Router       /converts/{id} [get]
func (c *ConvertController) GetConvert() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	convertService := c.Container.GetService("convert").(services.InterfaceConvertService)
	convert, err := convertService.GetConvertByID(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, convertCodes)
		return
	}
	response.Success(c.Ctx, convert)
}

// CreateConvert registers a new convert
// @Summary      Register convert
// @Tags         Convert
// @Accept       json
// @Produce      json
// @Param        request body services.CreateConvertRequest true "Convert profile"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=models.Convert}
// @Failure      400  {object}  ErrorResponse
// @Router       /converts [post]
func (c *ConvertController) CreateConvert() {
	var req services.CreateConvertRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	convertService := c.Container.GetService("convert").(services.InterfaceConvertService)
	convert, err := convertService.CreateConvert(c.Ctx.Request.Context(), &req)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{
			NotFound: code.ErrConvertNotFound,
			Invalid:  code.ErrValidation,
		})
		return
	}
	response.Created(c.Ctx, convert)
}

// UpdateConvert applies a partial profile update
// @Summary      Update convert profile
// @Description  Update profile fields. The lifecycle stage is not accepted here.
// @Tags         Convert
// @Accept       json
// @Produce      json
// @Param        id path int true "Convert ID"
// @Param        request body services.UpdateConvertRequest true "Fields to update"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.Convert}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /converts/{id} [patch]
func (c *ConvertController) UpdateConvert() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateConvertRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	convertService := c.Container.GetService("convert").(services.InterfaceConvertService)
	convert, err := convertService.UpdateConvert(c.Ctx.Request.Context(), id, &req)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{
			NotFound: code.ErrConvertNotFound,
			Invalid:  code.ErrValidation,
		})
		return
	}
	response.Success(c.Ctx, convert)
}

// TransitionStage moves a convert along the lifecycle
// @Summary      Stage transition
// @Description  Move the convert to a new lifecycle stage with an optional optimistic guard
// @Tags         Convert
// @Accept       json
// @Produce      json
// @Param        id path int true "Convert ID"
// @Param        request body services.StageTransitionRequest true "Requested transition"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.Convert}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /converts/{id}/stage [post]
func (c *ConvertController) TransitionStage() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	var req services.StageTransitionRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	stageService := c.Container.GetService("stage").(services.InterfaceStageService)
	convert, err := stageService.Transition(c.Ctx.Request.Context(), id, &req)
	if err != nil {
		failDomainError(c.Ctx, err, convertCodes)
		return
	}
	response.Success(c.Ctx, convert)
}

// GetStageHistory returns the convert's stage ledger
// @Summary      Stage history
// @Tags         Convert
// @Produce      json
// @Param        id path int true "Convert ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /converts/{id}/stage [get]
func (c *ConvertController) GetStageHistory() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	stageService := c.Container.GetService("stage").(services.InterfaceStageService)
	records, err := stageService.History(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, convertCodes)
		return
	}
	response.Success(c.Ctx, records)
}

// RecordActivity appends an interaction event
// @Summary      Record activity
// @Description  Append a visit, class, fellowship, call or note event
// @Tags         Convert
// @Accept       json
// @Produce      json
// @Param        id path int true "Convert ID"
// @Param        request body services.RecordActivityRequest true "Interaction event"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=models.ActivityRecord}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /converts/{id}/activities [post]
func (c *ConvertController) RecordActivity() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	var req services.RecordActivityRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	activityService := c.Container.GetService("activity").(services.InterfaceActivityService)
	record, err := activityService.Record(c.Ctx.Request.Context(), id, &req)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{
			NotFound: code.ErrConvertNotFound,
			Invalid:  code.ErrValidation,
		})
		return
	}
	response.Created(c.Ctx, record)
}

// GetActivities lists a convert's interaction history
// @Summary      Activity history
// @Tags         Convert
// @Produce      json
// @Param        id path int true "Convert ID"
// @Param        page query int false "Page number, defaults to 1"
// @Param        page_size query int false "Page size, defaults to 10"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /converts/{id}/activities [get]
func (c *ConvertController) GetActivities() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c.Ctx)

	activityService := c.Container.GetService("activity").(services.InterfaceActivityService)
	records, total, err := activityService.GetActivities(c.Ctx.Request.Context(), id, page, pageSize)
	if err != nil {
		failDomainError(c.Ctx, err, convertCodes)
		return
	}
	response.Success(c.Ctx, pagedData(records, total, page, pageSize))
}
