package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/models"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceVoiceCallController defines the voice-agent controller interface
type InterfaceVoiceCallController interface {
	GetCalls()
	GetCall()
	ScheduleCall()
	StartCall()
	CompleteCall()
	SimulateCall()
	RescheduleCall()
	GetScripts()
	CreateScript()
}

// VoiceCallController handles voice-agent requests
type VoiceCallController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewVoiceCallController creates a new voice-call controller
func NewVoiceCallController(ctx *gin.Context, container *container.ServiceContainer) *VoiceCallController {
	return &VoiceCallController{
		Ctx:       ctx,
		Container: container,
	}
}

// RescheduleCallRequest carries the new schedule time
type RescheduleCallRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// HandleVoiceCallFunc returns a gin handler dispatching to the named method
func HandleVoiceCallFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewVoiceCallController(ctx, container)

		switch method {
		case "getCalls":
			controller.GetCalls()
		case "getCall":
			controller.GetCall()
		case "scheduleCall":
			controller.ScheduleCall()
		case "startCall":
			controller.StartCall()
		case "completeCall":
			controller.CompleteCall()
		case "simulateCall":
			controller.SimulateCall()
		case "rescheduleCall":
			controller.RescheduleCall()
		case "getScripts":
			controller.GetScripts()
		case "createScript":
			controller.CreateScript()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

var callCodes = domainErrorCodes{
	NotFound: code.ErrCallNotFound,
	Invalid:  code.ErrCallInvalidState,
}

// GetCalls lists voice calls with filters
// @Summary      List voice calls
// @Tags         VoiceAgent
// @Produce      json
// @Param        page query int false "Page number, defaults to 1"
// @Param        page_size query int false "Page size, defaults to 10"
// @Param        convert_id query int false "Filter by convert"
// @Param        status query string false "Filter by call status"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /voice-agent/calls [get]
func (c *VoiceCallController) GetCalls() {
	page, pageSize := parsePagination(c.Ctx)

	var convertID uint
	if raw := c.Ctx.Query("convert_id"); raw != "" {
		if id, ok := parseQueryID(c.Ctx, raw); ok {
			convertID = id
		} else {
			return
		}
	}

	filter := services.VoiceCallFilter{
		ConvertID: convertID,
		Status:    models.VoiceCallStatus(c.Ctx.Query("status")),
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	calls, total, err := callService.GetCalls(c.Ctx.Request.Context(), filter, page, pageSize)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Success(c.Ctx, pagedData(calls, total, page, pageSize))
}

// GetCall returns one voice call
// @Summary      Voice call detail
// @Tags         VoiceAgent
// @Produce      json
// @Param        id path int true "Call ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.VoiceCall}
// @Failure      404  {object}  ErrorResponse
// @Router       /voice-agent/calls/{id} [get]
func (c *VoiceCallController) GetCall() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	call, err := callService.GetCall(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Success(c.Ctx, call)
}

// ScheduleCall books an outbound call
// @Summary      Schedule call
// @Tags         VoiceAgent
// @Accept       json
// @Produce      json
// @Param        request body services.ScheduleCallRequest true "Call booking"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=models.VoiceCall}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /voice-agent/calls [post]
func (c *VoiceCallController) ScheduleCall() {
	var req services.ScheduleCallRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	call, err := callService.ScheduleCall(c.Ctx.Request.Context(), &req)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Created(c.Ctx, call)
}

// StartCall moves a scheduled call into progress
// @Summary      Start call
// @Tags         VoiceAgent
// @Produce      json
// @Param        id path int true "Call ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.VoiceCall}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /voice-agent/calls/{id}/start [post]
func (c *VoiceCallController) StartCall() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	call, err := callService.StartCall(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Success(c.Ctx, call)
}

// CompleteCall records the terminal result of a call
// @Summary      Complete call
// @Description  Finish an in-progress call with its outcome and transcript
// @Tags         VoiceAgent
// @Accept       json
// @Produce      json
// @Param        id path int true "Call ID"
// @Param        request body services.CompleteCallRequest true "Terminal result"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.VoiceCall}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /voice-agent/calls/{id}/complete [post]
func (c *VoiceCallController) CompleteCall() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	var req services.CompleteCallRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	call, err := callService.CompleteCall(c.Ctx.Request.Context(), id, &req)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Success(c.Ctx, call)
}

// SimulateCall runs a scheduled call end to end with a drawn outcome
// @Summary      Simulate call
// @Description  Run the scheduled call through the simulated voice agent
// @Tags         VoiceAgent
// @Produce      json
// @Param        id path int true "Call ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.VoiceCall}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /voice-agent/calls/{id}/simulate [post]
func (c *VoiceCallController) SimulateCall() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	call, err := callService.SimulateCall(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Success(c.Ctx, call)
}

// RescheduleCall books a replacement call
// @Summary      Reschedule call
// @Description  Book a fresh call for the same convert; the original record is retained
// @Tags         VoiceAgent
// @Accept       json
// @Produce      json
// @Param        id path int true "Call ID"
// @Param        request body RescheduleCallRequest true "New schedule time"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=models.VoiceCall}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /voice-agent/calls/{id}/reschedule [post]
func (c *VoiceCallController) RescheduleCall() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	var req RescheduleCallRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	call, err := callService.RescheduleCall(c.Ctx.Request.Context(), id, req.ScheduledAt)
	if err != nil {
		failDomainError(c.Ctx, err, callCodes)
		return
	}
	response.Created(c.Ctx, call)
}

// GetScripts lists the active call scripts
// @Summary      List call scripts
// @Tags         VoiceAgent
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /voice-agent/scripts [get]
func (c *VoiceCallController) GetScripts() {
	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	scripts, err := callService.GetScripts(c.Ctx.Request.Context())
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, scripts)
}

// CreateScript adds a reusable call script
// @Summary      Create call script
// @Tags         VoiceAgent
// @Accept       json
// @Produce      json
// @Param        request body services.CreateScriptRequest true "Script"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=models.CallScript}
// @Failure      400  {object}  ErrorResponse
// @Router       /voice-agent/scripts [post]
func (c *VoiceCallController) CreateScript() {
	var req services.CreateScriptRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	callService := c.Container.GetService("voice_call").(services.InterfaceVoiceCallService)
	script, err := callService.CreateScript(c.Ctx.Request.Context(), &req)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{
			NotFound: code.ErrScriptNotFound,
			Invalid:  code.ErrValidation,
		})
		return
	}
	response.Created(c.Ctx, script)
}
