package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/models"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceAlertController defines the alert controller interface
type InterfaceAlertController interface {
	GetAlerts()
	GetAlert()
	UpdateAlertStatus()
}

// AlertController handles alert requests
type AlertController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAlertController creates a new alert controller
func NewAlertController(ctx *gin.Context, container *container.ServiceContainer) *AlertController {
	return &AlertController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateAlertStatusRequest carries the requested workflow transition.
// Status is the only mutable field on an alert.
type UpdateAlertStatusRequest struct {
	Status models.AlertStatus `json:"status" binding:"required" example:"acknowledged"`
}

// HandleAlertFunc returns a gin handler dispatching to the named method
func HandleAlertFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAlertController(ctx, container)

		switch method {
		case "getAlerts":
			controller.GetAlerts()
		case "getAlert":
			controller.GetAlert()
		case "updateAlertStatus":
			controller.UpdateAlertStatus()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

var alertCodes = domainErrorCodes{
	NotFound: code.ErrAlertNotFound,
	Invalid:  code.ErrInvalidAlertTransition,
	Conflict: code.ErrDuplicateOpenAlert,
}

// GetAlerts lists alerts with filters
// @Summary      List alerts
// @Tags         Alert
// @Produce      json
// @Param        page query int false "Page number, defaults to 1"
// @Param        page_size query int false "Page size, defaults to 10"
// @Param        convert_id query int false "Filter by convert"
// @Param        status query string false "Filter by status"
// @Param        severity query string false "Filter by severity"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /alerts [get]
func (c *AlertController) GetAlerts() {
	page, pageSize := parsePagination(c.Ctx)

	var convertID uint
	if raw := c.Ctx.Query("convert_id"); raw != "" {
		if id, ok := parseQueryID(c.Ctx, raw); ok {
			convertID = id
		} else {
			return
		}
	}

	filter := services.AlertFilter{
		ConvertID: convertID,
		Status:    models.AlertStatus(c.Ctx.Query("status")),
		Severity:  models.AlertSeverity(c.Ctx.Query("severity")),
	}

	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	alerts, total, err := alertService.GetAlerts(c.Ctx.Request.Context(), filter, page, pageSize)
	if err != nil {
		failDomainError(c.Ctx, err, alertCodes)
		return
	}
	response.Success(c.Ctx, pagedData(alerts, total, page, pageSize))
}

// GetAlert returns one alert
// @Summary      Alert detail
// @Tags         Alert
// @Produce      json
// @Param        id path int true "Alert ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.Alert}
// @Failure      404  {object}  ErrorResponse
// @Router       /alerts/{id} [get]
func (c *AlertController) GetAlert() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	alert, err := alertService.GetAlert(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, alertCodes)
		return
	}
	response.Success(c.Ctx, alert)
}

// UpdateAlertStatus applies a manual workflow transition
// @Summary      Update alert status
// @Description  Move an alert through open, acknowledged, in_progress and resolved
// @Tags         Alert
// @Accept       json
// @Produce      json
// @Param        id path int true "Alert ID"
// @Param        request body UpdateAlertStatusRequest true "Requested status"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.Alert}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /alerts/{id} [patch]
func (c *AlertController) UpdateAlertStatus() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	var req UpdateAlertStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	alertService := c.Container.GetService("alert").(services.InterfaceAlertService)
	alert, err := alertService.UpdateStatus(c.Ctx.Request.Context(), id, req.Status)
	if err != nil {
		failDomainError(c.Ctx, err, alertCodes)
		return
	}
	response.Success(c.Ctx, alert)
}
