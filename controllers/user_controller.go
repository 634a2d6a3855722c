package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceUserController defines the staff account controller interface
type InterfaceUserController interface {
	GetUsers()
	GetUser()
}

// UserController handles staff account requests
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a new user controller
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleUserFunc returns a gin handler dispatching to the named method
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

// GetUsers lists staff accounts
// @Summary      List staff accounts
// @Tags         User
// @Produce      json
// @Param        page query int false "Page number, defaults to 1"
// @Param        page_size query int false "Page size, defaults to 10"
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  ErrorResponse
// @Router       /users [get]
func (c *UserController) GetUsers() {
	page, pageSize := parsePagination(c.Ctx)

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	users, total, err := userService.GetAllUsers(c.Ctx.Request.Context(), page, pageSize)
	if err != nil {
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}
	response.Success(c.Ctx, pagedData(users, total, page, pageSize))
}

// GetUser returns one staff account
// @Summary      Staff account detail
// @Tags         User
// @Produce      json
// @Param        id path int true "User ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (c *UserController) GetUser() {
	id, ok := parseIDParam(c.Ctx, "id")
	if !ok {
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.GetUserByID(c.Ctx.Request.Context(), id)
	if err != nil {
		failDomainError(c.Ctx, err, domainErrorCodes{NotFound: code.ErrUserNotFound})
		return
	}
	response.Success(c.Ctx, user)
}
