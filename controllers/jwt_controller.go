package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/services"
	"github.com/dependify/DemoeCRM/services/container"
)

// InterfaceJWTController defines the authentication controller interface
type InterfaceJWTController interface {
	Login()
	Me()
}

// JWTController handles authentication requests
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController creates a new authentication controller
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@graceevangelical.demo"`
	Password string `json:"password" binding:"required" example:"Demo@2025"`
}

// LoginData is returned on a successful login
type LoginData struct {
	Token  string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	UserID uint   `json:"user_id" example:"1"`
	Name   string `json:"name" example:"Pastor Emmanuel Adeyemi"`
	Role   string `json:"role" example:"client_admin"`
}

// HandleJWTFunc returns a gin handler dispatching to the named method
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "me":
			controller.Me()
		default:
			response.ParamError(ctx, "invalid method")
		}
	}
}

// Login authenticates a staff account
// @Summary      Staff login
// @Description  Verify credentials and return a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  response.Response{data=LoginData}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters")
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.Authenticate(c.Ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			response.Fail(c.Ctx, code.ErrUserPasswordIncorrect, nil)
			return
		}
		response.ServerError(c.Ctx)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	token, err := jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		response.ServerError(c.Ctx)
		return
	}

	response.Success(c.Ctx, LoginData{
		Token:  token,
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
	})
}

// Me returns the authenticated account
// @Summary      Current account
// @Description  Return the account behind the presented token
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (c *JWTController) Me() {
	userID, exists := c.Ctx.Get("userID")
	if !exists {
		response.Unauthorized(c.Ctx)
		return
	}
	id, ok := userID.(uint)
	if !ok {
		response.Unauthorized(c.Ctx)
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
