package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/internal/error/code"
	"github.com/dependify/DemoeCRM/internal/error/response"
	"github.com/dependify/DemoeCRM/services"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware wires the token service used by Authentication
func InitAuthMiddleware(cfg *config.Config) {
	jwtService = services.NewJWTService(cfg)
}

// Authentication verifies the bearer token and stores its claims in the
// request context. Expired tokens get a distinct error code so clients
// can refresh instead of re-prompting for credentials.
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header is required", nil)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.FailWithMessage(c, code.ErrTokenInvalid, "Authorization header format must be Bearer {token}", nil)
			c.Abort()
			return
		}

		claims, err := jwtService.ExtractClaims(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Fail(c, code.ErrTokenExpired, nil)
			} else {
				response.Fail(c, code.ErrTokenInvalid, nil)
			}
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}
