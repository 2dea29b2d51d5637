package middleware

import (
	"errors"
	"strings"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	"netqoe/internal/core/services"
	apperrors "netqoe/pkg/errors"
	"netqoe/pkg/logger"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// AuthMiddleware requires a valid "Authorization: Bearer <jwt>" header and
// stores the resulting principal in the gin context.
func AuthMiddleware(authService ports.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithAppError(c, apperrors.NewUnauthorizedError("authorization header required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortWithAppError(c, apperrors.NewUnauthorizedError("invalid authorization header format"))
			return
		}

		principal, err := authService.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, services.ErrExpiredToken) {
				abortWithAppError(c, apperrors.NewTokenExpiredError())
				return
			}
			abortWithAppError(c, apperrors.NewUnauthorizedError("invalid token"))
			return
		}

		SetPrincipal(c, *principal)
		c.Next()
	}
}

// SetPrincipal attaches an authenticated principal to the request.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID)
	c.Set("username", p.Username)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), string(p.UserID)))
}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

func abortWithAppError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.Body())
}
