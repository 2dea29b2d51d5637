package middleware

import (
	"errors"
	"net/http"

	"netqoe/internal/core/domain"
	"netqoe/pkg/circuitbreaker"
	apperrors "netqoe/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware renders the last error pushed with c.Error as a
// structured JSON body. Domain sentinels are mapped to their HTTP status.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := ToAppError(err)

		fields := []interface{}{
			"code", appErr.Code,
			"status", appErr.HTTPStatus,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", RequestIDFrom(c),
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Errorw("request failed", append(fields, "error", err.Error())...)
		} else {
			logger.Debugw("request rejected", append(fields, "error", err.Error())...)
		}

		c.JSON(appErr.HTTPStatus, appErr.Body())
	}
}

// ToAppError classifies err. AppErrors pass through, domain sentinels get
// their matching code and anything else becomes an opaque internal error.
func ToAppError(err error) *apperrors.AppError {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrScenarioNotFound):
		return apperrors.WrapError(err, apperrors.ErrCodeNotFound, "scenario not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrRecommendationNotFound):
		return apperrors.WrapError(err, apperrors.ErrCodeNotFound, "recommendation not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		return apperrors.WrapError(err, apperrors.ErrCodeForbidden, "access to scenario denied", http.StatusForbidden)
	case errors.Is(err, domain.ErrInvalidScenario):
		return apperrors.WrapError(err, apperrors.ErrCodeInvalidInput, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrScenarioExists):
		return apperrors.WrapError(err, apperrors.ErrCodeConflict, "scenario already exists", http.StatusConflict)
	case errors.Is(err, circuitbreaker.ErrOpen):
		return apperrors.WrapError(err, apperrors.ErrCodeServiceUnavailable, "storage temporarily unavailable", http.StatusServiceUnavailable)
	}
	return apperrors.WrapError(err, apperrors.ErrCodeInternal, "internal server error", http.StatusInternalServerError)
}

// RecoveryMiddleware converts panics into a 500 response.
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Errorw("panic recovered",
					"panic", rec,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", RequestIDFrom(c),
				)
				abortWithAppError(c, apperrors.NewInternalError("internal server error"))
			}
		}()

		c.Next()
	}
}
