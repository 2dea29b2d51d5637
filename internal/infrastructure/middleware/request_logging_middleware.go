package middleware

import (
	"time"

	"netqoe/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// RequestIDMiddleware propagates an inbound X-Request-ID or generates one,
// echoes it on the response and makes it available to context loggers.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestIDMiddleware, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLoggingMiddleware logs one line per finished request.
func RequestLoggingMiddleware(cl *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		path := c.Request.URL.Path

		if status >= 500 {
			cl.LogWarn(c.Request.Context(), "http_request_failed",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status_code", status),
				zap.Int64("duration_ms", duration.Milliseconds()),
				zap.String("errors", c.Errors.String()),
			)
			return
		}
		cl.LogRequest(c.Request.Context(), c.Request.Method, path, status, duration.Milliseconds())
	}
}
