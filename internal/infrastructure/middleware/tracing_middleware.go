package middleware

import (
	"netqoe/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TracingMiddleware opens one server span per request, named after the
// matched route template.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracing.TraceHTTPRequest(c.Request.Context(), c.Request.Method, route)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.host", c.Request.Host),
			attribute.String("http.user_agent", c.Request.UserAgent()),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if id := RequestIDFrom(c); id != "" {
			span.SetAttributes(attribute.String("http.request_id", id))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("http.response_size", c.Writer.Size()),
		)
		if p, ok := PrincipalFrom(c); ok {
			span.SetAttributes(tracing.UserIDKey.String(string(p.UserID)))
		}

		switch {
		case status >= 500:
			span.SetStatus(codes.Error, c.Errors.String())
		case len(c.Errors) > 0:
			span.SetStatus(codes.Unset, c.Errors.String())
		default:
			span.SetStatus(codes.Ok, "")
		}
	}
}
