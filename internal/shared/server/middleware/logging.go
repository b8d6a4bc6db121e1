package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"career-mentor/internal/shared/telemetry"
)

// Logging emits a structured log per request. 5xx logs at error, 4xx at warn,
// everything else at info. Health and metrics probes log at debug.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		transition := c.GetString("stepTransition")

		fields := map[string]any{
			"request_id":      RequestIDFromContext(c),
			"method":          c.Request.Method,
			"path":            c.Request.URL.Path,
			"route":           route,
			"status":          status,
			"duration_ms":     float64(latency.Microseconds()) / 1000.0,
			"session":         SessionKey(c),
			"step_transition": transition,
			"client_ip":       c.ClientIP(),
			"user_agent":      c.Request.UserAgent(),
		}
		if errs := c.Errors.String(); errs != "" {
			fields["errors"] = errs
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		case route == "/healthz" || route == "/readyz" || route == "/metrics":
			telemetry.Debug("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
