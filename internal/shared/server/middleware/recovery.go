package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"career-mentor/internal/shared/server/respond"
	"career-mentor/internal/shared/telemetry"
)

// Recovery recovers from panics. JSON routes get the standard error envelope,
// pages get a plain text message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.CaptureError(c.Request.Context(), "panic", fmt.Errorf("panic: %v", rec), map[string]any{
					"request_id": RequestIDFromContext(c),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				if strings.HasPrefix(c.Request.URL.Path, "/api/") {
					respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
					return
				}
				c.Abort()
				c.String(http.StatusInternalServerError, "Something went wrong. Please reload the page.")
			}
		}()
		c.Next()
	}
}
