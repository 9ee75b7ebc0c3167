package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if scoreID := c.GetString("scoreId"); scoreID != "" {
			fields["score_id"] = scoreID
		}
		if score, ok := c.Get("score"); ok {
			fields["score"] = score
		}
		if fields["path"] == "" {
			fields["path"] = c.Request.URL.Path
		}
		telemetry.Info("request.complete", fields)
	}
}
