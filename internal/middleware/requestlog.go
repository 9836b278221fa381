package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/logger"
)

// RequestLogger logs one line per request after it completes. The client IP
// goes through the logger's redaction, so raw addresses never land in logs.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		reqLog.Info("Request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"client_ip", ClientIP(c),
			"duration", time.Since(start).String(),
		)
	}
}
