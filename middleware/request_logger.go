package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"edge-speech-gateway/application/ports/outbound"
)

// RequestLogger logs one line per completed request through the injected
// logger.
func RequestLogger(logger outbound.LoggerPort) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoWithFields("request completed", map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		})
	}
}
