package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wso2/informed-consent-api/internal/system/log"
)

// RequestLogger logs one line per request through the structured logger
func RequestLogger() gin.HandlerFunc {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HTTP"))
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []log.Field{
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Int("status", c.Writer.Status()),
			log.Int64("latency_ms", time.Since(start).Milliseconds()),
			log.String("client_ip", c.ClientIP()),
		}
		reqLogger := logger.WithContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			reqLogger.Warn("Request completed", fields...)
			return
		}
		reqLogger.Info("Request completed", fields...)
	}
}
