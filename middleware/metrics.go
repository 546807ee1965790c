package middleware

import (
	"strconv"
	"time"

	"lexassist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsMiddleware observes request latency by route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		utils.HTTPRequestDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// RequestLogger stores a request-scoped zap logger in the context and logs
// one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := utils.GetLogger().With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set(CtxLogger, logger)
		c.Next()

		if l, ok := c.Get(CtxLogger); ok {
			if lg, ok := l.(*zap.Logger); ok {
				logger = lg
			}
		}
		logger.Info("Request",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
