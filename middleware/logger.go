package middleware

import (
	"time"

	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ContextLogger   = "logger"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger tags every request with an ID, exposes a request-scoped logger
// under ContextLogger and writes one access line when the handler returns.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	base = utils.LoggerOr(base)
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		logger := base.With(zap.String("requestID", requestID))
		c.Set(ContextLogger, logger)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if userID := UserID(c); userID != "" {
			fields = append(fields, zap.String("userID", userID))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request served", fields...)
		}
	}
}
