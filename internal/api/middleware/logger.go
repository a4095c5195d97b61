package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger 请求日志中间件（基于 Zap 结构化日志）
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}
		if schoolID := c.GetString("school_id"); schoolID != "" {
			fields = append(fields, zap.String("school_id", schoolID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		if statusCode >= 500 {
			logger.Error("请求处理失败", fields...)
		} else if statusCode >= 400 {
			logger.Warn("客户端错误", fields...)
		} else {
			logger.Info("请求完成", fields...)
		}
	}
}
