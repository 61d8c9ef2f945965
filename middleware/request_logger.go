package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/contextx"
)

// Logger 访问日志中间件。trace_id 由 logging.TraceHandler 从请求上下文注入。
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		ctx := c.Request.Context()
		args := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"cost", time.Since(start),
			"user_agent", c.Request.UserAgent(),
		}
		args = append(args, contextx.LogAttrs(ctx)...)
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "http request", args...)
	}
}
