// Package middleware 提供账本 HTTP 服务使用的 Gin 中间件.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/response"
	"github.com/wyfcoding/budget/tracing"
	"github.com/wyfcoding/budget/xerrors"
)

// Recovery 捕获处理链中的 panic，记录堆栈并把错误标记到当前 Span 上，
// 客户端只会收到统一的内部错误响应。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()
			err := xerrors.Internal("internal server error", fmt.Errorf("panic: %v", rec))
			logger.ErrorContext(ctx, "panic recovered",
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)
			tracing.SetError(ctx, err)

			response.Error(c, err.WithDetail("an unexpected error occurred"))
			c.Abort()
		}()
		c.Next()
	}
}
