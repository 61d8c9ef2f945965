package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/wyfcoding/budget/limiter"
	"github.com/wyfcoding/budget/logging"
	"github.com/wyfcoding/budget/response"
)

// RateLimitMiddleware 以客户端 IP 为标识执行限流。
// 限流组件出错时放行请求并记录告警。
func RateLimitMiddleware(l limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP()

		allowed, err := l.Allow(ctx, key)
		if err != nil {
			logging.Error(ctx, "rate limiter internal error, fail-open applied", "key", key, "error", err)
			c.Next()
			return
		}

		if !allowed {
			logging.Warn(ctx, "request rejected by rate limiter", "key", key, "path", c.Request.URL.Path)
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "too many requests", "access rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}

// NewLocalRateLimitMiddleware 创建按客户端 IP 独立计数的本地令牌桶限流中间件。
func NewLocalRateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return RateLimitMiddleware(limiter.NewKeyedLimiter(rate.Limit(rps), burst, 0))
}
