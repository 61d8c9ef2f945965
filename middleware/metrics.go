package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/metrics"
)

// MetricsOptions 定义指标中间件的可选参数。
type MetricsOptions struct {
	SkipPaths []string
}

// HTTPMetricsMiddleware 返回一个用于采集 HTTP 请求指标的 Gin 中间件。
func HTTPMetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return HTTPMetricsMiddlewareWithOptions(m, MetricsOptions{})
}

// HTTPMetricsMiddlewareWithOptions 返回一个可跳过指定路径的 HTTP 指标采集中间件。
// path 标签使用路由模板，未匹配路由的请求记为 "unmatched"，避免标签基数失控。
func HTTPMetricsMiddlewareWithOptions(m *metrics.Metrics, opts MetricsOptions) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, path := range opts.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if _, ok := skip[path]; ok || m == nil {
			c.Next()
			return
		}

		m.HTTPInFlight.WithLabelValues(c.Request.Method, path).Inc()
		defer m.HTTPInFlight.WithLabelValues(c.Request.Method, path).Dec()

		start := time.Now()

		c.Next()

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
