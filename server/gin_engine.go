package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/metrics"
	"github.com/wyfcoding/budget/middleware"
)

// NewDefaultGinEngine 创建一个不带默认中间件的 Gin 引擎，由调用方决定中间件顺序与集合.
func NewDefaultGinEngine(middlewares ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(middlewares...)
	return engine
}

// EngineOptions 决定账本 HTTP 服务挂载哪些治理中间件.
type EngineOptions struct {
	ServiceName    string
	Logger         *slog.Logger
	Metrics        *metrics.Metrics // 为 nil 时不采集 HTTP 指标
	MetricsPath    string
	Tracing        bool
	MaxBodyBytes   int64
	RateLimitRPS   float64 // 0 表示不限流
	RateLimitBurst int
}

// NewLedgerEngine 按固定顺序组装中间件：
// 恢复 -> 请求 ID -> 追踪 -> 访问日志 -> 指标 -> 错误响应 -> 请求体限制 -> 限流.
// 错误响应位于请求体限制之前，才能写出后者通过 c.Error 记录的 413.
func NewLedgerEngine(opts EngineOptions) *gin.Engine {
	chain := []gin.HandlerFunc{
		middleware.Recovery(opts.Logger),
		middleware.RequestID(),
	}
	if opts.Tracing {
		chain = append(chain, middleware.TracingMiddleware(opts.ServiceName, opts.MetricsPath, healthPath))
	}
	chain = append(chain, middleware.Logger(opts.Logger))
	if opts.Metrics != nil {
		chain = append(chain, middleware.HTTPMetricsMiddlewareWithOptions(opts.Metrics, middleware.MetricsOptions{
			SkipPaths: []string{opts.MetricsPath, healthPath},
		}))
	}
	chain = append(chain, middleware.HTTPErrorHandler(), middleware.MaxBodyBytes(opts.MaxBodyBytes))
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = int(opts.RateLimitRPS) + 1
		}
		chain = append(chain, middleware.NewLocalRateLimitMiddleware(opts.RateLimitRPS, burst))
	}

	return NewDefaultGinEngine(chain...)
}
