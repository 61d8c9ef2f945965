// Package metrics 封装了账本服务的 Prometheus 指标注册表与预定义指标。
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 封装了基于 Prometheus 的指标采集注册表及预定义的标准监控指标。
type Metrics struct {
	registry *prometheus.Registry // 内部独立的 Prometheus 注册中心

	LedgerOperationsTotal   *prometheus.CounterVec   // 账本操作总量 (维度: operation, status)
	LedgerOperationDuration *prometheus.HistogramVec // 账本操作耗时分布 (维度: operation)
	LedgerHorizonDays       prometheus.Gauge         // 账本时间范围的天数

	HTTPRequestsTotal   *prometheus.CounterVec   // HTTP 请求总量 (维度: method, path, status)
	HTTPRequestDuration *prometheus.HistogramVec // HTTP 请求耗时分布
	HTTPInFlight        *prometheus.GaugeVec     // 正在处理的 HTTP 请求数

	BuildInfo *prometheus.GaugeVec
}

// NewMetrics 初始化并返回一个新的指标采集器。
// 它会自动注册 Go 运行时指标和进程指标。
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.LedgerOperationsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "budget_ledger_operations_total",
		Help: "Total number of ledger operations",
	}, []string{"operation", "status"})

	// 单次操作为 O(log N)，耗时集中在微秒级
	m.LedgerOperationDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "budget_ledger_operation_duration_seconds",
		Help:    "Ledger operation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"operation"})

	m.LedgerHorizonDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "budget_ledger_horizon_days",
		Help: "Number of days covered by the ledger horizon",
	})
	reg.MustRegister(m.LedgerHorizonDays)

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.HTTPInFlight = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_server_in_flight_requests",
		Help: "Number of HTTP requests being served",
	}, []string{"method", "path"})

	slog.Debug("unified metrics registry initialized", "service", serviceName)
	return m
}

// NewCounterVec 创建并注册一个新的计数器指标。
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec 创建并注册一个新的仪表盘指标。
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec 创建并注册一个新的直方图指标。
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// Registry 返回内部注册表，供测试收集指标。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回用于暴露指标的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
