// Package logging 提供了统一的结构化日志（slog）封装，支持日志文件切割与 OpenTelemetry 追踪上下文注入。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace" // OpenTelemetry追踪
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// defaultLogger 是全局默认的Logger实例，采用单例模式。
	defaultLogger *Logger
	// once 用于确保InitLogger函数只被执行一次。
	once sync.Once
	// level 是所有由本包创建的 Handler 共享的日志级别，可在运行时通过 SetLevel 调整。
	level = new(slog.LevelVar)
)

// Config 定义日志配置
type Config struct {
	Service    string
	Module     string
	Level      string
	Format     string    // json 或 text，默认 json
	File       string    // 日志文件路径，为空则只输出到 Writer
	MaxSize    int       // 每个日志文件最大尺寸 (MB)
	MaxBackups int       // 保留旧日志文件的最大个数
	MaxAge     int       // 保留旧日志文件的最大天数
	Compress   bool      // 是否压缩旧日志
	Writer     io.Writer // 控制台输出目标，默认 os.Stderr（stdout 留给命令结果）
}

// Logger 结构体封装了原生的 `*slog.Logger`，并添加了服务名和模块名，方便在日志中区分来源。
type Logger struct {
	*slog.Logger
	Service string // 服务名称
	Module  string // 模块名称
}

// TraceHandler 是一个自定义的 `slog.Handler` 装饰器，用于从 `context.Context` 中提取并注入 `trace_id` 和 `span_id` 到日志记录中。
type TraceHandler struct {
	slog.Handler
}

// Handle 在处理日志记录之前，尝试从上下文获取 SpanContext，如果有效则注入 trace_id 和 span_id。
func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs 保证派生出的 Handler 仍然带有追踪注入能力。
func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup 保证派生出的 Handler 仍然带有追踪注入能力。
func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLevel 把配置中的级别字符串转换为 slog.Level，未知值按 info 处理。
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel 在运行时调整所有 Logger 的日志级别，供配置热更新使用。
func SetLevel(s string) {
	level.Set(ParseLevel(s))
}

// NewFromConfig 创建一个新的Logger实例。
// 配置了 File 时，日志同时写入控制台与 lumberjack 切割的 JSON 文件。
func NewFromConfig(cfg Config) *Logger {
	level.Set(ParseLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	if cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
		handler = newMultiHandler(handler, slog.NewJSONHandler(fileWriter, opts))
	}

	logger := slog.New(&TraceHandler{Handler: handler}).With(
		slog.String("service", cfg.Service),
		slog.String("module", cfg.Module),
	)

	return &Logger{
		Logger:  logger,
		Service: cfg.Service,
		Module:  cfg.Module,
	}
}

// NewLogger 是创建一个带有简单参数的 logger 的兼容别名。
func NewLogger(service, module string, level ...string) *Logger {
	lvl := "info"
	if len(level) > 0 {
		lvl = level[0]
	}
	return NewFromConfig(Config{
		Service: service,
		Module:  module,
		Level:   lvl,
	})
}

// InitLogger 初始化全局默认日志记录器，并设置为 slog 的默认 Logger。
func InitLogger(cfg Config) *Logger {
	once.Do(func() {
		defaultLogger = NewFromConfig(cfg)
		slog.SetDefault(defaultLogger.Logger)
	})
	return defaultLogger
}

// Default 返回默认日志记录器实例
func Default() *Logger {
	if defaultLogger == nil {
		return InitLogger(Config{Service: "budget", Module: "default", Level: "info"})
	}
	return defaultLogger
}

// Named 返回一个属于同一服务、不同组件的子 Logger。
func (l *Logger) Named(module string) *Logger {
	return &Logger{
		Logger:  l.Logger.With(slog.String("component", module)),
		Service: l.Service,
		Module:  module,
	}
}

// Info 记录 Info 级别日志
func Info(ctx context.Context, msg string, args ...any) {
	Default().InfoContext(ctx, msg, args...)
}

// Warn 记录 Warn 级别日志
func Warn(ctx context.Context, msg string, args ...any) {
	Default().WarnContext(ctx, msg, args...)
}

// Error 记录 Error 级别日志
func Error(ctx context.Context, msg string, args ...any) {
	Default().ErrorContext(ctx, msg, args...)
}

// Debug 记录 Debug 级别日志
func Debug(ctx context.Context, msg string, args ...any) {
	Default().DebugContext(ctx, msg, args...)
}

// LogDuration 记录操作耗时
func LogDuration(ctx context.Context, operation string, args ...any) func() {
	start := time.Now()
	return func() {
		logArgs := append(args, "duration", time.Since(start))
		Debug(ctx, fmt.Sprintf("%s finished", operation), logArgs...)
	}
}
