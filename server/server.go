// Package server 提供 HTTP 与 gRPC 服务器的生命周期封装以及账本 HTTP 路由.
package server

import (
	"context"
	"time"
)

// DefaultShutdownTimeout 是未配置时优雅关闭的最长等待时间.
const DefaultShutdownTimeout = 5 * time.Second

// Server 是可由 app.App 统一管理生命周期的服务器.
type Server interface {
	// Start 阻塞运行，直到 ctx 被取消（随后优雅关闭）或服务器出错.
	Start(ctx context.Context) error
	// Stop 等待进行中的请求完成并释放资源，受 ctx 超时约束.
	Stop(ctx context.Context) error
}

// Options 服务器通用参数.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (o Options) shutdownTimeout() time.Duration {
	if o.ShutdownTimeout <= 0 {
		return DefaultShutdownTimeout
	}
	return o.ShutdownTimeout
}
