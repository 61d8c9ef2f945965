package app

import (
	"time"

	"github.com/wyfcoding/budget/server"
)

// Option 是配置应用程序的函数式选项。
type Option func(*options)

type options struct {
	servers         []server.Server
	cleanups        []func()
	shutdownTimeout time.Duration
}

// WithServer 添加一个或多个服务器，它们在 Run 时并发启动，退出时被优雅关闭。
func WithServer(servers ...server.Server) Option {
	return func(o *options) {
		o.servers = append(o.servers, servers...)
	}
}

// WithCleanup 添加一个清理函数。清理函数在服务器关闭后按注册的逆序执行。
func WithCleanup(cleanup func()) Option {
	return func(o *options) {
		o.cleanups = append(o.cleanups, cleanup)
	}
}

// WithShutdownTimeout 设置关闭服务器的最长等待时间。
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}
