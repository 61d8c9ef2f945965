// Package app 提供应用程序容器：启动服务器、处理退出信号并执行清理.
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/budget/server"
)

const defaultShutdownTimeout = 10 * time.Second

// App 是应用程序的核心容器，负责管理应用程序的生命周期。
type App struct {
	name   string
	logger *slog.Logger
	opts   options
}

// New 创建一个新的应用程序实例。
func New(name string, logger *slog.Logger, opts ...Option) *App {
	o := options{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &App{
		name:   name,
		logger: logger,
		opts:   o,
	}
}

// Run 运行所有服务器直到收到 SIGINT/SIGTERM 或某个服务器失败。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 运行所有服务器直到 ctx 被取消或某个服务器失败，随后关闭全部服务器并执行清理函数。
// 任一服务器启动失败都会取消其余服务器，并作为返回值。
func (a *App) RunContext(ctx context.Context) error {
	a.logger.Info("application starting", "name", a.name, "pid", os.Getpid(), "servers", len(a.opts.servers))

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range a.opts.servers {
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	<-gctx.Done()
	if ctx.Err() != nil {
		a.logger.Info("shutting down application", "name", a.name)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.opts.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := g.Wait(); err != nil {
		a.logger.Error("server failed", "error", err)
		errs = append(errs, err)
	}
	for _, srv := range a.opts.servers {
		if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("server stop returned error", "error", err)
		}
	}

	for i := len(a.opts.cleanups) - 1; i >= 0; i-- {
		a.opts.cleanups[i]()
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.Info("application shut down gracefully")
	return nil
}

// Servers 返回已注册的服务器。
func (a *App) Servers() []server.Server {
	return a.opts.servers
}
