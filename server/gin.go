package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// GinServer 封装了运行 Gin 引擎的 http.Server，提供优雅的启动和关闭.
type GinServer struct {
	server *http.Server
	addr   string
	logger *slog.Logger
	opts   Options

	mu       sync.Mutex
	listener net.Listener
}

// NewGinServer 创建一个新的 Gin 服务器实例.
func NewGinServer(engine *gin.Engine, addr string, logger *slog.Logger, opts Options) *GinServer {
	return &GinServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		addr:   addr,
		logger: logger,
		opts:   opts,
	}
}

// Addr 返回实际监听的地址；启动前返回配置的地址.
func (s *GinServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start 监听端口并运行 HTTP 服务，ctx 取消后执行优雅关闭.
func (s *GinServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	s.logger.Info("starting gin server", "addr", lis.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("gin server stopping due to context cancellation")
		return s.Stop(context.Background())
	case err := <-errChan:
		return err
	}
}

// Stop 在关闭超时内等待进行中的请求完成.
func (s *GinServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping gin server gracefully")
	ctx, cancel := context.WithTimeout(ctx, s.opts.shutdownTimeout())
	defer cancel()
	return s.server.Shutdown(ctx)
}
