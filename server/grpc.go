package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/keepalive"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wyfcoding/budget/config"
)

// LedgerHealthService 是账本在 gRPC 健康检查协议中的服务名.
const LedgerHealthService = "budget.Ledger"

// GRPCServer 封装了 grpc.Server 的生命周期.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
	addr   string
	opts   Options
}

// NewGRPCServer 构造 gRPC 服务器并注册健康检查与反射服务.
// register 可为 nil，用于注册额外的服务.
func NewGRPCServer(cfg config.GRPCConfig, logger *slog.Logger, register func(*grpc.Server), interceptors []grpc.UnaryServerInterceptor, opts Options) *GRPCServer {
	grpcOpts := append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	}, keepaliveOptions(cfg.Keepalive)...)
	if len(interceptors) > 0 {
		grpcOpts = append(grpcOpts, grpc.ChainUnaryInterceptor(interceptors...))
	}

	s := grpc.NewServer(grpcOpts...)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(LedgerHealthService, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if register != nil {
		register(s)
	}
	reflection.Register(s)

	return &GRPCServer{
		server: s,
		health: hs,
		addr:   cfg.Addr,
		logger: logger,
		opts:   opts,
	}
}

// Start 启动 TCP 监听并运行 gRPC 服务.
func (s *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.logger.Info("starting grpc server", "addr", lis.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("grpc server stopping due to context cancellation")
		return s.Stop(context.Background())
	case err := <-errChan:
		return err
	}
}

// Stop 先把健康状态置为 NOT_SERVING，再执行优雅关停，超时后强制停止.
func (s *GRPCServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping grpc server gracefully")
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(s.opts.shutdownTimeout())
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-timer.C:
		s.logger.Warn("grpc server graceful stop timeout, forcing stop")
		s.server.Stop()
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}

// keepaliveOptions 把配置转换为服务端保活参数与客户端探活约束，零值沿用 gRPC 默认值.
func keepaliveOptions(cfg config.GRPCKeepaliveConfig) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     cfg.MaxConnectionIdle,
			MaxConnectionAge:      cfg.MaxConnectionAge,
			MaxConnectionAgeGrace: cfg.MaxConnectionAgeGrace,
			Time:                  cfg.Time,
			Timeout:               cfg.Timeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             cfg.MinTime,
			PermitWithoutStream: cfg.PermitWithoutStream,
		}),
	}
}
