package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/wyfcoding/budget/contextx"
	"github.com/wyfcoding/budget/idgen"
	"github.com/wyfcoding/budget/xerrors"
)

const grpcRequestIDKey = "x-request-id"

// GRPCRequestID 从 metadata 的 x-request-id 提取请求 ID，缺失或不合法时生成新的 ID，
// 注入上下文并回写到响应头。
func GRPCRequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var requestID string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(grpcRequestIDKey); len(vals) > 0 {
				requestID = vals[0]
			}
		}
		if !validRequestID(requestID) {
			requestID = idgen.GenIDString()
		}

		ctx = contextx.WithRequestID(ctx, requestID)
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			ctx = contextx.WithIP(ctx, p.Addr.String())
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(grpcRequestIDKey, requestID))

		return handler(ctx, req)
	}
}

// GRPCAccessLog 记录每个一元调用的方法、状态码与耗时。
// OK 记为 Debug（健康检查探针很频繁），客户端错误记为 Warn，其余记为 Error。
func GRPCAccessLog(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		args := append(contextx.LogAttrs(ctx),
			"method", info.FullMethod,
			"status", code.String(),
			"duration", time.Since(start),
		)
		if err != nil {
			args = append(args, "error", err)
		}

		switch code {
		case codes.OK:
			logger.DebugContext(ctx, "grpc request processed", args...)
		case codes.InvalidArgument, codes.OutOfRange, codes.NotFound, codes.ResourceExhausted,
			codes.FailedPrecondition, codes.PermissionDenied, codes.Unauthenticated:
			logger.WarnContext(ctx, "grpc request client error", args...)
		default:
			logger.ErrorContext(ctx, "grpc request server error", args...)
		}
		return resp, err
	}
}

// GRPCErrorTranslator 把处理器返回的 xerrors 转换为 gRPC Status，并把 panic 转换为 Internal。
// 应放在拦截器链的最内层，访问日志才能看到翻译后的状态码。
func GRPCErrorTranslator(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "grpc panic recovered",
					"method", info.FullMethod,
					"error", rec,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, xerrors.Internal("internal server error", fmt.Errorf("panic: %v", rec)).ToGRPCStatus().Err()
			}
		}()

		resp, err = handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return resp, err
		}
		if xe, ok := xerrors.FromError(err); ok {
			return resp, xe.ToGRPCStatus().Err()
		}
		return resp, status.Error(codes.Internal, err.Error())
	}
}

// GRPCInterceptors 返回账本 gRPC 服务使用的一元拦截器链。
func GRPCInterceptors(logger *slog.Logger) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		GRPCRequestID(),
		GRPCAccessLog(logger),
		GRPCErrorTranslator(logger),
	}
}
