// Package response 提供统一的 HTTP 响应封装，支持业务错误码映射及 gRPC 状态码转换。
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wyfcoding/budget/xerrors"
)

// HTTPStatusProvider 定义了能够提供 HTTP 状态码的错误接口。
type HTTPStatusProvider interface {
	HTTPStatus() int
}

// Success 发送一个标准的成功响应：HTTP 200，业务码 0，消息 "success"。
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"msg":  "success",
		"data": data,
	})
}

// SuccessWithRawData 发送不包装 code 和 msg 的原始数据，用于健康检查等系统接口。
func SuccessWithRawData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 发送错误响应。
// 优先识别 xerrors（业务错误码与详情），其次识别 gRPC Status，其余情况返回 500。
func Error(c *gin.Context, err error) {
	if err == nil {
		Success(c, nil)
		return
	}

	if xe, ok := xerrors.FromError(err); ok {
		c.JSON(xe.HTTPStatus(), gin.H{
			"code":   xe.Code,
			"msg":    xe.Message,
			"detail": xe.Detail,
		})
		return
	}

	statusCode := http.StatusInternalServerError
	msg := err.Error()

	var provider HTTPStatusProvider
	if errors.As(err, &provider) {
		statusCode = provider.HTTPStatus()
	} else if st, ok := status.FromError(err); ok {
		statusCode = grpcCodeToHTTP(st.Code())
		msg = st.Message()
	}

	c.JSON(statusCode, gin.H{
		"code":   statusCode,
		"msg":    msg,
		"detail": "",
	})
}

// ErrorWithStatus 发送一个带有指定 HTTP 状态码、消息和详情的错误响应。
func ErrorWithStatus(c *gin.Context, status int, msg string, detail string) {
	c.JSON(status, gin.H{
		"code":   status,
		"msg":    msg,
		"detail": detail,
	})
}

// grpcCodeToHTTP 执行 gRPC 到 HTTP 的标准协议映射。
func grpcCodeToHTTP(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.Canceled:
		return 499 // Client Closed Request
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
