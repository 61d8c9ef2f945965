// Package xerrors 提供带类型、业务码与调用栈的统一错误，并负责映射到 HTTP/gRPC 状态码。
package xerrors

import (
	"fmt"
	"maps"
	"net/http"
	"runtime"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorType 错误的大类
type ErrorType uint

const (
	ErrUnknown ErrorType = iota
	ErrInternal
	ErrInvalidArg
	ErrNotFound
	ErrOutOfRange
	ErrTooLarge
)

// Error 增强型错误结构
type Error struct {
	Type    ErrorType      `json:"type"`
	Code    int            `json:"code"`    // 业务自定义错误码
	Message string         `json:"message"` // 对外展示的友好消息
	Detail  string         `json:"detail"`  // 对内调试的详细信息
	Cause   error          `json:"-"`       // 原始错误
	Stack   []string       `json:"stack"`   // 堆栈追踪
	Context map[string]any `json:"context"` // 上下文数据 (日期、金额、行号等)
}

// Error 实现 error 接口
func (e *Error) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %d: %s (Cause: %v)", e.Type, e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %d: %s", e.Type, e.Code, msg)
}

// Unwrap 实现 Go 1.13 解包接口
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 按类型与业务码比较，使 errors.Is 可以匹配由目录条目派生出的错误。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (t ErrorType) String() string {
	names := [...]string{"Unknown", "Internal", "InvalidArg", "NotFound", "OutOfRange", "TooLarge"}
	if int(t) >= len(names) {
		return "Unknown"
	}
	return names[t]
}

// --- 核心构造函数 ---

// New 创建新错误并自动捕获堆栈
func New(errType ErrorType, code int, message string, detail string, cause error) *Error {
	e := &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
		Context: make(map[string]any),
	}
	e.captureStack(3)
	return e
}

// captureStack 捕获当前调用栈 (深度限制 10 层)
func (e *Error) captureStack(skip int) {
	const depth = 10
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	e.Stack = e.Stack[:0]
	for {
		frame, more := frames.Next()
		e.Stack = append(e.Stack, fmt.Sprintf("%s:%d (%s)", frame.File, frame.Line, frame.Function))
		if !more || len(e.Stack) >= depth {
			break
		}
	}
}

// --- 链式 API ---

// Derive 以 e 为模板复制出一个新错误，填充详情并在调用处重新捕获堆栈。
// 目录中的哨兵错误应通过 Derive 使用，避免修改共享实例。
func (e *Error) Derive(format string, args ...any) *Error {
	d := &Error{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Detail:  fmt.Sprintf(format, args...),
		Cause:   e.Cause,
		Context: maps.Clone(e.Context),
	}
	if d.Context == nil {
		d.Context = make(map[string]any)
	}
	d.captureStack(3)
	return d
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// --- 快捷构造工具 ---

func Internal(msg string, cause error) *Error {
	return New(ErrInternal, 500, msg, "", cause)
}

func InvalidArg(msg string) *Error {
	return New(ErrInvalidArg, 400, msg, "", nil)
}

func NotFound(msg string) *Error {
	return New(ErrNotFound, 404, msg, "", nil)
}

// Wrap 包装现有错误并捕获堆栈
func Wrap(err error, errType ErrorType, msg string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := FromError(err); ok {
		return New(e.Type, e.Code, msg, e.Detail, err)
	}
	return New(errType, int(errType), msg, "", err)
}

// WrapInternal 快速包装内部错误
func WrapInternal(err error, msg string) *Error {
	return Wrap(err, ErrInternal, msg)
}

// --- 协议转换 ---

// HTTPStatus 自动映射 HTTP 状态码
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case ErrInvalidArg, ErrOutOfRange:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode 自动映射 gRPC 状态码
func (e *Error) GRPCCode() codes.Code {
	switch e.Type {
	case ErrInvalidArg:
		return codes.InvalidArgument
	case ErrOutOfRange:
		return codes.OutOfRange
	case ErrNotFound:
		return codes.NotFound
	case ErrTooLarge:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// ToGRPCStatus 将 Error 转换为 gRPC Status
func (e *Error) ToGRPCStatus() *status.Status {
	return status.New(e.GRPCCode(), e.Message)
}

// FromError 沿错误链查找 *Error
func FromError(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
