// Package contextx 提供在 context.Context 中注入与提取请求级信息的工具函数.
// 使用私有类型作为 Key，防止跨包的 Key 冲突.
package contextx

import "context"

type contextKey int

const (
	RequestIDKey contextKey = iota // 请求唯一标识 Key。
	IPKey                          // 客户端 IP Key。
)

// KeyNames 映射 Key 到日志字段名。
var KeyNames = map[contextKey]string{
	RequestIDKey: "request_id",
	IPKey:        "client_ip",
}

// WithRequestID 将请求 ID 注入到 Context 中。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID 从 Context 中提取请求 ID。
func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(RequestIDKey).(string); ok {
		return val
	}
	return ""
}

// WithIP 将客户端 IP 注入到 Context 中。
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, IPKey, ip)
}

// GetIP 从 Context 中提取客户端 IP。
func GetIP(ctx context.Context) string {
	if val, ok := ctx.Value(IPKey).(string); ok {
		return val
	}
	return ""
}

// LogAttrs 返回 ctx 中已设置的请求级字段，便于附加到日志中。
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	for _, key := range []contextKey{RequestIDKey, IPKey} {
		if val, ok := ctx.Value(key).(string); ok && val != "" {
			attrs = append(attrs, KeyNames[key], val)
		}
	}
	return attrs
}
