package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/contextx"
	"github.com/wyfcoding/budget/idgen"
)

// HeaderXRequestID 携带请求 ID 的请求头与响应头.
const HeaderXRequestID = "X-Request-ID"

// maxRequestIDLen 上游请求 ID 的最大长度，超出或含不可打印字符时重新生成.
const maxRequestIDLen = 128

// RequestID 沿用客户端传入的请求 ID，没有或不合法时用默认生成器生成，
// 并把请求 ID 与客户端 IP 放入请求上下文，供访问日志与业务日志使用。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if !validRequestID(requestID) {
			requestID = idgen.GenIDString()
		}

		ctx := contextx.WithRequestID(c.Request.Context(), requestID)
		ctx = contextx.WithIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderXRequestID, requestID)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
