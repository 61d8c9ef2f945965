package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/xerrors"
)

// MaxBodyBytes 限制请求体大小，limit <= 0 时不生效。
// 声明了 Content-Length 的超限请求直接以 413 拒绝；分块传输的请求体在读取越界时
// 由 handler 收到 *http.MaxBytesError，再转换为 xerrors.ErrRequestTooLarge。
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			_ = c.Error(xerrors.ErrRequestTooLarge.Derive("content length %d exceeds %d bytes", c.Request.ContentLength, limit))
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
