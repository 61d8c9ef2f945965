package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/response"
)

// HTTPErrorHandler 把处理器通过 c.Error 记录、但尚未写出的错误统一转换为错误响应。
func HTTPErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		response.Error(c, c.Errors.Last().Err)
	}
}
