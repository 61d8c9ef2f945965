package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/jwt"
	"github.com/wyfcoding/budget/response"
)

// ContextKeyClaims 是令牌载荷在 gin.Context 中的键。
const ContextKeyClaims = "jwt_claims"

// JWTAuth 校验 Bearer 令牌并要求其包含 role。
func JWTAuth(secret, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "missing authorization header", "")
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "invalid authorization format", "")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(token, secret)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "invalid or expired token", err.Error())
			c.Abort()
			return
		}

		if role != "" && !claims.HasRole(role) {
			response.ErrorWithStatus(c, http.StatusForbidden, "forbidden", "insufficient role permissions")
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims 返回 JWTAuth 注入的令牌载荷。
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	val, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*jwt.Claims)
	return claims, ok
}
