package middleware

import (
	"net/http"
	"strings"

	"github.com/jimuelll/EchoSpace/internal/pkg"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	TokenCookieName  = "token"
)

// extractToken 优先读 Authorization: Bearer，其次读 cookie
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			// 前端未登录时可能带上字面量 null/undefined
			tok := strings.TrimSpace(parts[1])
			if tok != "" && tok != "null" && tok != "undefined" {
				return tok
			}
		}
	}
	if tok, err := c.Cookie(TokenCookieName); err == nil {
		return tok
	}
	return ""
}

// Auth 要求有效令牌，否则 401
func Auth(tokens *pkg.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil || claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 令牌有效时注入 user_id，无效或缺失时按匿名继续
func OptionalAuth(tokens *pkg.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := extractToken(c); tokenStr != "" {
			if claims, err := tokens.Parse(tokenStr); err == nil && claims.UserID != "" {
				c.Set(ContextUserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// UserID 取出中间件注入的用户 ID
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
