package handler

import (
	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/api/middleware"
	"enib-internships/backend/pkg/jwt"
	"enib-internships/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 CAS uid。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxRole)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetProfileID 当前用户对应的导师/学生 ID；管理员可能为空
func GetProfileID(c *gin.Context) string {
	return c.GetString(middleware.CtxProfileID)
}

// MustGetClaims 提取完整会话声明（注销时需要 jti 与过期时间）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
