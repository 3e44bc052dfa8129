package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// LoginCAS CAS 回调登录
// GET /api/v1/auth/cas?ticket=ST-xxx
// 未携带 ticket 时返回 CAS 登录地址，由前端跳转
func (h *AuthHandler) LoginCAS(c *gin.Context) {
	var req dto.CASLoginRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.OK(c, dto.CASRedirectResponse{LoginURL: h.authSvc.LoginURL()})
		return
	}

	result, err := h.authSvc.LoginCAS(c.Request.Context(), req.Ticket)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicket):
			response.Unauthorized(c, 11001, "CAS 票据无效或已过期")
		case errors.Is(err, service.ErrAccountNotRegistered):
			response.Forbidden(c, 11002, "账号未登记为导师或学生")
		case errors.Is(err, service.ErrCASUnavailable):
			response.Error(c, http.StatusBadGateway, 11003, "CAS 服务暂不可用")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Logout 注销当前会话
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me 当前会话信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"uid":        claims.UserID,
		"role":       claims.Role,
		"profile_id": claims.ProfileID,
	})
}
