package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/progress"
	"enib-internships/backend/pkg/response"
)

// ProgressHandler 发布进度 WebSocket 端点
type ProgressHandler struct {
	hub *progress.Hub
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(hub *progress.Hub) *ProgressHandler {
	return &ProgressHandler{hub: hub}
}

// Serve 升级为 WebSocket 并按 session 订阅进度事件
// GET /api/v1/ws?session=xxx&access_token=xxx
func (h *ProgressHandler) Serve(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, http.StatusServiceUnavailable, 10006, "进度推送未启用")
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}
