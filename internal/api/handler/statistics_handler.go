package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

// StatisticsHandler 统计 HTTP 处理器
type StatisticsHandler struct {
	statsSvc service.StatisticsService
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statsSvc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsSvc: statsSvc}
}

// Global 全局统计
// GET /api/v1/statistics
func (h *StatisticsHandler) Global(c *gin.Context) {
	response.OK(c, h.statsSvc.Global())
}

// Campaigns 全部批次统计
// GET /api/v1/statistics/campaigns
func (h *StatisticsHandler) Campaigns(c *gin.Context) {
	response.OK(c, h.statsSvc.Campaigns())
}

// Campaign 单个批次统计
// GET /api/v1/statistics/campaigns/:id
func (h *StatisticsHandler) Campaign(c *gin.Context) {
	snap, err := h.statsSvc.Campaign(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCampaignStatisticsNotFound) {
			response.NotFound(c, 16001, "批次统计不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, snap)
}

// Resync 从数据库重建统计缓存
// POST /api/v1/statistics/resync
func (h *StatisticsHandler) Resync(c *gin.Context) {
	if err := h.statsSvc.Resync(c.Request.Context()); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, h.statsSvc.Global())
}
