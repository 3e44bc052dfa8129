package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

// CampaignHandler 批次模块 HTTP 处理器
type CampaignHandler struct {
	campaignSvc service.CampaignService
}

// NewCampaignHandler 创建 CampaignHandler
func NewCampaignHandler(campaignSvc service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignSvc: campaignSvc}
}

// Create 创建批次
// POST /api/v1/campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	var req dto.CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	result, err := h.campaignSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleCampaignError(c, err)
		return
	}
	response.Created(c, result)
}

// List 批次列表
// GET /api/v1/campaigns
func (h *CampaignHandler) List(c *gin.Context) {
	list, err := h.campaignSvc.List(c.Request.Context())
	if err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, list)
}

// GetByID 批次详情
// GET /api/v1/campaigns/:id
func (h *CampaignHandler) GetByID(c *gin.Context) {
	result, err := h.campaignSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新批次
// PUT /api/v1/campaigns/:id
func (h *CampaignHandler) Update(c *gin.Context) {
	var req dto.CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	result, err := h.campaignSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除批次
// DELETE /api/v1/campaigns/:id
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.campaignSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, nil)
}

// Launch 发布批次
// POST /api/v1/campaigns/:id/launch?session=<ws 会话>
func (h *CampaignHandler) Launch(c *gin.Context) {
	var req dto.LaunchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	summary, err := h.campaignSvc.Launch(c.Request.Context(), c.Param("id"), req.Session)
	if err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, summary)
}

// ── 导师关联 ──

// ListMentors 批次导师
// GET /api/v1/campaigns/:id/mentors
func (h *CampaignHandler) ListMentors(c *gin.Context) {
	list, err := h.campaignSvc.ListMentors(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, list)
}

// LinkMentor 关联导师，重复关联视为成功
// POST /api/v1/campaigns/:id/mentors/:mentor_id
func (h *CampaignHandler) LinkMentor(c *gin.Context) {
	if err := h.campaignSvc.LinkMentor(c.Request.Context(), c.Param("id"), c.Param("mentor_id")); err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, nil)
}

// UnlinkMentor 解除导师关联
// DELETE /api/v1/campaigns/:id/mentors/:mentor_id
func (h *CampaignHandler) UnlinkMentor(c *gin.Context) {
	if err := h.campaignSvc.UnlinkMentor(c.Request.Context(), c.Param("id"), c.Param("mentor_id")); err != nil {
		handleCampaignError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleCampaignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCampaignNotFound):
		response.NotFound(c, 15001, "批次不存在")
	case errors.Is(err, service.ErrCampaignCategoryMissing):
		response.BadRequest(c, 15002, "批次未设置实习类别，无法发布")
	case errors.Is(err, service.ErrCampaignAlreadyLaunched):
		response.Conflict(c, 15003, "批次已发布")
	case errors.Is(err, service.ErrCampaignLaunchFailed):
		response.ErrorWithDetails(c, http.StatusInternalServerError, 15004, "批次发布失败", err.Error())
	case errors.Is(err, service.ErrMentorNotFound):
		response.NotFound(c, 15005, "导师不存在")
	default:
		response.InternalError(c)
	}
}
