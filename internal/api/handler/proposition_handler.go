package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

// PropositionHandler 指导意向 HTTP 处理器
type PropositionHandler struct {
	propositionSvc service.PropositionService
}

// NewPropositionHandler 创建 PropositionHandler
func NewPropositionHandler(propositionSvc service.PropositionService) *PropositionHandler {
	return &PropositionHandler{propositionSvc: propositionSvc}
}

// Create 提交指导意向；导师以自身身份提交，管理员需在 body 中指定 mentor_id
// POST /api/v1/campaigns/:id/propositions
func (h *PropositionHandler) Create(c *gin.Context) {
	var req dto.PropositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	// 导师只能以自身名义提交
	caller := ""
	if role == service.RoleMentor {
		caller = GetProfileID(c)
		req.MentorID = ""
	}

	result, err := h.propositionSvc.Create(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handlePropositionError(c, err)
		return
	}
	response.Created(c, result)
}

// List 批次下的指导意向
// GET /api/v1/campaigns/:id/propositions
func (h *PropositionHandler) List(c *gin.Context) {
	list, err := h.propositionSvc.ListByCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlePropositionError(c, err)
		return
	}
	response.OK(c, list)
}

// Delete 撤回指导意向
// DELETE /api/v1/campaigns/:id/propositions/:proposition_id
func (h *PropositionHandler) Delete(c *gin.Context) {
	if err := h.propositionSvc.Delete(c.Request.Context(), c.Param("id"), c.Param("proposition_id")); err != nil {
		handlePropositionError(c, err)
		return
	}
	response.OK(c, nil)
}

func handlePropositionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCampaignNotFound):
		response.NotFound(c, 15001, "批次不存在")
	case errors.Is(err, service.ErrInternshipNotFound):
		response.NotFound(c, 14001, "实习不存在")
	case errors.Is(err, service.ErrMentorNotFound):
		response.NotFound(c, 15005, "导师不存在")
	case errors.Is(err, service.ErrPropositionNotFound):
		response.NotFound(c, 15101, "指导意向不存在")
	case errors.Is(err, service.ErrPropositionNotAvailable):
		response.BadRequest(c, 15102, "该实习不在此批次的可选列表中")
	case errors.Is(err, service.ErrPropositionLimitReached):
		response.Conflict(c, 15103, "已达到本批次的指导意向上限")
	case errors.Is(err, service.ErrPropositionMentorNeeded):
		response.BadRequest(c, 15104, "缺少导师身份")
	default:
		response.InternalError(c)
	}
}
