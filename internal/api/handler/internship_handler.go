package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

// InternshipHandler 实习模块 HTTP 处理器
type InternshipHandler struct {
	internshipSvc service.InternshipService
}

// NewInternshipHandler 创建 InternshipHandler
func NewInternshipHandler(internshipSvc service.InternshipService) *InternshipHandler {
	return &InternshipHandler{internshipSvc: internshipSvc}
}

// Create 创建实习（初始状态 waiting）
// POST /api/v1/internships
func (h *InternshipHandler) Create(c *gin.Context) {
	var req dto.InternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	result, err := h.internshipSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleInternshipError(c, err)
		return
	}
	response.Created(c, result)
}

// List 实习列表
// GET /api/v1/internships
func (h *InternshipHandler) List(c *gin.Context) {
	var req dto.InternshipListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	list, total, err := h.internshipSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleInternshipError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetByID 实习详情
// GET /api/v1/internships/:id
func (h *InternshipHandler) GetByID(c *gin.Context) {
	result, err := h.internshipSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleInternshipError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 更新实习描述字段；状态与关联字段不受影响
// PUT /api/v1/internships/:id
func (h *InternshipHandler) Update(c *gin.Context) {
	var req dto.InternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	result, err := h.internshipSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleInternshipError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除实习
// DELETE /api/v1/internships/:id
func (h *InternshipHandler) Delete(c *gin.Context) {
	if err := h.internshipSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleInternshipError(c, err)
		return
	}
	response.OK(c, nil)
}

// Transition 执行状态流转
// POST /api/v1/internships/:id/transitions/:name
func (h *InternshipHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	// 无参数的流转允许空 body；分块传输时 ContentLength 为 -1，只能以读到 EOF 判断
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(c, 10001, "参数错误: "+err.Error())
			return
		}
	}

	result, err := h.internshipSvc.Transition(c.Request.Context(), c.Param("id"), c.Param("name"), &req)
	if err != nil {
		handleInternshipError(c, err)
		return
	}
	response.OK(c, result)
}

// AddFile 登记附件
// POST /api/v1/internships/:id/files
func (h *InternshipHandler) AddFile(c *gin.Context) {
	var req dto.FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}

	result, err := h.internshipSvc.AddFile(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleInternshipError(c, err)
		return
	}
	response.Created(c, result)
}

// RemoveFile 删除附件
// DELETE /api/v1/internships/:id/files/:file_id
func (h *InternshipHandler) RemoveFile(c *gin.Context) {
	if err := h.internshipSvc.RemoveFile(c.Request.Context(), c.Param("id"), c.Param("file_id")); err != nil {
		handleInternshipError(c, err)
		return
	}
	response.OK(c, nil)
}

func handleInternshipError(c *gin.Context, err error) {
	var forbidden *service.ForbiddenTransitionError
	switch {
	case errors.As(err, &forbidden):
		response.ErrorWithData(c, http.StatusForbidden, 14003, forbidden.Error(), dto.ForbiddenTransitionData{
			Current: string(forbidden.Current),
			Target:  string(forbidden.Target),
			Next:    string(forbidden.Next),
			Missing: forbidden.Missing,
		})
	case errors.Is(err, service.ErrInternshipNotFound):
		response.NotFound(c, 14001, "实习不存在")
	case errors.Is(err, service.ErrUnknownTransition):
		response.BadRequest(c, 14004, "未知的流转目标")
	case errors.Is(err, service.ErrFileNotFound):
		response.NotFound(c, 14005, "附件不存在")
	default:
		response.InternalError(c)
	}
}
