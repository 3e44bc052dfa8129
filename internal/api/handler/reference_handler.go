package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

// 实习类别、企业、学生、导师四类参考实体共用的错误映射
func handleReferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInternshipTypeNotFound):
		response.NotFound(c, 12001, "实习类别不存在")
	case errors.Is(err, service.ErrInternshipTypeDuplicate):
		response.Conflict(c, 12101, "实习类别名称已存在")
	case errors.Is(err, service.ErrBusinessNotFound):
		response.NotFound(c, 12002, "企业不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12003, "学生不存在")
	case errors.Is(err, service.ErrStudentEmailTaken):
		response.Conflict(c, 12103, "学生邮箱已被使用")
	case errors.Is(err, service.ErrMentorNotFound):
		response.NotFound(c, 12004, "导师不存在")
	case errors.Is(err, service.ErrMentorEmailTaken):
		response.Conflict(c, 12104, "导师邮箱已被使用")
	default:
		response.InternalError(c)
	}
}

// ═══════════════════════════════════════════════════════════
// 实习类别
// ═══════════════════════════════════════════════════════════

// InternshipTypeHandler 实习类别 HTTP 处理器
type InternshipTypeHandler struct {
	typeSvc service.InternshipTypeService
}

// NewInternshipTypeHandler 创建 InternshipTypeHandler
func NewInternshipTypeHandler(typeSvc service.InternshipTypeService) *InternshipTypeHandler {
	return &InternshipTypeHandler{typeSvc: typeSvc}
}

// Create POST /api/v1/internship-types
func (h *InternshipTypeHandler) Create(c *gin.Context) {
	var req dto.InternshipTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.typeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.Created(c, result)
}

// List GET /api/v1/internship-types
func (h *InternshipTypeHandler) List(c *gin.Context) {
	list, err := h.typeSvc.List(c.Request.Context())
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, list)
}

// Update PUT /api/v1/internship-types/:id
func (h *InternshipTypeHandler) Update(c *gin.Context) {
	var req dto.InternshipTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.typeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete DELETE /api/v1/internship-types/:id
func (h *InternshipTypeHandler) Delete(c *gin.Context) {
	if err := h.typeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ═══════════════════════════════════════════════════════════
// 企业
// ═══════════════════════════════════════════════════════════

// BusinessHandler 企业 HTTP 处理器
type BusinessHandler struct {
	businessSvc service.BusinessService
}

// NewBusinessHandler 创建 BusinessHandler
func NewBusinessHandler(businessSvc service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessSvc: businessSvc}
}

// Create POST /api/v1/businesses
func (h *BusinessHandler) Create(c *gin.Context) {
	var req dto.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.businessSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.Created(c, result)
}

// List GET /api/v1/businesses?keyword=xxx
func (h *BusinessHandler) List(c *gin.Context) {
	list, err := h.businessSvc.List(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, list)
}

// GetByID GET /api/v1/businesses/:id
func (h *BusinessHandler) GetByID(c *gin.Context) {
	result, err := h.businessSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update PUT /api/v1/businesses/:id
func (h *BusinessHandler) Update(c *gin.Context) {
	var req dto.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.businessSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete DELETE /api/v1/businesses/:id
func (h *BusinessHandler) Delete(c *gin.Context) {
	if err := h.businessSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ═══════════════════════════════════════════════════════════
// 学生
// ═══════════════════════════════════════════════════════════

// StudentHandler 学生 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// Create POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.studentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.Created(c, result)
}

// List GET /api/v1/students?semester=S8
func (h *StudentHandler) List(c *gin.Context) {
	list, err := h.studentSvc.List(c.Request.Context(), c.Query("semester"))
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, list)
}

// GetByID GET /api/v1/students/:id
func (h *StudentHandler) GetByID(c *gin.Context) {
	result, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ═══════════════════════════════════════════════════════════
// 导师
// ═══════════════════════════════════════════════════════════

// MentorHandler 导师 HTTP 处理器
type MentorHandler struct {
	mentorSvc service.MentorService
}

// NewMentorHandler 创建 MentorHandler
func NewMentorHandler(mentorSvc service.MentorService) *MentorHandler {
	return &MentorHandler{mentorSvc: mentorSvc}
}

// Create POST /api/v1/mentors
func (h *MentorHandler) Create(c *gin.Context) {
	var req dto.MentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.mentorSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.Created(c, result)
}

// List GET /api/v1/mentors
func (h *MentorHandler) List(c *gin.Context) {
	list, err := h.mentorSvc.List(c.Request.Context())
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, list)
}

// GetByID GET /api/v1/mentors/:id
func (h *MentorHandler) GetByID(c *gin.Context) {
	result, err := h.mentorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Update PUT /api/v1/mentors/:id
func (h *MentorHandler) Update(c *gin.Context) {
	var req dto.MentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数错误: "+err.Error())
		return
	}
	result, err := h.mentorSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete DELETE /api/v1/mentors/:id
func (h *MentorHandler) Delete(c *gin.Context) {
	if err := h.mentorSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleReferenceError(c, err)
		return
	}
	response.OK(c, nil)
}
