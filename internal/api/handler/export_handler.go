package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCampaign 导出批次实习一览
// GET /api/v1/export/campaigns/:id/xlsx
func (h *ExportHandler) ExportCampaign(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, buf, filename, contentTypeXLSX)
}

// ExportCalendar 导出批次实习日历
// GET /api/v1/export/campaigns/:id/ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, buf, filename, contentTypeICS)
}

func attachment(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCampaignNotFound):
		response.NotFound(c, 15001, "批次不存在")
	case errors.Is(err, service.ErrExportNoInternships):
		response.NotFound(c, 16101, "该批次暂无实习")
	default:
		response.InternalError(c)
	}
}
