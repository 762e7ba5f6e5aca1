package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"coursepath/internal/service"
	"coursepath/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出计划与审计为 Excel
// GET /api/v1/students/:id/drafts/:draft_id/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportPlanXLSX(c.Request.Context(), studentID, draftParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportICS 导出计划为 iCalendar
// GET /api/v1/students/:id/drafts/:draft_id/export.ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportPlanICS(c.Request.Context(), studentID, draftParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeICS, data)
}

// attachment 设置下载响应头，文件名按 RFC 5987 编码
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
