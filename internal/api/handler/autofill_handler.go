package handler

import (
	"github.com/gin-gonic/gin"

	"coursepath/internal/dto"
	"coursepath/internal/service"
	"coursepath/pkg/response"
)

// AutoFillHandler 自动填充 HTTP 处理器
type AutoFillHandler struct {
	autoFillSvc service.AutoFillService
}

// NewAutoFillHandler 创建 AutoFillHandler
func NewAutoFillHandler(autoFillSvc service.AutoFillService) *AutoFillHandler {
	return &AutoFillHandler{autoFillSvc: autoFillSvc}
}

// Preview 生成自动填充建议（不写入）
// GET /api/v1/students/:id/drafts/:draft_id/autofill?mode=remaining|full
func (h *AutoFillHandler) Preview(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	var req dto.AutoFillRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "mode 仅支持 remaining 或 full")
		return
	}

	res, err := h.autoFillSvc.Generate(c.Request.Context(), studentID, draftParam(c), req.Mode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// Apply 应用自动填充建议
// POST /api/v1/students/:id/drafts/:draft_id/autofill/apply?mode=remaining|full
func (h *AutoFillHandler) Apply(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	var req dto.AutoFillRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "mode 仅支持 remaining 或 full")
		return
	}

	res, err := h.autoFillSvc.Apply(c.Request.Context(), studentID, draftParam(c), req.Mode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}
