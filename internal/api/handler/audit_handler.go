package handler

import (
	"github.com/gin-gonic/gin"

	"coursepath/internal/service"
	"coursepath/pkg/response"
)

// AuditHandler 学位审计 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// RunAudit 学位审计
// GET /api/v1/students/:id/audit
func (h *AuditHandler) RunAudit(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	res, err := h.auditSvc.RunAudit(c.Request.Context(), studentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}
