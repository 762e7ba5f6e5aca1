package handler

import "coursepath/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Prerequisite *PrerequisiteHandler
	Audit        *AuditHandler
	Plan         *PlanHandler
	AutoFill     *AutoFillHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Prerequisite: NewPrerequisiteHandler(svc.Prerequisite),
		Audit:        NewAuditHandler(svc.Audit),
		Plan:         NewPlanHandler(svc.Plan),
		AutoFill:     NewAutoFillHandler(svc.AutoFill),
		Export:       NewExportHandler(svc.Export),
	}
}
