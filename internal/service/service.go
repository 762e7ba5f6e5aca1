package service

import (
	"context"

	"go.uber.org/zap"

	"coursepath/config"
	"coursepath/internal/domain/lifecycle"
	"coursepath/internal/repository"
)

// AuditCache 学位审计结果缓存；为 nil 时不缓存
type AuditCache interface {
	GetAudit(ctx context.Context, studentID string, dst interface{}) (bool, error)
	SetAudit(ctx context.Context, studentID string, value interface{}) error
	InvalidateAudit(ctx context.Context, studentID string) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Prerequisite PrerequisiteService
	Audit        AuditService
	Plan         PlanService
	AutoFill     AutoFillService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache AuditCache,
	logger *zap.Logger,
) *Service {
	limits := lifecycle.CreditLimits{
		Normal:   cfg.Planner.NormalCreditLimit,
		Absolute: cfg.Planner.AbsoluteCreditLimit,
	}
	auditSvc := NewAuditService(repo, cache, logger)
	planSvc := NewPlanService(repo, limits, cache, logger)
	return &Service{
		Prerequisite: NewPrerequisiteService(repo, logger),
		Audit:        auditSvc,
		Plan:         planSvc,
		AutoFill:     NewAutoFillService(repo, planSvc, cfg.Planner.DefaultFillMode, logger),
		Export:       NewExportService(planSvc, auditSvc, logger),
	}
}
