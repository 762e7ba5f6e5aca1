package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepath/internal/model"
	pkgerrors "coursepath/pkg/errors"
)

// ApprovalRepository 学期审批记录数据访问接口
type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.SemesterApproval) error
	GetByKey(ctx context.Context, studentID, semesterKey string) (*model.SemesterApproval, error)
	// Update 乐观锁更新，版本不匹配返回 ErrOptimisticLock
	Update(ctx context.Context, approval *model.SemesterApproval) error
	ListPendingByAdvisor(ctx context.Context, advisorID string) ([]model.SemesterApproval, error)
	ListByDraft(ctx context.Context, draftID string) ([]model.SemesterApproval, error)
}

type approvalRepo struct {
	db *gorm.DB
}

func NewApprovalRepo(db *gorm.DB) ApprovalRepository {
	return &approvalRepo{db: db}
}

func (r *approvalRepo) Create(ctx context.Context, approval *model.SemesterApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *approvalRepo) GetByKey(ctx context.Context, studentID, semesterKey string) (*model.SemesterApproval, error) {
	var approval model.SemesterApproval
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND semester_key = ?", studentID, semesterKey).
		First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepo) Update(ctx context.Context, approval *model.SemesterApproval) error {
	oldVersion := approval.Version
	result := r.db.WithContext(ctx).
		Model(approval).
		Where("approval_id = ? AND version = ?", approval.ApprovalID, oldVersion).
		Updates(map[string]interface{}{
			"draft_id":        approval.DraftID,
			"semester_number": approval.SemesterNumber,
			"advisor_id":      approval.AdvisorID,
			"status":          approval.Status,
			"comments":        approval.Comments,
			"submitted_at":    approval.SubmittedAt,
			"reviewed_at":     approval.ReviewedAt,
			"updated_by":      approval.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	approval.Version = oldVersion + 1
	return nil
}

func (r *approvalRepo) ListPendingByAdvisor(ctx context.Context, advisorID string) ([]model.SemesterApproval, error) {
	var list []model.SemesterApproval
	err := r.db.WithContext(ctx).
		Where("advisor_id = ? AND status = ?", advisorID, model.ApprovalPending).
		Order("submitted_at ASC").
		Find(&list).Error
	return list, err
}

func (r *approvalRepo) ListByDraft(ctx context.Context, draftID string) ([]model.SemesterApproval, error) {
	var list []model.SemesterApproval
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("semester_number ASC").
		Find(&list).Error
	return list, err
}
