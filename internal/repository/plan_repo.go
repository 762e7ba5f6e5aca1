package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursepath/internal/model"
)

// DraftRepository 规划草稿数据访问接口
type DraftRepository interface {
	Create(ctx context.Context, draft *model.PlanDraft) error
	GetByID(ctx context.Context, id string) (*model.PlanDraft, error)
	GetDefault(ctx context.Context, studentID string) (*model.PlanDraft, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.PlanDraft, error)
	// SetDefault 清除学生其他草稿的默认标记并设置指定草稿，须在事务中调用
	SetDefault(ctx context.Context, studentID, draftID string) error
}

// SemesterRepository 草稿学期定义数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, def *model.SemesterDefinition) error
	Get(ctx context.Context, draftID string, number int) (*model.SemesterDefinition, error)
	// GetForUpdate 以行锁读取学期，串行化同一学期的并发变更
	GetForUpdate(ctx context.Context, draftID string, number int) (*model.SemesterDefinition, error)
	SetLocked(ctx context.Context, draftID string, number int, locked bool) error
	ListByDraft(ctx context.Context, draftID string) ([]model.SemesterDefinition, error)
}

// PlanEntryRepository 计划条目数据访问接口
type PlanEntryRepository interface {
	Create(ctx context.Context, entry *model.PlanEntry) error
	GetByDraftCourse(ctx context.Context, draftID, courseID string) (*model.PlanEntry, error)
	ListByDraft(ctx context.Context, draftID string) ([]model.PlanEntry, error)
	ListBySemester(ctx context.Context, draftID string, number int) ([]model.PlanEntry, error)
	MaxOrderIndex(ctx context.Context, draftID string, number int) (int, error)
	UpdateStatus(ctx context.Context, entryIDs []string, status string) error
	Move(ctx context.Context, entryID string, number, orderIndex int) error
	SetPrereqsMet(ctx context.Context, entryID string, met bool) error
	Delete(ctx context.Context, entryID string) error
}

// ── Draft Repository 实现 ──

type draftRepo struct {
	db *gorm.DB
}

func NewDraftRepo(db *gorm.DB) DraftRepository {
	return &draftRepo{db: db}
}

func (r *draftRepo) Create(ctx context.Context, draft *model.PlanDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepo) GetByID(ctx context.Context, id string) (*model.PlanDraft, error) {
	var draft model.PlanDraft
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", id).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepo) GetDefault(ctx context.Context, studentID string) (*model.PlanDraft, error) {
	var draft model.PlanDraft
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND is_default = ?", studentID, true).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepo) ListByStudent(ctx context.Context, studentID string) ([]model.PlanDraft, error) {
	var drafts []model.PlanDraft
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("is_default DESC, created_at ASC").
		Find(&drafts).Error
	return drafts, err
}

func (r *draftRepo) SetDefault(ctx context.Context, studentID, draftID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.PlanDraft{}).
		Where("student_id = ? AND is_default = ?", studentID, true).
		Update("is_default", false).Error; err != nil {
		return err
	}
	result := db.Model(&model.PlanDraft{}).
		Where("draft_id = ? AND student_id = ?", draftID, studentID).
		Update("is_default", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── Semester Repository 实现 ──

type semesterRepo struct {
	db *gorm.DB
}

func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Create(ctx context.Context, def *model.SemesterDefinition) error {
	return r.db.WithContext(ctx).Create(def).Error
}

func (r *semesterRepo) Get(ctx context.Context, draftID string, number int) (*model.SemesterDefinition, error) {
	return r.get(r.db.WithContext(ctx), draftID, number)
}

func (r *semesterRepo) GetForUpdate(ctx context.Context, draftID string, number int) (*model.SemesterDefinition, error) {
	// sqlite 驱动忽略 FOR UPDATE
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), draftID, number)
}

func (r *semesterRepo) get(db *gorm.DB, draftID string, number int) (*model.SemesterDefinition, error) {
	var def model.SemesterDefinition
	err := db.
		Where("draft_id = ? AND semester_number = ?", draftID, number).
		First(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *semesterRepo) SetLocked(ctx context.Context, draftID string, number int, locked bool) error {
	return r.db.WithContext(ctx).
		Model(&model.SemesterDefinition{}).
		Where("draft_id = ? AND semester_number = ?", draftID, number).
		Update("is_locked", locked).Error
}

func (r *semesterRepo) ListByDraft(ctx context.Context, draftID string) ([]model.SemesterDefinition, error) {
	var defs []model.SemesterDefinition
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("semester_number ASC").
		Find(&defs).Error
	return defs, err
}

// ── PlanEntry Repository 实现 ──

type planEntryRepo struct {
	db *gorm.DB
}

func NewPlanEntryRepo(db *gorm.DB) PlanEntryRepository {
	return &planEntryRepo{db: db}
}

func (r *planEntryRepo) Create(ctx context.Context, entry *model.PlanEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *planEntryRepo) GetByDraftCourse(ctx context.Context, draftID, courseID string) (*model.PlanEntry, error) {
	var entry model.PlanEntry
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("draft_id = ? AND course_id = ?", draftID, courseID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *planEntryRepo) ListByDraft(ctx context.Context, draftID string) ([]model.PlanEntry, error) {
	var entries []model.PlanEntry
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("draft_id = ?", draftID).
		Order("semester_number ASC, order_index ASC").
		Find(&entries).Error
	return entries, err
}

func (r *planEntryRepo) ListBySemester(ctx context.Context, draftID string, number int) ([]model.PlanEntry, error) {
	var entries []model.PlanEntry
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("draft_id = ? AND semester_number = ?", draftID, number).
		Order("order_index ASC").
		Find(&entries).Error
	return entries, err
}

func (r *planEntryRepo) MaxOrderIndex(ctx context.Context, draftID string, number int) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.PlanEntry{}).
		Where("draft_id = ? AND semester_number = ?", draftID, number).
		Select("COALESCE(MAX(order_index), -1)").
		Row().Scan(&max)
	return max, err
}

func (r *planEntryRepo) UpdateStatus(ctx context.Context, entryIDs []string, status string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.PlanEntry{}).
		Where("entry_id IN ?", entryIDs).
		Update("status", status).Error
}

func (r *planEntryRepo) Move(ctx context.Context, entryID string, number, orderIndex int) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanEntry{}).
		Where("entry_id = ?", entryID).
		Updates(map[string]interface{}{
			"semester_number": number,
			"order_index":     orderIndex,
		}).Error
}

func (r *planEntryRepo) SetPrereqsMet(ctx context.Context, entryID string, met bool) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanEntry{}).
		Where("entry_id = ?", entryID).
		Update("prereqs_met", met).Error
}

func (r *planEntryRepo) Delete(ctx context.Context, entryID string) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Delete(&model.PlanEntry{}).Error
}
