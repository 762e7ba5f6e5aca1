package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepath/internal/model"
)

// ProgramRepository 培养方案、要求组与推荐序列数据访问接口
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id string) (*model.Program, error)
	CreateGroup(ctx context.Context, group *model.RequirementGroup) error
	AddGroupCourse(ctx context.Context, link *model.RequirementGroupCourse) error
	// ListGroups 获取若干培养方案的全部要求组（扁平），附带组内课程
	ListGroups(ctx context.Context, programIDs []string) ([]model.RequirementGroup, error)
	CreateSequenceEntry(ctx context.Context, entry *model.RecommendedSequenceEntry) error
	ListSequence(ctx context.Context, programID string) ([]model.RecommendedSequenceEntry, error)
}

type programRepo struct {
	db *gorm.DB
}

func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).
		Where("program_id = ?", id).
		First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) CreateGroup(ctx context.Context, group *model.RequirementGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *programRepo) AddGroupCourse(ctx context.Context, link *model.RequirementGroupCourse) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *programRepo) ListGroups(ctx context.Context, programIDs []string) ([]model.RequirementGroup, error) {
	var groups []model.RequirementGroup
	if len(programIDs) == 0 {
		return groups, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Courses").
		Preload("Courses.Course").
		Where("program_id IN ?", programIDs).
		Order("sort_order ASC, name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *programRepo) CreateSequenceEntry(ctx context.Context, entry *model.RecommendedSequenceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *programRepo) ListSequence(ctx context.Context, programID string) ([]model.RecommendedSequenceEntry, error) {
	var entries []model.RecommendedSequenceEntry
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("semester_number ASC, sort_order ASC").
		Find(&entries).Error
	return entries, err
}
