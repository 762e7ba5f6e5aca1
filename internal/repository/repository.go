package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepath/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Course     CourseRepository
	Program    ProgramRepository
	Transcript TranscriptRepository
	Draft      DraftRepository
	Semester   SemesterRepository
	Entry      PlanEntryRepository
	Approval   ApprovalRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Course:     NewCourseRepo(db),
		Program:    NewProgramRepo(db),
		Transcript: NewTranscriptRepo(db),
		Draft:      NewDraftRepo(db),
		Semester:   NewSemesterRepo(db),
		Entry:      NewPlanEntryRepo(db),
		Approval:   NewApprovalRepo(db),
	}
}

// WithTx 返回绑定到事务的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// BeginTx 开启事务，调用方负责 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// Transaction 在单个事务中执行 fn；fn 返回错误或 panic 时回滚
//
// 未绑定数据库（内存仓储）时直接执行 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// AutoMigrate 按模型建表（sqlite 本地模式与测试使用；postgres 使用 SQL 迁移）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
