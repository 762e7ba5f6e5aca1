package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepath/internal/model"
)

// TranscriptRepository 成绩记录数据访问接口（只读历史）
type TranscriptRepository interface {
	Create(ctx context.Context, record *model.TranscriptRecord) error
	ListByStudent(ctx context.Context, studentID string) ([]model.TranscriptRecord, error)
}

type transcriptRepo struct {
	db *gorm.DB
}

func NewTranscriptRepo(db *gorm.DB) TranscriptRepository {
	return &transcriptRepo{db: db}
}

func (r *transcriptRepo) Create(ctx context.Context, record *model.TranscriptRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *transcriptRepo) ListByStudent(ctx context.Context, studentID string) ([]model.TranscriptRecord, error) {
	var records []model.TranscriptRecord
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}
