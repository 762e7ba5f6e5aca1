package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ensureID 主键为空时生成 UUID（兼容 sqlite，不依赖 gen_random_uuid）
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All 返回全部模型，供 AutoMigrate 使用
func All() []interface{} {
	return []interface{}{
		&User{},
		&StudentProfile{},
		&Course{},
		&CourseDependency{},
		&Program{},
		&StudentProgramAssignment{},
		&RequirementGroup{},
		&RequirementGroupCourse{},
		&RecommendedSequenceEntry{},
		&TranscriptRecord{},
		&PlanDraft{},
		&SemesterDefinition{},
		&PlanEntry{},
		&SemesterApproval{},
	}
}
