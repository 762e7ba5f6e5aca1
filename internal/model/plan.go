package model

import (
	"time"

	"gorm.io/gorm"
)

// 计划条目状态
const (
	EntryDraft     = "DRAFT"
	EntrySubmitted = "SUBMITTED"
	EntryApproved  = "APPROVED"
	EntryRejected  = "REJECTED"
)

// 审批状态
const (
	ApprovalPending       = "PENDING"
	ApprovalApproved      = "APPROVED"
	ApprovalNeedsRevision = "NEEDS_REVISION"
)

// PlanDraft 规划草稿（what-if 场景），每个学生恰有一个默认草稿 — 对应 plan_drafts
type PlanDraft struct {
	DraftID   string `gorm:"type:uuid;primaryKey"       json:"draft_id"`
	StudentID string `gorm:"type:uuid;not null;index"   json:"student_id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	IsDefault bool   `gorm:"not null;default:false"     json:"is_default"`
	BaseModel
}

func (PlanDraft) TableName() string { return "plan_drafts" }

func (d *PlanDraft) BeforeCreate(*gorm.DB) error {
	ensureID(&d.DraftID)
	return nil
}

// SemesterDefinition 草稿内学期定义 — 对应 semester_definitions
// 锁定的学期拒绝一切条目变更
type SemesterDefinition struct {
	DefinitionID   string `gorm:"type:uuid;primaryKey"                              json:"definition_id"`
	DraftID        string `gorm:"type:uuid;not null;uniqueIndex:uq_semester_def"    json:"draft_id"`
	SemesterNumber int    `gorm:"not null;uniqueIndex:uq_semester_def"              json:"semester_number"`
	Term           string `gorm:"type:varchar(10)"                                  json:"term,omitempty"` // FALL | SPRING | SUMMER
	Year           int    `gorm:"not null;default:0"                                json:"year"`
	IsLocked       bool   `gorm:"not null;default:false"                            json:"is_locked"`
	BaseModel
}

func (SemesterDefinition) TableName() string { return "semester_definitions" }

func (s *SemesterDefinition) BeforeCreate(*gorm.DB) error {
	ensureID(&s.DefinitionID)
	return nil
}

// PlanEntry 计划条目（student_plan 行）— 对应 plan_entries
type PlanEntry struct {
	EntryID        string `gorm:"type:uuid;primaryKey"                           json:"entry_id"`
	StudentID      string `gorm:"type:uuid;not null;index"                       json:"student_id"`
	DraftID        string `gorm:"type:uuid;not null;uniqueIndex:uq_draft_course" json:"draft_id"`
	CourseID       string `gorm:"type:uuid;not null;uniqueIndex:uq_draft_course" json:"course_id"`
	SemesterNumber int    `gorm:"not null"                                       json:"semester_number"`
	OrderIndex     int    `gorm:"not null;default:0"                             json:"order_index"`
	Status         string `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	PrereqsMet     bool   `gorm:"not null;default:false"                         json:"prereqs_met"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (PlanEntry) TableName() string { return "plan_entries" }

func (e *PlanEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.EntryID)
	return nil
}

// SemesterApproval 学期审批记录，每 (学生, 全局学期) 一条 — 对应 semester_approvals
type SemesterApproval struct {
	ApprovalID     string     `gorm:"type:uuid;primaryKey"                          json:"approval_id"`
	StudentID      string     `gorm:"type:uuid;not null;uniqueIndex:uq_approval"    json:"student_id"`
	SemesterKey    string     `gorm:"type:varchar(20);not null;uniqueIndex:uq_approval" json:"semester_key"`
	DraftID        string     `gorm:"type:uuid;not null"                            json:"draft_id"`
	SemesterNumber int        `gorm:"not null"                                      json:"semester_number"`
	AdvisorID      *string    `gorm:"type:uuid;index"                               json:"advisor_id,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null"                     json:"status"`
	Comments       string     `gorm:"type:text"                                     json:"comments,omitempty"`
	SubmittedAt    time.Time  `gorm:"not null"                                      json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	VersionedModel
}

func (SemesterApproval) TableName() string { return "semester_approvals" }

func (a *SemesterApproval) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ApprovalID)
	return nil
}
