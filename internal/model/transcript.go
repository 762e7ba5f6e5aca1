package model

import "gorm.io/gorm"

// 成绩记录状态
const (
	TranscriptCompleted  = "COMPLETED"
	TranscriptInProgress = "IN_PROGRESS"
	TranscriptTransfer   = "TRANSFER"
	TranscriptFailed     = "FAILED"
)

// TranscriptRecord 成绩记录 — 对应 transcript_records
// 只读历史，由教务流程维护
type TranscriptRecord struct {
	RecordID  string  `gorm:"type:uuid;primaryKey"      json:"record_id"`
	StudentID string  `gorm:"type:uuid;not null;index"  json:"student_id"`
	CourseID  string  `gorm:"type:uuid;not null"        json:"course_id"`
	Semester  *string `gorm:"type:varchar(20)"          json:"semester,omitempty"` // 如 FALL-2025
	Grade     string  `gorm:"type:varchar(5)"           json:"grade,omitempty"`
	Status    string  `gorm:"type:varchar(20);not null" json:"status"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (TranscriptRecord) TableName() string { return "transcript_records" }

func (r *TranscriptRecord) BeforeCreate(*gorm.DB) error {
	ensureID(&r.RecordID)
	return nil
}
