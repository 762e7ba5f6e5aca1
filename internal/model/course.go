package model

import "gorm.io/gorm"

// 依赖类型
const (
	DependencyPrerequisite = "PREREQUISITE"
	DependencyCorequisite  = "COREQUISITE"
	DependencyStatus       = "STATUS"
)

// Course 课程目录 — 对应 courses
// 一旦被成绩记录引用即视为不可变
type Course struct {
	CourseID string `gorm:"type:uuid;primaryKey"                 json:"course_id"`
	Code     string `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Title    string `gorm:"type:varchar(200);not null"            json:"title"`
	Credits  int    `gorm:"type:smallint;not null;default:3"      json:"credits"`
	IsActive bool   `gorm:"not null;default:true"                 json:"is_active"`
	BaseModel
}

func (Course) TableName() string { return "courses" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CourseID)
	return nil
}

// CourseDependency 课程依赖 — 对应 course_dependencies
// 同一 logic_set_id 内为 AND，不同 logic_set_id 之间为 OR
type CourseDependency struct {
	DependencyID       string  `gorm:"type:uuid;primaryKey"                json:"dependency_id"`
	CourseID           string  `gorm:"type:uuid;not null;index"            json:"course_id"`
	DependencyCourseID *string `gorm:"type:uuid"                           json:"dependency_course_id,omitempty"`
	Kind               string  `gorm:"type:varchar(20);not null"           json:"kind"`                   // PREREQUISITE | COREQUISITE | STATUS
	StatusToken        string  `gorm:"type:varchar(50)"                    json:"status_token,omitempty"` // 如 JUNIOR_STANDING
	LogicSetID         int     `gorm:"not null;default:1"                  json:"logic_set_id"`
	BaseModel

	DependencyCourse *Course `gorm:"foreignKey:DependencyCourseID;references:CourseID" json:"dependency_course,omitempty"`
}

func (CourseDependency) TableName() string { return "course_dependencies" }

func (d *CourseDependency) BeforeCreate(*gorm.DB) error {
	ensureID(&d.DependencyID)
	return nil
}
