package model

import "gorm.io/gorm"

// 培养方案类型
const (
	ProgramMajor         = "MAJOR"
	ProgramMinor         = "MINOR"
	ProgramConcentration = "CONCENTRATION"
)

// 推荐序列槽位类型
const (
	SlotCourse        = "COURSE"        // 指定课程
	SlotGroup         = "GROUP"         // 指定要求组中任选一门未完成课程
	SlotMinor         = "MINOR"         // 从学生辅修方案中选
	SlotConcentration = "CONCENTRATION" // 从学生方向方案中选
	SlotElective      = "ELECTIVE"      // 通选，需手工选择
)

// Program 培养方案（主修/辅修/方向）— 对应 programs
type Program struct {
	ProgramID       string  `gorm:"type:uuid;primaryKey"                 json:"program_id"`
	Code            string  `gorm:"type:varchar(30);not null;uniqueIndex" json:"code"`
	Name            string  `gorm:"type:varchar(200);not null"            json:"name"`
	Type            string  `gorm:"type:varchar(20);not null"             json:"type"` // MAJOR | MINOR | CONCENTRATION
	TotalCredits    int     `gorm:"not null;default:0"                    json:"total_credits"`
	ParentProgramID *string `gorm:"type:uuid"                             json:"parent_program_id,omitempty"` // 方向所属主修
	BaseModel
}

func (Program) TableName() string { return "programs" }

func (p *Program) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ProgramID)
	return nil
}

// RequirementGroup 要求组（bucket），可自引用形成树 — 对应 requirement_groups
type RequirementGroup struct {
	GroupID         string  `gorm:"type:uuid;primaryKey"       json:"group_id"`
	ProgramID       string  `gorm:"type:uuid;not null;index"   json:"program_id"`
	Name            string  `gorm:"type:varchar(200);not null" json:"name"`
	CreditsRequired int     `gorm:"not null;default:0"         json:"credits_required"`
	MinCourses      int     `gorm:"not null;default:0"         json:"min_courses"`
	ParentGroupID   *string `gorm:"type:uuid"                  json:"parent_group_id,omitempty"`
	SortOrder       int     `gorm:"not null;default:0"         json:"sort_order"`
	BaseModel

	Courses []RequirementGroupCourse `gorm:"foreignKey:GroupID" json:"courses,omitempty"`
}

func (RequirementGroup) TableName() string { return "requirement_groups" }

func (g *RequirementGroup) BeforeCreate(*gorm.DB) error {
	ensureID(&g.GroupID)
	return nil
}

// RequirementGroupCourse 要求组-课程关联 — 对应 requirement_group_courses
type RequirementGroupCourse struct {
	GroupID     string `gorm:"type:uuid;primaryKey" json:"group_id"`
	CourseID    string `gorm:"type:uuid;primaryKey" json:"course_id"`
	IsMandatory bool   `gorm:"not null;default:false" json:"is_mandatory"`

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

func (RequirementGroupCourse) TableName() string { return "requirement_group_courses" }

// RecommendedSequenceEntry 推荐修读序列 — 对应 recommended_sequence_entries
type RecommendedSequenceEntry struct {
	EntryID        string  `gorm:"type:uuid;primaryKey"      json:"entry_id"`
	ProgramID      string  `gorm:"type:uuid;not null;index"  json:"program_id"`
	SemesterNumber int     `gorm:"not null"                  json:"semester_number"`
	SlotType       string  `gorm:"type:varchar(20);not null" json:"slot_type"`
	CourseID       *string `gorm:"type:uuid"                 json:"course_id,omitempty"`
	GroupID        *string `gorm:"type:uuid"                 json:"group_id,omitempty"`
	Label          string  `gorm:"type:varchar(200)"         json:"label,omitempty"`
	SortOrder      int     `gorm:"not null;default:0"        json:"sort_order"`
	BaseModel
}

func (RecommendedSequenceEntry) TableName() string { return "recommended_sequence_entries" }

func (e *RecommendedSequenceEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&e.EntryID)
	return nil
}
