package model

import "gorm.io/gorm"

// 角色
const (
	RoleStudent = "student"
	RoleAdvisor = "advisor"
	RoleAdmin   = "admin"
)

// User 用户（学生/导师/管理员）— 对应 users
type User struct {
	UserID string `gorm:"type:uuid;primaryKey"       json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null" json:"name"`
	Email  string `gorm:"type:varchar(200);uniqueIndex" json:"email"`
	Role   string `gorm:"type:varchar(20);not null"  json:"role"`
	BaseModel
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}

// StudentProfile 学生档案，记录导师分配 — 对应 student_profiles
type StudentProfile struct {
	StudentID string  `gorm:"type:uuid;primaryKey"  json:"student_id"`
	AdvisorID *string `gorm:"type:uuid;index"       json:"advisor_id,omitempty"`
	EntryTerm string  `gorm:"type:varchar(10)"      json:"entry_term,omitempty"`
	EntryYear int     `gorm:"not null;default:0"    json:"entry_year"`
	BaseModel

	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Advisor *User `gorm:"foreignKey:AdvisorID;references:UserID" json:"advisor,omitempty"`
}

func (StudentProfile) TableName() string { return "student_profiles" }

// StudentProgramAssignment 学生-培养方案分配 — 对应 student_program_assignments
type StudentProgramAssignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey"      json:"assignment_id"`
	StudentID    string `gorm:"type:uuid;not null;index"  json:"student_id"`
	ProgramID    string `gorm:"type:uuid;not null"        json:"program_id"`
	ProgramType  string `gorm:"type:varchar(20);not null" json:"program_type"`
	IsPrimary    bool   `gorm:"not null;default:false"    json:"is_primary"`
	BaseModel

	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

func (StudentProgramAssignment) TableName() string { return "student_program_assignments" }

func (a *StudentProgramAssignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}
