package dto

// ── 草稿 ──

// CreateDraftRequest 创建草稿请求
type CreateDraftRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// DraftResponse 草稿响应
type DraftResponse struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// ── 课程增删移 ──

// AddCourseRequest 添加课程请求；Term/Year 仅在学期首次出现时用于定义学期
type AddCourseRequest struct {
	CourseID       string `json:"course_id"       binding:"required"`
	SemesterNumber int    `json:"semester_number" binding:"required,min=1"`
	Term           string `json:"term"            binding:"omitempty,oneof=FALL SPRING SUMMER"`
	Year           int    `json:"year"            binding:"omitempty,min=2000,max=2100"`
}

// MoveCourseRequest 移动课程请求
type MoveCourseRequest struct {
	SemesterNumber int `json:"semester_number" binding:"required,min=1"`
}

// PlanEntryResponse 计划条目
type PlanEntryResponse struct {
	EntryID        string `json:"entry_id"`
	CourseID       string `json:"course_id"`
	Code           string `json:"code"`
	Title          string `json:"title"`
	Credits        int    `json:"credits"`
	SemesterNumber int    `json:"semester_number"`
	OrderIndex     int    `json:"order_index"`
	Status         string `json:"status"`
	PrereqsMet     bool   `json:"prereqs_met"`
}

// CourseChangeResponse 添加/移动课程结果
type CourseChangeResponse struct {
	Entry           PlanEntryResponse `json:"entry"`
	PrereqsMet      bool              `json:"prereqs_met"`
	MissingPrereqs  []string          `json:"missing_prereqs"`
	SemesterCredits int               `json:"semester_credits"`
	CreditLevel     string            `json:"credit_level"`
	Warning         string            `json:"warning,omitempty"`
}

// ── 计划视图 ──

// SemesterResponse 单学期视图
type SemesterResponse struct {
	Number      int                 `json:"number"`
	Term        string              `json:"term,omitempty"`
	Year        int                 `json:"year,omitempty"`
	Label       string              `json:"label"`
	Status      string              `json:"status"`
	IsLocked    bool                `json:"is_locked"`
	Credits     int                 `json:"credits"`
	CreditLevel string              `json:"credit_level"`
	Warning     string              `json:"warning,omitempty"`
	Entries     []PlanEntryResponse `json:"entries"`
	Approval    *ApprovalResponse   `json:"approval,omitempty"`
}

// PlanResponse 草稿完整计划
type PlanResponse struct {
	DraftID      string             `json:"draft_id"`
	StudentID    string             `json:"student_id"`
	Name         string             `json:"name"`
	IsDefault    bool               `json:"is_default"`
	TotalCredits int                `json:"total_credits"`
	Semesters    []SemesterResponse `json:"semesters"`
}

// ValidatedEntry 单条目先修校验结果
type ValidatedEntry struct {
	EntryID        string   `json:"entry_id"`
	CourseID       string   `json:"course_id"`
	Code           string   `json:"code"`
	SemesterNumber int      `json:"semester_number"`
	PrereqsMet     bool     `json:"prereqs_met"`
	Missing        []string `json:"missing"`
}

// ValidatePlanResponse 计划先修校验结果
type ValidatePlanResponse struct {
	DraftID string           `json:"draft_id"`
	Unmet   int              `json:"unmet"`
	Entries []ValidatedEntry `json:"entries"`
}

// ── 审批 ──

// ReviewRequest 导师审核请求；退回时 comments 必填（由服务层校验）
type ReviewRequest struct {
	Comments string `json:"comments" binding:"max=2000"`
}

// ApprovalResponse 学期审批记录
type ApprovalResponse struct {
	ApprovalID     string  `json:"approval_id"`
	StudentID      string  `json:"student_id"`
	SemesterKey    string  `json:"semester_key"`
	DraftID        string  `json:"draft_id"`
	SemesterNumber int     `json:"semester_number"`
	AdvisorID      string  `json:"advisor_id,omitempty"`
	Status         string  `json:"status"`
	Comments       string  `json:"comments,omitempty"`
	SubmittedAt    string  `json:"submitted_at"`
	ReviewedAt     *string `json:"reviewed_at,omitempty"`
}

// TransitionResponse 学期状态变更结果
type TransitionResponse struct {
	SemesterNumber int               `json:"semester_number"`
	Status         string            `json:"status"`
	IsLocked       bool              `json:"is_locked"`
	Affected       int               `json:"affected"`
	Approval       *ApprovalResponse `json:"approval,omitempty"`
}
