package dto

// ── 先修判定 ──

// ResolvePrerequisitesRequest 按给定已修课程判定先修
type ResolvePrerequisitesRequest struct {
	CourseID           string   `json:"course_id"            binding:"required"`
	CompletedCourseIDs []string `json:"completed_course_ids"`
}

// PrerequisiteResponse 先修判定结果
type PrerequisiteResponse struct {
	CourseID  string   `json:"course_id"`
	Code      string   `json:"code"`
	Satisfied bool     `json:"satisfied"`
	Missing   []string `json:"missing"`
}
