package dto

import "coursepath/internal/domain/recommend"

// AutoFillRequest 自动填充参数
type AutoFillRequest struct {
	Mode string `form:"mode" json:"mode" binding:"omitempty,oneof=remaining full"`
}

// AutoFillResponse 自动填充建议
type AutoFillResponse struct {
	DraftID           string                 `json:"draft_id"`
	Mode              string                 `json:"mode"`
	SemestersConsumed int                    `json:"semesters_consumed"`
	Additions         []recommend.Suggestion `json:"additions"`
	Conflicts         []recommend.Note       `json:"conflicts"`
}

// ApplyAutoFillResponse 应用自动填充结果
type ApplyAutoFillResponse struct {
	DraftID   string                 `json:"draft_id"`
	Mode      string                 `json:"mode"`
	Applied   []CourseChangeResponse `json:"applied"`
	Conflicts []recommend.Note       `json:"conflicts"`
}
