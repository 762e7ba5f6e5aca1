package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"coursepath/internal/dto"
	"coursepath/internal/service"
	"coursepath/pkg/response"
)

// PlanHandler 学期计划与审批 HTTP 处理器
type PlanHandler struct {
	planSvc service.PlanService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc}
}

// ── 草稿 ──

// ListDrafts 草稿列表
// GET /api/v1/students/:id/drafts
func (h *PlanHandler) ListDrafts(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	drafts, err := h.planSvc.ListDrafts(c.Request.Context(), studentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": drafts})
}

// CreateDraft 创建草稿
// POST /api/v1/students/:id/drafts
func (h *PlanHandler) CreateDraft(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	var req dto.CreateDraftRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.planSvc.CreateDraft(c.Request.Context(), studentID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, draft)
}

// SetDefaultDraft 设为默认草稿
// PUT /api/v1/students/:id/drafts/:draft_id/default
func (h *PlanHandler) SetDefaultDraft(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	draft, err := h.planSvc.SetDefaultDraft(c.Request.Context(), studentID, draftParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, draft)
}

// ── 视图 ──

// GetPlan 草稿完整计划
// GET /api/v1/students/:id/drafts/:draft_id/plan
func (h *PlanHandler) GetPlan(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.GetPlan(c.Request.Context(), studentID, draftParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, plan)
}

// ValidatePlan 重新校验全部条目先修
// POST /api/v1/students/:id/drafts/:draft_id/validate
func (h *PlanHandler) ValidatePlan(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	res, err := h.planSvc.ValidatePlan(c.Request.Context(), studentID, draftParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// ── 课程增删移 ──

// AddCourse 添加课程
// POST /api/v1/students/:id/drafts/:draft_id/courses
func (h *PlanHandler) AddCourse(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	var req dto.AddCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.planSvc.AddCourse(c.Request.Context(), studentID, draftParam(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, res)
}

// RemoveCourse 移除课程
// DELETE /api/v1/students/:id/drafts/:draft_id/courses/:course_id
func (h *PlanHandler) RemoveCourse(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	if err := h.planSvc.RemoveCourse(c.Request.Context(), studentID, draftParam(c), c.Param("course_id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// MoveCourse 移动课程到其他学期
// PUT /api/v1/students/:id/drafts/:draft_id/courses/:course_id/move
func (h *PlanHandler) MoveCourse(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	var req dto.MoveCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.planSvc.MoveCourse(c.Request.Context(), studentID, draftParam(c), c.Param("course_id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// ── 学期流转 ──

// Submit 提交学期
// POST /api/v1/students/:id/drafts/:draft_id/semesters/:n/submit
func (h *PlanHandler) Submit(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	n, ok := semesterParam(c)
	if !ok {
		return
	}

	res, err := h.planSvc.Submit(c.Request.Context(), studentID, draftParam(c), n)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// Approve 导师审核通过
// POST /api/v1/students/:id/drafts/:draft_id/semesters/:n/approve
func (h *PlanHandler) Approve(c *gin.Context) {
	h.review(c, h.planSvc.Approve)
}

// Reject 导师退回
// POST /api/v1/students/:id/drafts/:draft_id/semesters/:n/reject
func (h *PlanHandler) Reject(c *gin.Context) {
	h.review(c, h.planSvc.Reject)
}

type reviewFunc func(ctx context.Context, advisorID, studentID, draftID string, n int, req *dto.ReviewRequest) (*dto.TransitionResponse, error)

func (h *PlanHandler) review(c *gin.Context, fn reviewFunc) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	n, ok := semesterParam(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	res, err := fn(c.Request.Context(), advisorID, studentID, draftParam(c), n, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// Revise 退回后修订
// POST /api/v1/students/:id/drafts/:draft_id/semesters/:n/revise
func (h *PlanHandler) Revise(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}
	n, ok := semesterParam(c)
	if !ok {
		return
	}

	res, err := h.planSvc.Revise(c.Request.Context(), studentID, draftParam(c), n)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// ListPendingApprovals 导师待审列表
// GET /api/v1/advisors/me/approvals
func (h *PlanHandler) ListPendingApprovals(c *gin.Context) {
	advisorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.planSvc.ListPendingApprovals(c.Request.Context(), advisorID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}
