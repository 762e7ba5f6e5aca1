package handler

import (
	"github.com/gin-gonic/gin"

	"coursepath/internal/dto"
	"coursepath/internal/service"
	"coursepath/pkg/response"
)

// PrerequisiteHandler 先修判定 HTTP 处理器
type PrerequisiteHandler struct {
	prereqSvc service.PrerequisiteService
}

// NewPrerequisiteHandler 创建 PrerequisiteHandler
func NewPrerequisiteHandler(prereqSvc service.PrerequisiteService) *PrerequisiteHandler {
	return &PrerequisiteHandler{prereqSvc: prereqSvc}
}

// Resolve 按给定已修课程判定先修
// POST /api/v1/prerequisites/resolve
func (h *PrerequisiteHandler) Resolve(c *gin.Context) {
	var req dto.ResolvePrerequisitesRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.prereqSvc.Resolve(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// CheckForStudent 按学生成绩单判定先修
// GET /api/v1/students/:id/prerequisites/:course_id
func (h *PrerequisiteHandler) CheckForStudent(c *gin.Context) {
	studentID, ok := studentParam(c)
	if !ok {
		return
	}

	res, err := h.prereqSvc.CheckForStudent(c.Request.Context(), studentID, c.Param("course_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}
