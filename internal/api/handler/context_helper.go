package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursepath/internal/api/middleware"
	"coursepath/pkg/response"
)

// defaultDraftAlias 路径中的 draft_id 为该值时使用学生的默认草稿
const defaultDraftAlias = "default"

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextRole)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// studentParam 路径参数 :id，"me" 表示当前用户
func studentParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return "", false
	}
	if id == "me" {
		return MustGetUserID(c)
	}
	return id, true
}

// draftParam 路径参数 :draft_id，"default" 映射为空串（默认草稿）
func draftParam(c *gin.Context) string {
	id := c.Param("draft_id")
	if id == defaultDraftAlias {
		return ""
	}
	return id
}

// semesterParam 路径参数 :n，须为正整数
func semesterParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		response.BadRequest(c, 10001, "学期号无效")
		return 0, false
	}
	return n, true
}

// bindJSON 绑定请求体，失败时写入 400 / 413 响应
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return false
	}
	return true
}
