package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "coursepath/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// StatusOf 领域错误类别对应的 HTTP 状态码
func StatusOf(kind pkgerrors.Kind) int {
	switch kind {
	case pkgerrors.KindNotFound:
		return http.StatusNotFound
	case pkgerrors.KindGuard, pkgerrors.KindIntegrity:
		return http.StatusConflict
	case pkgerrors.KindCapacity:
		return http.StatusUnprocessableEntity
	case pkgerrors.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// FromError 按领域错误类别写出响应；非领域错误按 500 处理，不暴露内部信息
func FromError(c *gin.Context, err error) {
	if de, ok := pkgerrors.As(err); ok {
		details := ""
		if msg := err.Error(); msg != de.Message {
			details = msg
		}
		ErrorWithDetails(c, StatusOf(de.Kind), de.Code, de.Message, details)
		return
	}
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		Error(c, http.StatusConflict, 10006, err.Error())
		return
	}
	_ = c.Error(err)
	InternalError(c)
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
