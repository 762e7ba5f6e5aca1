package service

import pkgerrors "coursepath/pkg/errors"

// ── 业务错误 ──

var (
	ErrCourseNotFound   = pkgerrors.New(pkgerrors.KindNotFound, 30001, "课程不存在")
	ErrDraftNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 30002, "草稿不存在")
	ErrEntryNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 30003, "该课程不在当前计划中")
	ErrStudentNotFound  = pkgerrors.New(pkgerrors.KindNotFound, 30004, "学生档案不存在")
	ErrCourseInactive   = pkgerrors.New(pkgerrors.KindGuard, 30101, "课程已停开")
	ErrNoAdvisor        = pkgerrors.New(pkgerrors.KindGuard, 30102, "尚未分配导师，无法提交")
	ErrNoPrimaryMajor   = pkgerrors.New(pkgerrors.KindGuard, 30103, "未分配主修方案，无法生成推荐")
	ErrNotAdvisor       = pkgerrors.New(pkgerrors.KindForbidden, 30201, "非该学生的指定导师")
	ErrDuplicateCourse  = pkgerrors.New(pkgerrors.KindIntegrity, 30301, "该课程已在当前草稿中")
	ErrSelfPrerequisite = pkgerrors.New(pkgerrors.KindIntegrity, 30302, "课程不能以自身为先修")
	ErrExportFailed     = pkgerrors.New(pkgerrors.KindIntegrity, 30401, "生成导出文件失败")
)
