// Package errors 定义领域错误分类。
//
// 所有业务错误都归属于四类之一：不存在、守卫违规（状态不允许该操作）、
// 容量违规（学分超限）、完整性违规（重复选课、自引用先修）。
// Handler 层只需按 Kind 映射 HTTP 状态码，无需了解每个具体错误。
package errors

import "errors"

// Kind 错误类别
type Kind string

const (
	KindNotFound  Kind = "NOT_FOUND"
	KindGuard     Kind = "GUARD_VIOLATION"
	KindCapacity  Kind = "CAPACITY_VIOLATION"
	KindIntegrity Kind = "INTEGRITY_VIOLATION"
	KindForbidden Kind = "FORBIDDEN"
)

// 类别哨兵：errors.Is(err, ErrGuard) 可判断任一守卫类错误
var (
	ErrNotFound  = errors.New("not found")
	ErrGuard     = errors.New("guard violation")
	ErrCapacity  = errors.New("capacity violation")
	ErrIntegrity = errors.New("integrity violation")
	ErrForbidden = errors.New("forbidden")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// DomainError 带类别与业务码的结构化错误
type DomainError struct {
	Kind    Kind
	Code    int
	Message string
}

// New 创建领域错误
func New(kind Kind, code int, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is 同时匹配错误本身与其类别哨兵
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return t == e
	}
	return kindSentinel(e.Kind) == target
}

func kindSentinel(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindGuard:
		return ErrGuard
	case KindCapacity:
		return ErrCapacity
	case KindIntegrity:
		return ErrIntegrity
	case KindForbidden:
		return ErrForbidden
	}
	return nil
}

// KindOf 提取错误类别；非领域错误返回空串
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// As 提取 DomainError
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
