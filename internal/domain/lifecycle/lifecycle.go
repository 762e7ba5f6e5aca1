// Package lifecycle 定义学期计划的状态机。
//
// 学期状态不单独存储，而是由该学期全部计划条目的状态推导：
//
//	全部 APPROVED                  → APPROVED
//	任一 REJECTED                  → REJECTED
//	全部为 SUBMITTED 或 APPROVED    → SUBMITTED
//	其他（含空学期）                → DRAFT
package lifecycle

import (
	"strings"

	pkgerrors "coursepath/pkg/errors"
)

// 条目 / 学期状态
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

// Action 学期级操作
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionRevise  Action = "revise"
)

// ── 守卫错误 ──

var (
	ErrSemesterLocked        = pkgerrors.New(pkgerrors.KindGuard, 20001, "学期已锁定，无法修改课程")
	ErrNothingToSubmit       = pkgerrors.New(pkgerrors.KindGuard, 20002, "该学期没有可提交的课程")
	ErrAlreadySubmitted      = pkgerrors.New(pkgerrors.KindGuard, 20003, "该学期已提交，等待导师审核")
	ErrAlreadyApproved       = pkgerrors.New(pkgerrors.KindGuard, 20004, "该学期已审核通过")
	ErrRevisionRequired      = pkgerrors.New(pkgerrors.KindGuard, 20005, "该学期已被退回，请先修订")
	ErrNotSubmitted          = pkgerrors.New(pkgerrors.KindGuard, 20006, "该学期没有待审核的课程")
	ErrRejectCommentRequired = pkgerrors.New(pkgerrors.KindGuard, 20007, "退回时必须填写意见")
	ErrNothingToRevise       = pkgerrors.New(pkgerrors.KindGuard, 20008, "该学期没有被退回的课程")
)

// DeriveStatus 由条目状态推导学期状态
func DeriveStatus(entries []string) string {
	if len(entries) == 0 {
		return StatusDraft
	}
	allApproved, allSubmittedOrApproved := true, true
	for _, s := range entries {
		if s == StatusRejected {
			return StatusRejected
		}
		if s != StatusApproved {
			allApproved = false
		}
		if s != StatusSubmitted && s != StatusApproved {
			allSubmittedOrApproved = false
		}
	}
	switch {
	case allApproved:
		return StatusApproved
	case allSubmittedOrApproved:
		return StatusSubmitted
	}
	return StatusDraft
}

// CheckMutable 锁定学期拒绝增删移课程
func CheckMutable(locked bool) error {
	if locked {
		return ErrSemesterLocked
	}
	return nil
}

// CheckSubmit 提交守卫
func CheckSubmit(entries []string) error {
	if len(entries) == 0 {
		return ErrNothingToSubmit
	}
	switch DeriveStatus(entries) {
	case StatusApproved:
		return ErrAlreadyApproved
	case StatusSubmitted:
		return ErrAlreadySubmitted
	case StatusRejected:
		return ErrRevisionRequired
	}
	return nil
}

// CheckApprove 审核通过守卫：全部条目须为 SUBMITTED 或 APPROVED
func CheckApprove(entries []string) error {
	if len(entries) == 0 {
		return ErrNotSubmitted
	}
	switch DeriveStatus(entries) {
	case StatusApproved:
		return ErrAlreadyApproved
	case StatusSubmitted:
		return nil
	}
	return ErrNotSubmitted
}

// CheckReject 退回守卫：意见非空且至少一条 SUBMITTED
func CheckReject(entries []string, comments string) error {
	if strings.TrimSpace(comments) == "" {
		return ErrRejectCommentRequired
	}
	if len(entries) > 0 && DeriveStatus(entries) == StatusApproved {
		return ErrAlreadyApproved
	}
	if count(entries, StatusSubmitted) == 0 {
		return ErrNotSubmitted
	}
	return nil
}

// CheckRevise 修订守卫：至少一条 REJECTED
func CheckRevise(entries []string) error {
	if count(entries, StatusRejected) == 0 {
		return ErrNothingToRevise
	}
	return nil
}

// Check 按操作分派守卫
func Check(action Action, entries []string, comments string) error {
	switch action {
	case ActionSubmit:
		return CheckSubmit(entries)
	case ActionApprove:
		return CheckApprove(entries)
	case ActionReject:
		return CheckReject(entries, comments)
	case ActionRevise:
		return CheckRevise(entries)
	}
	return nil
}

// Next 条目在操作后的状态；ok=false 表示该条目不受影响
func Next(action Action, current string) (string, bool) {
	switch action {
	case ActionSubmit:
		if current == StatusDraft {
			return StatusSubmitted, true
		}
	case ActionApprove:
		if current == StatusSubmitted {
			return StatusApproved, true
		}
	case ActionReject:
		if current == StatusSubmitted {
			return StatusRejected, true
		}
	case ActionRevise:
		if current == StatusRejected {
			return StatusDraft, true
		}
	}
	return current, false
}

// LocksAfter 操作后学期是否锁定：提交与通过锁定，退回与修订解锁
func LocksAfter(action Action) bool {
	return action == ActionSubmit || action == ActionApprove
}

func count(entries []string, status string) int {
	n := 0
	for _, s := range entries {
		if s == status {
			n++
		}
	}
	return n
}
