package lifecycle

import (
	"fmt"

	pkgerrors "coursepath/pkg/errors"
)

// CreditLevel 学期学分负荷等级
type CreditLevel string

const (
	CreditNormal   CreditLevel = "NORMAL"
	CreditOverload CreditLevel = "OVERLOAD"
)

// ErrCreditLimitExceeded 超过绝对上限
var ErrCreditLimitExceeded = pkgerrors.New(pkgerrors.KindCapacity, 20101, "学期学分超过上限")

// CreditLimits 学期学分上限：超过 Normal 为警告，超过 Absolute 为错误
type CreditLimits struct {
	Normal   int
	Absolute int
}

// DefaultCreditLimits 常规 18，绝对 21
var DefaultCreditLimits = CreditLimits{Normal: 18, Absolute: 21}

// Evaluate 评估学期总学分
func (l CreditLimits) Evaluate(total int) (CreditLevel, error) {
	if total > l.Absolute {
		return CreditOverload, fmt.Errorf("%w: %d > %d", ErrCreditLimitExceeded, total, l.Absolute)
	}
	if total > l.Normal {
		return CreditOverload, nil
	}
	return CreditNormal, nil
}

// Warning 超载提示文案；正常负荷返回空串
func (l CreditLimits) Warning(total int) string {
	if total > l.Normal && total <= l.Absolute {
		return fmt.Sprintf("学期学分 %d 超过常规上限 %d，需导师关注", total, l.Normal)
	}
	return ""
}
