package audit

import "strings"

// Status 课程在审计中的状态
type Status string

const (
	StatusWaived     Status = "WAIVED"
	StatusDone       Status = "DONE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusMissing    Status = "MISSING"
)

// 成绩记录状态（与 transcript_records.status 一致）
const (
	RecordCompleted  = "COMPLETED"
	RecordInProgress = "IN_PROGRESS"
	RecordTransfer   = "TRANSFER"
	RecordFailed     = "FAILED"
)

func (s Status) rank() int {
	switch s {
	case StatusWaived:
		return 4
	case StatusDone:
		return 3
	case StatusInProgress:
		return 2
	}
	return 1
}

// Counts 是否计入已完成学分
func (s Status) Counts() bool { return s == StatusWaived || s == StatusDone }

// Better 返回优先级更高的状态
func Better(a, b Status) Status {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

var failingGrades = map[string]bool{
	"F": true, "E": true, "FX": true, "NP": true, "U": true, "WF": true, "W": true, "I": true,
}

// IsPassingGrade 空成绩视为通过（如转学分）
func IsPassingGrade(grade string) bool {
	return !failingGrades[strings.ToUpper(strings.TrimSpace(grade))]
}

// Record 成绩记录
type Record struct {
	CourseID string
	Code     string
	Title    string
	Credits  int
	Semester string
	Grade    string
	Status   string
}

// Done 已完成（COMPLETED/TRANSFER 且成绩通过）
func (r Record) Done() bool {
	return (r.Status == RecordCompleted || r.Status == RecordTransfer) && IsPassingGrade(r.Grade)
}

// NeedsRetake 挂科或成绩不通过，需重修
func (r Record) NeedsRetake() bool {
	if r.Status == RecordFailed {
		return true
	}
	return (r.Status == RecordCompleted || r.Status == RecordTransfer) && !IsPassingGrade(r.Grade)
}

// StatusBook 课程状态簿：按优先级 WAIVED/DONE > IN_PROGRESS > MISSING 推导
type StatusBook struct {
	waived map[string]bool
	best   map[string]Status
}

// NewStatusBook 由成绩记录与豁免集合构建状态簿
func NewStatusBook(records []Record, waived map[string]bool) *StatusBook {
	b := &StatusBook{waived: waived, best: make(map[string]Status)}
	for _, r := range records {
		var st Status
		switch {
		case r.Done():
			st = StatusDone
		case r.Status == RecordInProgress:
			st = StatusInProgress
		default:
			continue
		}
		b.best[r.CourseID] = Better(b.best[r.CourseID], st)
	}
	return b
}

// Of 查询课程状态
func (b *StatusBook) Of(courseID string) Status {
	if b.waived[courseID] {
		return StatusWaived
	}
	if st, ok := b.best[courseID]; ok {
		return st
	}
	return StatusMissing
}
