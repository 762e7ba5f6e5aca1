// Package audit 实现学位审计：课程状态推导、要求组树汇总、
// 单方案审计以及跨方案去重合并。
package audit

import (
	"fmt"
	"sort"
)

// 方案类型
const (
	ProgramMajor         = "MAJOR"
	ProgramMinor         = "MINOR"
	ProgramConcentration = "CONCENTRATION"
)

// 警告类型
const (
	WarningInfo            = "INFO"
	WarningMissingRequired = "MISSING_PREREQS"
)

// Warning 审计警告
type Warning struct {
	Type      string `json:"type"`
	ProgramID string `json:"program_id,omitempty"`
	CourseID  string `json:"course_id,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
}

// Program 方案及其要求组
type Program struct {
	ID           string
	Code         string
	Name         string
	Type         string
	TotalCredits int
	IsPrimary    bool
	Groups       []Group
}

// ProgramAudit 单方案审计结果
type ProgramAudit struct {
	ProgramID    string    `json:"program_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	IsPrimary    bool      `json:"is_primary"`
	TotalCredits int       `json:"total_credits"`
	Buckets      []*Bucket `json:"buckets"`
	Progress     Progress  `json:"progress"`
	Warnings     []Warning `json:"warnings"`
}

// Input 审计输入
type Input struct {
	HasProfile bool
	Programs   []Program
	Transcript []Record
	Waived     map[string]bool
	Planned    map[string]int // courseID → 默认草稿中的学期号
}

// Result 合并审计结果
type Result struct {
	Progress        Progress       `json:"progress"`
	BaselineCredits int            `json:"baseline_credits"`
	Programs        []ProgramAudit `json:"programs"`
	Unassigned      []CourseNode   `json:"unassigned"`
	Warnings        []Warning      `json:"warnings"`
}

// AuditProgram 单方案审计
func AuditProgram(p Program, book *StatusBook, transcript []Record, planned map[string]int) ProgramAudit {
	buckets := BuildTree(p.Groups, book.Of, planned)

	union := make(map[string]CourseNode)
	var warnings []Warning
	warned := make(map[string]bool)
	Walk(buckets, func(b *Bucket) {
		for _, c := range b.Courses {
			mergeNode(union, c)
			if c.Mandatory && c.Status == StatusMissing && !warned[c.CourseID] {
				warned[c.CourseID] = true
				warnings = append(warnings, Warning{
					Type:      WarningMissingRequired,
					ProgramID: p.ID,
					CourseID:  c.CourseID,
					Code:      c.Code,
					Message:   fmt.Sprintf("%s 必修课程 %s 尚未完成（%s）", p.Name, c.Code, b.Name),
				})
			}
		}
	})
	warnings = append(retakeWarnings(transcript), warnings...)

	return ProgramAudit{
		ProgramID:    p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Type:         p.Type,
		IsPrimary:    p.IsPrimary,
		TotalCredits: p.TotalCredits,
		Buckets:      buckets,
		Progress:     summarize(union, p.TotalCredits, 0),
		Warnings:     warnings,
	}
}

func retakeWarnings(transcript []Record) []Warning {
	var ws []Warning
	for _, r := range transcript {
		if !r.NeedsRetake() {
			continue
		}
		term := r.Semester
		if term == "" {
			term = "未知学期"
		}
		ws = append(ws, Warning{
			Type:     WarningInfo,
			CourseID: r.CourseID,
			Code:     r.Code,
			Message:  fmt.Sprintf("%s 于 %s 未通过（成绩 %s），需重修", r.Code, term, r.Grade),
		})
	}
	return ws
}

// Run 对学生全部方案执行审计并去重合并
//
// 无档案或无方案分配时返回零进度结果并附带 INFO 警告，不视为错误。
func Run(in Input) Result {
	if !in.HasProfile {
		return emptyResult("尚未建立学生档案，暂无审计数据")
	}
	if len(in.Programs) == 0 {
		return emptyResult("尚未分配培养方案，暂无审计数据")
	}

	programs := append([]Program(nil), in.Programs...)
	sort.SliceStable(programs, func(i, j int) bool {
		return programRank(programs[i]) < programRank(programs[j])
	})

	book := NewStatusBook(in.Transcript, in.Waived)
	res := Result{Programs: make([]ProgramAudit, 0, len(programs))}
	for _, p := range programs {
		res.Programs = append(res.Programs, AuditProgram(p, book, in.Transcript, in.Planned))
	}

	// 每门课程在所有方案所有要求组中的最优状态，先建索引再汇总学分
	best := make(map[string]CourseNode)
	for _, pa := range res.Programs {
		Walk(pa.Buckets, func(b *Bucket) {
			for _, c := range b.Courses {
				mergeNode(best, c)
			}
		})
	}

	res.BaselineCredits = baseline(programs)
	res.Progress = summarize(best, res.BaselineCredits, 0)
	res.Unassigned = unassigned(in.Transcript, book, best)
	res.Warnings = mergeWarnings(res.Programs)
	return res
}

func emptyResult(msg string) Result {
	return Result{
		Programs:   []ProgramAudit{},
		Unassigned: []CourseNode{},
		Warnings:   []Warning{{Type: WarningInfo, Message: msg}},
	}
}

// programRank 主修（主专业优先）→ 辅修 → 方向
func programRank(p Program) int {
	switch p.Type {
	case ProgramMajor:
		if p.IsPrimary {
			return 0
		}
		return 1
	case ProgramMinor:
		return 2
	case ProgramConcentration:
		return 3
	}
	return 4
}

// baseline 有主修时以主修总学分为基准，否则累加已分配方案的基准
func baseline(programs []Program) int {
	for _, p := range programs {
		if p.Type == ProgramMajor {
			return p.TotalCredits
		}
	}
	total := 0
	for _, p := range programs {
		total += p.TotalCredits
	}
	return total
}

// unassigned 成绩单中未匹配任何要求组课程的已修/在修课程
func unassigned(transcript []Record, book *StatusBook, matched map[string]CourseNode) []CourseNode {
	out := make([]CourseNode, 0)
	seen := make(map[string]bool)
	for _, r := range transcript {
		if _, ok := matched[r.CourseID]; ok || seen[r.CourseID] {
			continue
		}
		st := book.Of(r.CourseID)
		if st == StatusMissing {
			continue
		}
		seen[r.CourseID] = true
		out = append(out, CourseNode{
			CourseID: r.CourseID,
			Code:     r.Code,
			Title:    r.Title,
			Credits:  r.Credits,
			Status:   st,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// mergeWarnings 合并各方案警告，重修提示只保留一次
func mergeWarnings(programs []ProgramAudit) []Warning {
	out := make([]Warning, 0)
	seen := make(map[string]bool)
	for _, pa := range programs {
		for _, w := range pa.Warnings {
			key := w.Type + "|" + w.ProgramID + "|" + w.CourseID + "|" + w.Message
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, w)
		}
	}
	return out
}
