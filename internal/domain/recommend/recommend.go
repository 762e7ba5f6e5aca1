// Package recommend 根据培养方案推荐修读顺序，为未来学期生成自动填充建议。
package recommend

import (
	"fmt"
	"sort"

	"coursepath/internal/domain/prereq"
)

// Mode 填充模式
type Mode string

const (
	// ModeRemaining 只填充尚未经过的学期：目标学期 = 推荐学期 - 已修学期数
	ModeRemaining Mode = "remaining"
	// ModeFull 按推荐学期号原样填充
	ModeFull Mode = "full"
)

// ParseMode 解析填充模式，未知值返回 false
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeRemaining, ModeFull:
		return Mode(s), true
	}
	return "", false
}

// 槽位类型
const (
	SlotCourse        = "COURSE"
	SlotGroup         = "GROUP"
	SlotMinor         = "MINOR"
	SlotConcentration = "CONCENTRATION"
	SlotElective      = "ELECTIVE"
)

// 提示类型
const (
	NoteElective       = "ELECTIVE"
	NoteMissingProgram = "MISSING_PROGRAM"
	NoteUnknownCourse  = "UNKNOWN_COURSE"
	NoteUnknownGroup   = "UNKNOWN_GROUP"
)

// Course 候选课程
type Course struct {
	ID      string
	Code    string
	Title   string
	Credits int
}

// Option 组内课程
type Option struct {
	Course
	Mandatory bool
}

// Need 要求组尚缺的学分与课程数
type Need struct {
	Credits int
	Courses int
}

func (n Need) met() bool { return n.Credits <= 0 && n.Courses <= 0 }

// Pool 可选课程池（一个要求组，或辅修/方向的全部课程）
type Pool struct {
	Name    string
	Options []Option
	// Need 为 nil 时不跟踪满足度，每个槽位都推荐一门
	Need *Need
}

// Slot 推荐修读顺序中的一项
type Slot struct {
	Semester  int
	Type      string
	CourseID  string
	GroupID   string
	Label     string
	SortOrder int
}

// Input 引擎输入
type Input struct {
	Mode        Mode
	ProgramType string // 直接课程槽位的类别标签
	Sequence    []Slot
	Courses     map[string]Course
	Groups      map[string]Pool
	Programs    map[string]Pool // 键为 MINOR / CONCENTRATION
	// Transcript 成绩单中出现过的全部课程（含不及格）
	Transcript map[string]bool
	// Completed 可用于先修判定的课程
	Completed map[string]bool
	// Planned 当前草稿中的课程 → 学期号
	Planned           map[string]int
	Dependencies      map[string][]prereq.Dependency
	SemestersConsumed int
}

// Suggestion 一条添加建议
type Suggestion struct {
	CourseID            string   `json:"course_id"`
	Code                string   `json:"code"`
	Title               string   `json:"title"`
	Credits             int      `json:"credits"`
	Semester            int      `json:"semester"`
	RecommendedSemester int      `json:"recommended_semester"`
	PrereqsMet          bool     `json:"prereqs_met"`
	Missing             []string `json:"missing_prereqs"`
	Category            string   `json:"category"`
}

// Note 冲突或提示
type Note struct {
	Semester int    `json:"semester"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

// Output 引擎输出
type Output struct {
	Additions []Suggestion `json:"additions"`
	Conflicts []Note       `json:"conflicts"`
}

// Generate 生成自动填充建议
//
// 按推荐学期升序处理；先修判定基于"将完成"集合：
// 已完成课程、草稿中更早学期的课程、以及更早学期已生成的建议。
func Generate(in Input) Output {
	out := Output{Additions: []Suggestion{}, Conflicts: []Note{}}

	bySemester := make(map[int][]Slot)
	for _, s := range in.Sequence {
		bySemester[s.Semester] = append(bySemester[s.Semester], s)
	}
	semesters := make([]int, 0, len(bySemester))
	for n := range bySemester {
		semesters = append(semesters, n)
	}
	sort.Ints(semesters)

	suggested := make(map[string]int) // courseID → 目标学期
	need := in.needs()

	for _, rec := range semesters {
		target := rec
		if in.Mode != ModeFull {
			target = rec - in.SemestersConsumed
		}
		if target < 1 {
			continue
		}

		slots := bySemester[rec]
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].SortOrder < slots[j].SortOrder })

		willComplete := in.willComplete(target, suggested)

		for _, slot := range slots {
			if slot.Type == SlotGroup {
				if n, ok := need[slot.GroupID]; ok && n.met() {
					continue
				}
			}
			course, category, note := in.pick(slot, suggested)
			if note != "" {
				out.Conflicts = append(out.Conflicts, Note{Semester: target, Type: note, Message: noteMessage(note, slot)})
				continue
			}
			if course == nil {
				continue
			}
			res := prereq.Resolve(in.Dependencies[course.ID], willComplete)
			suggested[course.ID] = target
			in.consume(need, course)
			out.Additions = append(out.Additions, Suggestion{
				CourseID:            course.ID,
				Code:                course.Code,
				Title:               course.Title,
				Credits:             course.Credits,
				Semester:            target,
				RecommendedSemester: rec,
				PrereqsMet:          res.Satisfied,
				Missing:             res.Missing,
				Category:            category,
			})
		}
	}
	return out
}

// needs 复制受跟踪要求组的缺口，生成过程中逐步扣减
func (in Input) needs() map[string]Need {
	out := make(map[string]Need)
	for id, pool := range in.Groups {
		if pool.Need != nil {
			out[id] = *pool.Need
		}
	}
	return out
}

// consume 新建议的课程计入所有包含它的要求组
func (in Input) consume(need map[string]Need, c *Course) {
	for id, n := range need {
		for _, o := range in.Groups[id].Options {
			if o.ID == c.ID {
				n.Credits -= c.Credits
				n.Courses--
				need[id] = n
				break
			}
		}
	}
}

// willComplete 目标学期开始前可视为已完成的课程
func (in Input) willComplete(target int, suggested map[string]int) map[string]bool {
	set := make(map[string]bool, len(in.Completed)+len(in.Planned)+len(suggested))
	for id, ok := range in.Completed {
		if ok {
			set[id] = true
		}
	}
	for id, sem := range in.Planned {
		if sem < target {
			set[id] = true
		}
	}
	for id, sem := range suggested {
		if sem < target {
			set[id] = true
		}
	}
	return set
}

func (in Input) taken(id string, suggested map[string]int) bool {
	if in.Transcript[id] || in.Completed[id] {
		return true
	}
	if _, ok := in.Planned[id]; ok {
		return true
	}
	_, ok := suggested[id]
	return ok
}

// pick 为槽位选出课程；course 为 nil 且 note 为空表示该槽位已满足
func (in Input) pick(slot Slot, suggested map[string]int) (*Course, string, string) {
	switch slot.Type {
	case SlotCourse:
		c, ok := in.Courses[slot.CourseID]
		if !ok {
			return nil, "", NoteUnknownCourse
		}
		if in.taken(c.ID, suggested) {
			return nil, "", ""
		}
		return &c, in.ProgramType, ""
	case SlotGroup:
		pool, ok := in.Groups[slot.GroupID]
		if !ok {
			return nil, "", NoteUnknownGroup
		}
		return in.first(pool, suggested), pool.Name, ""
	case SlotMinor, SlotConcentration:
		pool, ok := in.Programs[slot.Type]
		if !ok {
			return nil, "", NoteMissingProgram
		}
		return in.first(pool, suggested), slot.Type, ""
	}
	return nil, "", NoteElective
}

// first 必修优先、再按课程代码，取第一门未修未选的课程
func (in Input) first(pool Pool, suggested map[string]int) *Course {
	opts := append([]Option(nil), pool.Options...)
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].Mandatory != opts[j].Mandatory {
			return opts[i].Mandatory
		}
		return opts[i].Code < opts[j].Code
	})
	for _, o := range opts {
		if !in.taken(o.ID, suggested) {
			c := o.Course
			return &c
		}
	}
	return nil
}

func noteMessage(note string, slot Slot) string {
	label := slot.Label
	switch note {
	case NoteElective:
		if label == "" {
			label = "选修课"
		}
		return fmt.Sprintf("%s 需要手动选择课程", label)
	case NoteMissingProgram:
		return fmt.Sprintf("未分配%s，无法为 %s 推荐课程", programLabel(slot.Type), label)
	case NoteUnknownCourse:
		return fmt.Sprintf("推荐课程 %s 不存在", slot.CourseID)
	case NoteUnknownGroup:
		return fmt.Sprintf("要求组 %s 不存在", slot.GroupID)
	}
	return label
}

func programLabel(slotType string) string {
	if slotType == SlotMinor {
		return "辅修"
	}
	return "专业方向"
}
