// Package prereq 判定课程先修是否满足。
//
// 同一 logic set 内的依赖为 AND，不同 logic set 之间为 OR：
// 任意一个 logic set 全部满足即视为先修满足。
// 仅 PREREQUISITE 类依赖参与判定；COREQUISITE 与 STATUS 类依赖在此忽略。
package prereq

import "sort"

// 依赖类型
const (
	KindPrerequisite = "PREREQUISITE"
	KindCorequisite  = "COREQUISITE"
	KindStatus       = "STATUS"
)

// Dependency 单条依赖
type Dependency struct {
	CourseID   string // 被依赖课程；STATUS 类为空
	Code       string
	Kind       string
	LogicSetID int
}

// Result 判定结果
type Result struct {
	Satisfied bool     `json:"satisfied"`
	Missing   []string `json:"missing"`
}

// Resolve 按 logic set 判定先修
//
// 全部不满足时，Missing 只取自一个集合而非所有集合的并集：
// 已完成依赖最多的集合，相同时取 logic_set_id 最小者。
// 各集合都无进展时退化为第一个集合；有部分进展时优先报告更接近满足的集合
// （如 MTH301 已修 MTH150A 时报告 MTH150B），这与只报第一个集合的做法不同。
func Resolve(deps []Dependency, completed map[string]bool) Result {
	sets := make(map[int][]Dependency)
	for _, d := range deps {
		if d.Kind != KindPrerequisite || d.CourseID == "" {
			continue
		}
		sets[d.LogicSetID] = append(sets[d.LogicSetID], d)
	}
	if len(sets) == 0 {
		return Result{Satisfied: true, Missing: []string{}}
	}

	ids := make([]int, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var best []string
	bestDone := -1
	for _, id := range ids {
		set := sets[id]
		missing := missingIn(set, completed)
		if len(missing) == 0 {
			return Result{Satisfied: true, Missing: []string{}}
		}
		if done := len(set) - len(missing); done > bestDone {
			best, bestDone = missing, done
		}
	}
	return Result{Satisfied: false, Missing: best}
}

func missingIn(set []Dependency, completed map[string]bool) []string {
	var missing []string
	for _, d := range set {
		if completed[d.CourseID] {
			continue
		}
		label := d.Code
		if label == "" {
			label = d.CourseID
		}
		missing = append(missing, label)
	}
	return missing
}
