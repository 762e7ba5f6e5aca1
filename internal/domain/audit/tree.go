package audit

import (
	"math"
	"sort"
)

// Course 课程基础信息
type Course struct {
	ID      string
	Code    string
	Title   string
	Credits int
}

// GroupCourse 要求组中的课程
type GroupCourse struct {
	Course
	Mandatory bool
}

// Group 要求组定义（扁平，ParentID 指向父组）
type Group struct {
	ID              string
	Name            string
	ParentID        string
	CreditsRequired int
	MinCourses      int
	SortOrder       int
	Courses         []GroupCourse
}

// CourseNode 审计树中的课程
type CourseNode struct {
	CourseID        string `json:"course_id"`
	Code            string `json:"code"`
	Title           string `json:"title"`
	Credits         int    `json:"credits"`
	Mandatory       bool   `json:"mandatory"`
	Status          Status `json:"status"`
	PlannedSemester int    `json:"planned_semester,omitempty"`
}

// Progress 学分/课程数进度
type Progress struct {
	CreditsDone       int  `json:"credits_done"`
	CreditsInProgress int  `json:"credits_in_progress"`
	CreditsRequired   int  `json:"credits_required"`
	CoursesDone       int  `json:"courses_done"`
	MinCourses        int  `json:"min_courses"`
	Percent           int  `json:"percent"`
	Satisfied         bool `json:"satisfied"`
}

// Bucket 要求组节点；Progress 为自身课程与全部子孙课程并集的汇总
type Bucket struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Courses  []CourseNode `json:"courses"`
	Children []*Bucket    `json:"children,omitempty"`
	Progress Progress     `json:"progress"`

	parentID  string
	sortOrder int
	minimum   int
	required  int
}

// Percent = min(100, round((done + 0.5*inProgress) / required * 100))
func Percent(done, inProgress, required int) int {
	if required <= 0 {
		return 0
	}
	p := math.Round((float64(done) + 0.5*float64(inProgress)) / float64(required) * 100)
	if p > 100 {
		return 100
	}
	return int(p)
}

// summarize 汇总一组课程；required<=0 时回退为课程学分之和
func summarize(nodes map[string]CourseNode, required, minCourses int) Progress {
	p := Progress{CreditsRequired: required, MinCourses: minCourses}
	total := 0
	for _, n := range nodes {
		total += n.Credits
		switch {
		case n.Status.Counts():
			p.CreditsDone += n.Credits
			p.CoursesDone++
		case n.Status == StatusInProgress:
			p.CreditsInProgress += n.Credits
		}
	}
	if p.CreditsRequired <= 0 {
		p.CreditsRequired = total
	}
	p.Percent = Percent(p.CreditsDone, p.CreditsInProgress, p.CreditsRequired)
	p.Satisfied = len(nodes) > 0 &&
		p.CreditsDone >= p.CreditsRequired &&
		p.CoursesDone >= p.MinCourses
	return p
}

// BuildTree 由扁平要求组构建审计树并自底向上计算进度
//
// 父组进度由自身课程与全部子孙课程的并集（按课程去重，取最优状态）重新计算，
// 而不是对子组百分比求和。父 ID 缺失、指向自身或成环的组按根处理。
func BuildTree(groups []Group, status func(courseID string) Status, planned map[string]int) []*Bucket {
	nodes := make(map[string]*Bucket, len(groups))
	order := make([]string, 0, len(groups))
	for _, g := range groups {
		b := &Bucket{
			ID:        g.ID,
			Name:      g.Name,
			Courses:   make([]CourseNode, 0, len(g.Courses)),
			parentID:  g.ParentID,
			sortOrder: g.SortOrder,
			minimum:   g.MinCourses,
			required:  g.CreditsRequired,
		}
		seen := make(map[string]bool, len(g.Courses))
		for _, c := range g.Courses {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			b.Courses = append(b.Courses, CourseNode{
				CourseID:        c.ID,
				Code:            c.Code,
				Title:           c.Title,
				Credits:         c.Credits,
				Mandatory:       c.Mandatory,
				Status:          status(c.ID),
				PlannedSemester: planned[c.ID],
			})
		}
		sortCourses(b.Courses)
		nodes[g.ID] = b
		order = append(order, g.ID)
	}

	var roots []*Bucket
	for _, id := range order {
		b := nodes[id]
		parent, ok := nodes[b.parentID]
		if !ok || b.parentID == id || createsCycle(nodes, id) {
			roots = append(roots, b)
			continue
		}
		parent.Children = append(parent.Children, b)
	}

	sortBuckets(roots)
	for _, r := range roots {
		rollup(r)
	}
	return roots
}

func createsCycle(nodes map[string]*Bucket, id string) bool {
	visited := map[string]bool{id: true}
	cur := nodes[id].parentID
	for cur != "" {
		if visited[cur] {
			return true
		}
		visited[cur] = true
		n, ok := nodes[cur]
		if !ok {
			return false
		}
		cur = n.parentID
	}
	return false
}

// rollup 后序遍历，返回该节点子树的课程并集
func rollup(b *Bucket) map[string]CourseNode {
	union := make(map[string]CourseNode, len(b.Courses))
	for _, c := range b.Courses {
		mergeNode(union, c)
	}
	sortBuckets(b.Children)
	for _, child := range b.Children {
		for _, c := range rollup(child) {
			mergeNode(union, c)
		}
	}
	b.Progress = summarize(union, b.required, b.minimum)
	return union
}

func mergeNode(m map[string]CourseNode, n CourseNode) {
	existing, ok := m[n.CourseID]
	if !ok {
		m[n.CourseID] = n
		return
	}
	existing.Status = Better(existing.Status, n.Status)
	existing.Mandatory = existing.Mandatory || n.Mandatory
	m[n.CourseID] = existing
}

// Outstanding 子树尚缺的学分与课程数（不小于 0）
//
// 已完成、在修以及已排入计划的课程都视为将完成。
func (b *Bucket) Outstanding() (credits, courses int) {
	union := make(map[string]CourseNode)
	Walk([]*Bucket{b}, func(n *Bucket) {
		for _, c := range n.Courses {
			mergeNode(union, c)
		}
	})
	for _, c := range union {
		if c.Status.Counts() || c.Status == StatusInProgress || c.PlannedSemester > 0 {
			credits += c.Credits
			courses++
		}
	}
	credits = b.Progress.CreditsRequired - credits
	courses = b.Progress.MinCourses - courses
	if credits < 0 {
		credits = 0
	}
	if courses < 0 {
		courses = 0
	}
	return credits, courses
}

// Walk 先序遍历
func Walk(buckets []*Bucket, fn func(b *Bucket)) {
	for _, b := range buckets {
		fn(b)
		Walk(b.Children, fn)
	}
}

func sortBuckets(bs []*Bucket) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].sortOrder != bs[j].sortOrder {
			return bs[i].sortOrder < bs[j].sortOrder
		}
		return bs[i].Name < bs[j].Name
	})
}

func sortCourses(cs []CourseNode) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Mandatory != cs[j].Mandatory {
			return cs[i].Mandatory
		}
		return cs[i].Code < cs[j].Code
	})
}
