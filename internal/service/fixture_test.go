package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"coursepath/config"
	"coursepath/internal/dto"
	"coursepath/internal/model"
)

// ── 测试辅助 ──

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memStore
	cache *mockAuditCache
	svc   *Service

	studentID string
	advisorID string
	draftID   string
	courses   map[string]string // code → id
}

func testConfig() *config.Config {
	return &config.Config{
		Planner: config.PlannerConfig{
			NormalCreditLimit:   18,
			AbsoluteCreditLimit: 21,
			DefaultFillMode:     "remaining",
		},
	}
}

// newFixture 学生已建档并分配导师，拥有一个默认草稿
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   newMemStore(),
		cache:   newMockAuditCache(),
		courses: make(map[string]string),
	}
	repo := f.store.repository()
	f.svc = NewService(testConfig(), repo, f.cache, zap.NewNop())

	student := &model.User{Name: "张三", Role: model.RoleStudent}
	advisor := &model.User{Name: "李老师", Role: model.RoleAdvisor}
	_ = repo.User.Create(f.ctx, student)
	_ = repo.User.Create(f.ctx, advisor)
	f.studentID, f.advisorID = student.UserID, advisor.UserID
	_ = repo.User.SaveProfile(f.ctx, &model.StudentProfile{StudentID: f.studentID, AdvisorID: &f.advisorID})

	for _, c := range []struct {
		code    string
		credits int
	}{
		{"MTH101", 3}, {"MTH150A", 3}, {"MTH150B", 3}, {"MTH201", 4}, {"MTH301", 3},
		{"CS101", 3}, {"CS102", 3}, {"CS201", 3},
		{"BIG1", 6}, {"BIG2", 6}, {"BIG3", 6}, {"ONE", 1}, {"FOUR", 4},
	} {
		f.course(c.code, c.credits, true)
	}

	draft, err := f.svc.Plan.CreateDraft(f.ctx, f.studentID, &dto.CreateDraftRequest{Name: "主计划"})
	if err == nil {
		f.draftID = draft.ID
	}
	return f
}

func (f *fixture) course(code string, credits int, active bool) string {
	c := &model.Course{Code: code, Title: code + " 课程", Credits: credits, IsActive: active}
	_ = f.store.repository().Course.Create(f.ctx, c)
	f.courses[code] = c.CourseID
	return c.CourseID
}

// prereq 为 course 增加一条 PREREQUISITE 依赖
func (f *fixture) prereq(course, dependsOn string, logicSet int) {
	dep := f.courses[dependsOn]
	_ = f.store.repository().Course.CreateDependency(f.ctx, &model.CourseDependency{
		CourseID:           f.courses[course],
		DependencyCourseID: &dep,
		Kind:               model.DependencyPrerequisite,
		LogicSetID:         logicSet,
	})
}

func (f *fixture) completed(code, semester, grade string) {
	sem := semester
	_ = f.store.repository().Transcript.Create(f.ctx, &model.TranscriptRecord{
		StudentID: f.studentID,
		CourseID:  f.courses[code],
		Semester:  &sem,
		Grade:     grade,
		Status:    model.TranscriptCompleted,
	})
}

func (f *fixture) mustAdd(code string, semester int) {
	f.t.Helper()
	if _, err := f.svc.Plan.AddCourse(f.ctx, f.studentID, "", addReq(f.courses[code], semester)); err != nil {
		f.t.Fatalf("添加 %s 失败: %v", code, err)
	}
}

func (f *fixture) entryStatuses(semester int) map[string]string {
	out := make(map[string]string)
	for _, e := range f.store.entries {
		if e.DraftID == f.draftID && e.SemesterNumber == semester {
			out[e.CourseID] = e.Status
		}
	}
	return out
}

func (f *fixture) locked(semester int) bool {
	d, ok := f.store.semesters[semKey(f.draftID, semester)]
	return ok && d.IsLocked
}

// addReq 第 1 学期为 FALL-2026，之后春秋交替
func addReq(courseID string, semester int) *dto.AddCourseRequest {
	term, year := "FALL", 2026+(semester-1)/2
	if semester%2 == 0 {
		term, year = "SPRING", 2026+semester/2
	}
	return &dto.AddCourseRequest{CourseID: courseID, SemesterNumber: semester, Term: term, Year: year}
}

// major 为学生分配主修方案，含一个要求组与推荐序列：
//
//	第 1 学期: CS101, 组[数学基础]
//	第 2 学期: CS102（先修 CS101）, 通识选修
//	第 3 学期: 辅修
func (f *fixture) major() (programID, groupID string) {
	repo := f.store.repository()
	p := &model.Program{Code: "CS-BS", Name: "计算机科学", Type: model.ProgramMajor, TotalCredits: 12}
	_ = repo.Program.Create(f.ctx, p)
	_ = repo.User.AssignProgram(f.ctx, &model.StudentProgramAssignment{
		StudentID: f.studentID, ProgramID: p.ProgramID, ProgramType: model.ProgramMajor, IsPrimary: true,
	})

	g := &model.RequirementGroup{ProgramID: p.ProgramID, Name: "数学基础", CreditsRequired: 6}
	_ = repo.Program.CreateGroup(f.ctx, g)
	_ = repo.Program.AddGroupCourse(f.ctx, &model.RequirementGroupCourse{GroupID: g.GroupID, CourseID: f.courses["MTH201"]})
	_ = repo.Program.AddGroupCourse(f.ctx, &model.RequirementGroupCourse{GroupID: g.GroupID, CourseID: f.courses["MTH101"], IsMandatory: true})

	core := &model.RequirementGroup{ProgramID: p.ProgramID, Name: "专业核心", CreditsRequired: 6, SortOrder: 1}
	_ = repo.Program.CreateGroup(f.ctx, core)
	_ = repo.Program.AddGroupCourse(f.ctx, &model.RequirementGroupCourse{GroupID: core.GroupID, CourseID: f.courses["CS101"], IsMandatory: true})
	_ = repo.Program.AddGroupCourse(f.ctx, &model.RequirementGroupCourse{GroupID: core.GroupID, CourseID: f.courses["CS102"], IsMandatory: true})

	f.prereq("CS102", "CS101", 1)

	cs101, cs102, gid := f.courses["CS101"], f.courses["CS102"], g.GroupID
	for _, e := range []model.RecommendedSequenceEntry{
		{SemesterNumber: 1, SlotType: model.SlotCourse, CourseID: &cs101, SortOrder: 0},
		{SemesterNumber: 1, SlotType: model.SlotGroup, GroupID: &gid, SortOrder: 1},
		{SemesterNumber: 2, SlotType: model.SlotCourse, CourseID: &cs102, SortOrder: 0},
		{SemesterNumber: 2, SlotType: model.SlotElective, Label: "通识选修", SortOrder: 1},
		{SemesterNumber: 3, SlotType: model.SlotMinor, Label: "辅修课程", SortOrder: 0},
	} {
		e.ProgramID = p.ProgramID
		_ = repo.Program.CreateSequenceEntry(f.ctx, &e)
	}
	return p.ProgramID, g.GroupID
}
