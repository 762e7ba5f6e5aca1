package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"coursepath/internal/model"
	"coursepath/internal/repository"
	pkgerrors "coursepath/pkg/errors"
)

// memStore 内存数据源，各 mock 仓储共享
//
// 读取返回副本，确保服务层在调用写方法前的修改不会落入存储。
type memStore struct {
	seq int

	users       map[string]*model.User
	profiles    map[string]*model.StudentProfile
	assignments []model.StudentProgramAssignment
	courses     map[string]*model.Course
	deps        []model.CourseDependency
	programs    map[string]*model.Program
	groups      []model.RequirementGroup
	groupLinks  []model.RequirementGroupCourse
	sequence    []model.RecommendedSequenceEntry
	transcript  []model.TranscriptRecord
	drafts      map[string]*model.PlanDraft
	semesters   map[string]*model.SemesterDefinition // draftID:number
	entries     map[string]*model.PlanEntry
	approvals   map[string]*model.SemesterApproval
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*model.User),
		profiles:  make(map[string]*model.StudentProfile),
		courses:   make(map[string]*model.Course),
		programs:  make(map[string]*model.Program),
		drafts:    make(map[string]*model.PlanDraft),
		semesters: make(map[string]*model.SemesterDefinition),
		entries:   make(map[string]*model.PlanEntry),
		approvals: make(map[string]*model.SemesterApproval),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// repository 组装成未绑定数据库的聚合，Transaction 直接执行回调
func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:       &mockUserRepo{s},
		Course:     &mockCourseRepo{s},
		Program:    &mockProgramRepo{s},
		Transcript: &mockTranscriptRepo{s},
		Draft:      &mockDraftRepo{s},
		Semester:   &mockSemesterRepo{s},
		Entry:      &mockEntryRepo{s},
		Approval:   &mockApprovalRepo{s},
	}
}

func (s *memStore) courseCopy(id string) *model.Course {
	if c, ok := s.courses[id]; ok {
		cp := *c
		return &cp
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	cp := *user
	m.s.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) SaveProfile(_ context.Context, profile *model.StudentProfile) error {
	cp := *profile
	m.s.profiles[profile.StudentID] = &cp
	return nil
}

func (m *mockUserRepo) GetProfile(_ context.Context, studentID string) (*model.StudentProfile, error) {
	if p, ok := m.s.profiles[studentID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) AssignProgram(_ context.Context, a *model.StudentProgramAssignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = m.s.nextID("assign")
	}
	m.s.assignments = append(m.s.assignments, *a)
	return nil
}

func (m *mockUserRepo) ListAssignments(_ context.Context, studentID string) ([]model.StudentProgramAssignment, error) {
	var out []model.StudentProgramAssignment
	for _, a := range m.s.assignments {
		if a.StudentID != studentID {
			continue
		}
		if p, ok := m.s.programs[a.ProgramID]; ok {
			cp := *p
			a.Program = &cp
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsPrimary && !out[j].IsPrimary })
	return out, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *memStore }

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = m.s.nextID("course")
	}
	cp := *course
	m.s.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c := m.s.courseCopy(id); c != nil {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListByIDs(_ context.Context, ids []string) ([]model.Course, error) {
	var out []model.Course
	for _, id := range ids {
		if c := m.s.courseCopy(id); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) CreateDependency(_ context.Context, dep *model.CourseDependency) error {
	if dep.DependencyID == "" {
		dep.DependencyID = m.s.nextID("dep")
	}
	m.s.deps = append(m.s.deps, *dep)
	return nil
}

func (m *mockCourseRepo) ListDependencies(_ context.Context, courseIDs []string) ([]model.CourseDependency, error) {
	want := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		want[id] = true
	}
	var out []model.CourseDependency
	for _, d := range m.s.deps {
		if !want[d.CourseID] {
			continue
		}
		if d.DependencyCourseID != nil {
			d.DependencyCourse = m.s.courseCopy(*d.DependencyCourseID)
		}
		out = append(out, d)
	}
	return out, nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct{ s *memStore }

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	if program.ProgramID == "" {
		program.ProgramID = m.s.nextID("program")
	}
	cp := *program
	m.s.programs[program.ProgramID] = &cp
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if p, ok := m.s.programs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) CreateGroup(_ context.Context, group *model.RequirementGroup) error {
	if group.GroupID == "" {
		group.GroupID = m.s.nextID("group")
	}
	m.s.groups = append(m.s.groups, *group)
	return nil
}

func (m *mockProgramRepo) AddGroupCourse(_ context.Context, link *model.RequirementGroupCourse) error {
	m.s.groupLinks = append(m.s.groupLinks, *link)
	return nil
}

func (m *mockProgramRepo) ListGroups(_ context.Context, programIDs []string) ([]model.RequirementGroup, error) {
	want := make(map[string]bool, len(programIDs))
	for _, id := range programIDs {
		want[id] = true
	}
	var out []model.RequirementGroup
	for _, g := range m.s.groups {
		if !want[g.ProgramID] {
			continue
		}
		g.Courses = nil
		for _, l := range m.s.groupLinks {
			if l.GroupID == g.GroupID {
				l.Course = m.s.courseCopy(l.CourseID)
				g.Courses = append(g.Courses, l)
			}
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *mockProgramRepo) CreateSequenceEntry(_ context.Context, entry *model.RecommendedSequenceEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = m.s.nextID("seq")
	}
	m.s.sequence = append(m.s.sequence, *entry)
	return nil
}

func (m *mockProgramRepo) ListSequence(_ context.Context, programID string) ([]model.RecommendedSequenceEntry, error) {
	var out []model.RecommendedSequenceEntry
	for _, e := range m.s.sequence {
		if e.ProgramID == programID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SemesterNumber != out[j].SemesterNumber {
			return out[i].SemesterNumber < out[j].SemesterNumber
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// ── Mock TranscriptRepository ──

type mockTranscriptRepo struct{ s *memStore }

func (m *mockTranscriptRepo) Create(_ context.Context, record *model.TranscriptRecord) error {
	if record.RecordID == "" {
		record.RecordID = m.s.nextID("record")
	}
	m.s.transcript = append(m.s.transcript, *record)
	return nil
}

func (m *mockTranscriptRepo) ListByStudent(_ context.Context, studentID string) ([]model.TranscriptRecord, error) {
	var out []model.TranscriptRecord
	for _, r := range m.s.transcript {
		if r.StudentID == studentID {
			r.Course = m.s.courseCopy(r.CourseID)
			out = append(out, r)
		}
	}
	return out, nil
}

// ── Mock DraftRepository ──

type mockDraftRepo struct{ s *memStore }

func (m *mockDraftRepo) Create(_ context.Context, draft *model.PlanDraft) error {
	if draft.DraftID == "" {
		draft.DraftID = m.s.nextID("draft")
	}
	cp := *draft
	m.s.drafts[draft.DraftID] = &cp
	return nil
}

func (m *mockDraftRepo) GetByID(_ context.Context, id string) (*model.PlanDraft, error) {
	if d, ok := m.s.drafts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDraftRepo) GetDefault(_ context.Context, studentID string) (*model.PlanDraft, error) {
	for _, d := range m.s.drafts {
		if d.StudentID == studentID && d.IsDefault {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDraftRepo) ListByStudent(_ context.Context, studentID string) ([]model.PlanDraft, error) {
	var out []model.PlanDraft
	for _, d := range m.s.drafts {
		if d.StudentID == studentID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DraftID < out[j].DraftID })
	return out, nil
}

func (m *mockDraftRepo) SetDefault(_ context.Context, studentID, draftID string) error {
	target, ok := m.s.drafts[draftID]
	if !ok || target.StudentID != studentID {
		return gorm.ErrRecordNotFound
	}
	for _, d := range m.s.drafts {
		if d.StudentID == studentID {
			d.IsDefault = d.DraftID == draftID
		}
	}
	return nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct{ s *memStore }

func semKey(draftID string, n int) string { return fmt.Sprintf("%s:%d", draftID, n) }

func (m *mockSemesterRepo) Create(_ context.Context, def *model.SemesterDefinition) error {
	if def.DefinitionID == "" {
		def.DefinitionID = m.s.nextID("semdef")
	}
	cp := *def
	m.s.semesters[semKey(def.DraftID, def.SemesterNumber)] = &cp
	return nil
}

func (m *mockSemesterRepo) Get(_ context.Context, draftID string, number int) (*model.SemesterDefinition, error) {
	if d, ok := m.s.semesters[semKey(draftID, number)]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetForUpdate(ctx context.Context, draftID string, number int) (*model.SemesterDefinition, error) {
	return m.Get(ctx, draftID, number)
}

func (m *mockSemesterRepo) SetLocked(_ context.Context, draftID string, number int, locked bool) error {
	if d, ok := m.s.semesters[semKey(draftID, number)]; ok {
		d.IsLocked = locked
	}
	return nil
}

func (m *mockSemesterRepo) ListByDraft(_ context.Context, draftID string) ([]model.SemesterDefinition, error) {
	var out []model.SemesterDefinition
	for _, d := range m.s.semesters {
		if d.DraftID == draftID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SemesterNumber < out[j].SemesterNumber })
	return out, nil
}

// ── Mock PlanEntryRepository ──

type mockEntryRepo struct{ s *memStore }

func (m *mockEntryRepo) withCourse(e *model.PlanEntry) model.PlanEntry {
	cp := *e
	cp.Course = m.s.courseCopy(e.CourseID)
	return cp
}

func (m *mockEntryRepo) Create(_ context.Context, entry *model.PlanEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = m.s.nextID("entry")
	}
	for _, e := range m.s.entries {
		if e.DraftID == entry.DraftID && e.CourseID == entry.CourseID {
			return fmt.Errorf("duplicate key uq_draft_course")
		}
	}
	cp := *entry
	cp.Course = nil
	m.s.entries[entry.EntryID] = &cp
	return nil
}

func (m *mockEntryRepo) GetByDraftCourse(_ context.Context, draftID, courseID string) (*model.PlanEntry, error) {
	for _, e := range m.s.entries {
		if e.DraftID == draftID && e.CourseID == courseID {
			cp := m.withCourse(e)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) list(match func(*model.PlanEntry) bool) []model.PlanEntry {
	var out []model.PlanEntry
	for _, e := range m.s.entries {
		if match(e) {
			out = append(out, m.withCourse(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SemesterNumber != out[j].SemesterNumber {
			return out[i].SemesterNumber < out[j].SemesterNumber
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

func (m *mockEntryRepo) ListByDraft(_ context.Context, draftID string) ([]model.PlanEntry, error) {
	return m.list(func(e *model.PlanEntry) bool { return e.DraftID == draftID }), nil
}

func (m *mockEntryRepo) ListBySemester(_ context.Context, draftID string, number int) ([]model.PlanEntry, error) {
	return m.list(func(e *model.PlanEntry) bool {
		return e.DraftID == draftID && e.SemesterNumber == number
	}), nil
}

func (m *mockEntryRepo) MaxOrderIndex(_ context.Context, draftID string, number int) (int, error) {
	max := -1
	for _, e := range m.s.entries {
		if e.DraftID == draftID && e.SemesterNumber == number && e.OrderIndex > max {
			max = e.OrderIndex
		}
	}
	return max, nil
}

func (m *mockEntryRepo) UpdateStatus(_ context.Context, entryIDs []string, status string) error {
	for _, id := range entryIDs {
		if e, ok := m.s.entries[id]; ok {
			e.Status = status
		}
	}
	return nil
}

func (m *mockEntryRepo) Move(_ context.Context, entryID string, number, orderIndex int) error {
	e, ok := m.s.entries[entryID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.SemesterNumber = number
	e.OrderIndex = orderIndex
	return nil
}

func (m *mockEntryRepo) SetPrereqsMet(_ context.Context, entryID string, met bool) error {
	if e, ok := m.s.entries[entryID]; ok {
		e.PrereqsMet = met
	}
	return nil
}

func (m *mockEntryRepo) Delete(_ context.Context, entryID string) error {
	delete(m.s.entries, entryID)
	return nil
}

// ── Mock ApprovalRepository ──

type mockApprovalRepo struct{ s *memStore }

func (m *mockApprovalRepo) Create(_ context.Context, approval *model.SemesterApproval) error {
	if approval.ApprovalID == "" {
		approval.ApprovalID = m.s.nextID("approval")
	}
	approval.Version = 1
	cp := *approval
	m.s.approvals[approval.ApprovalID] = &cp
	return nil
}

func (m *mockApprovalRepo) GetByKey(_ context.Context, studentID, semesterKey string) (*model.SemesterApproval, error) {
	for _, a := range m.s.approvals {
		if a.StudentID == studentID && a.SemesterKey == semesterKey {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApprovalRepo) Update(_ context.Context, approval *model.SemesterApproval) error {
	cur, ok := m.s.approvals[approval.ApprovalID]
	if !ok || cur.Version != approval.Version {
		return pkgerrors.ErrOptimisticLock
	}
	approval.Version++
	cp := *approval
	m.s.approvals[approval.ApprovalID] = &cp
	return nil
}

func (m *mockApprovalRepo) ListPendingByAdvisor(_ context.Context, advisorID string) ([]model.SemesterApproval, error) {
	var out []model.SemesterApproval
	for _, a := range m.s.approvals {
		if a.AdvisorID != nil && *a.AdvisorID == advisorID && a.Status == model.ApprovalPending {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (m *mockApprovalRepo) ListByDraft(_ context.Context, draftID string) ([]model.SemesterApproval, error) {
	var out []model.SemesterApproval
	for _, a := range m.s.approvals {
		if a.DraftID == draftID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SemesterNumber < out[j].SemesterNumber })
	return out, nil
}

// ── Mock AuditCache ──

// mockAuditCache 以 JSON 保存，与 Redis 实现一致
type mockAuditCache struct {
	data        map[string][]byte
	hits        int
	invalidated map[string]int
}

func newMockAuditCache() *mockAuditCache {
	return &mockAuditCache{data: make(map[string][]byte), invalidated: make(map[string]int)}
}

func (c *mockAuditCache) GetAudit(_ context.Context, studentID string, dst interface{}) (bool, error) {
	raw, ok := c.data[studentID]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *mockAuditCache) SetAudit(_ context.Context, studentID string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[studentID] = raw
	return nil
}

func (c *mockAuditCache) InvalidateAudit(_ context.Context, studentID string) error {
	delete(c.data, studentID)
	c.invalidated[studentID]++
	return nil
}
