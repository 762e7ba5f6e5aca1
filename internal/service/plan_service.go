package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepath/internal/domain/lifecycle"
	"coursepath/internal/domain/prereq"
	"coursepath/internal/dto"
	"coursepath/internal/model"
	"coursepath/internal/repository"
	pkgerrors "coursepath/pkg/errors"
)

// PlanService 学期计划与审批业务接口
//
// 所有状态变更在单个事务内完成：读取条目状态、校验守卫、
// 一并写入条目状态、锁定标记与审批记录。
type PlanService interface {
	// 草稿
	CreateDraft(ctx context.Context, studentID string, req *dto.CreateDraftRequest) (*dto.DraftResponse, error)
	ListDrafts(ctx context.Context, studentID string) ([]dto.DraftResponse, error)
	SetDefaultDraft(ctx context.Context, studentID, draftID string) (*dto.DraftResponse, error)

	// 视图
	GetPlan(ctx context.Context, studentID, draftID string) (*dto.PlanResponse, error)
	ValidatePlan(ctx context.Context, studentID, draftID string) (*dto.ValidatePlanResponse, error)

	// 课程增删移
	AddCourse(ctx context.Context, studentID, draftID string, req *dto.AddCourseRequest) (*dto.CourseChangeResponse, error)
	RemoveCourse(ctx context.Context, studentID, draftID, courseID string) error
	MoveCourse(ctx context.Context, studentID, draftID, courseID string, req *dto.MoveCourseRequest) (*dto.CourseChangeResponse, error)

	// 学期流转
	Submit(ctx context.Context, studentID, draftID string, semester int) (*dto.TransitionResponse, error)
	Approve(ctx context.Context, advisorID, studentID, draftID string, semester int, req *dto.ReviewRequest) (*dto.TransitionResponse, error)
	Reject(ctx context.Context, advisorID, studentID, draftID string, semester int, req *dto.ReviewRequest) (*dto.TransitionResponse, error)
	Revise(ctx context.Context, studentID, draftID string, semester int) (*dto.TransitionResponse, error)

	// 导师待审队列
	ListPendingApprovals(ctx context.Context, advisorID string) ([]dto.ApprovalResponse, error)
}

type planService struct {
	repo   *repository.Repository
	limits lifecycle.CreditLimits
	cache  AuditCache
	logger *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, limits lifecycle.CreditLimits, cache AuditCache, logger *zap.Logger) PlanService {
	return &planService{repo: repo, limits: limits, cache: cache, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 草稿
// ════════════════════════════════════════════════════════════

func (s *planService) CreateDraft(ctx context.Context, studentID string, req *dto.CreateDraftRequest) (*dto.DraftResponse, error) {
	var draft *model.PlanDraft
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Draft.ListByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		draft = &model.PlanDraft{
			StudentID: studentID,
			Name:      req.Name,
			IsDefault: len(existing) == 0,
		}
		return tx.Draft.Create(ctx, draft)
	})
	if err != nil {
		s.logger.Error("创建草稿失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	resp := toDraftResponse(draft)
	return &resp, nil
}

func (s *planService) ListDrafts(ctx context.Context, studentID string) ([]dto.DraftResponse, error) {
	drafts, err := s.repo.Draft.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询草稿失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.DraftResponse, 0, len(drafts))
	for i := range drafts {
		out = append(out, toDraftResponse(&drafts[i]))
	}
	return out, nil
}

func (s *planService) SetDefaultDraft(ctx context.Context, studentID, draftID string) (*dto.DraftResponse, error) {
	var draft *model.PlanDraft
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		d, err := resolveDraft(ctx, tx, studentID, draftID)
		if err != nil {
			return err
		}
		if err := tx.Draft.SetDefault(ctx, studentID, d.DraftID); err != nil {
			return err
		}
		d.IsDefault = true
		draft = d
		return nil
	})
	if err != nil {
		return nil, s.fail("设置默认草稿失败", err, zap.String("draft_id", draftID))
	}
	s.invalidate(ctx, studentID)
	resp := toDraftResponse(draft)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// 视图
// ════════════════════════════════════════════════════════════

func (s *planService) GetPlan(ctx context.Context, studentID, draftID string) (*dto.PlanResponse, error) {
	draft, err := resolveDraft(ctx, s.repo, studentID, draftID)
	if err != nil {
		return nil, s.fail("查询草稿失败", err, zap.String("draft_id", draftID))
	}

	defs, err := s.repo.Semester.ListByDraft(ctx, draft.DraftID)
	if err != nil {
		return nil, s.fail("查询学期定义失败", err, zap.String("draft_id", draft.DraftID))
	}
	entries, err := s.repo.Entry.ListByDraft(ctx, draft.DraftID)
	if err != nil {
		return nil, s.fail("查询计划条目失败", err, zap.String("draft_id", draft.DraftID))
	}
	approvals, err := s.repo.Approval.ListByDraft(ctx, draft.DraftID)
	if err != nil {
		return nil, s.fail("查询审批记录失败", err, zap.String("draft_id", draft.DraftID))
	}

	defByNumber := make(map[int]*model.SemesterDefinition, len(defs))
	numbers := make([]int, 0, len(defs))
	for i := range defs {
		defByNumber[defs[i].SemesterNumber] = &defs[i]
		numbers = append(numbers, defs[i].SemesterNumber)
	}
	entriesByNumber := make(map[int][]model.PlanEntry)
	for _, e := range entries {
		if _, ok := defByNumber[e.SemesterNumber]; !ok {
			if _, seen := entriesByNumber[e.SemesterNumber]; !seen {
				numbers = append(numbers, e.SemesterNumber)
			}
		}
		entriesByNumber[e.SemesterNumber] = append(entriesByNumber[e.SemesterNumber], e)
	}
	sort.Ints(numbers)

	approvalByNumber := make(map[int]*model.SemesterApproval, len(approvals))
	for i := range approvals {
		approvalByNumber[approvals[i].SemesterNumber] = &approvals[i]
	}

	resp := &dto.PlanResponse{
		DraftID:   draft.DraftID,
		StudentID: draft.StudentID,
		Name:      draft.Name,
		IsDefault: draft.IsDefault,
		Semesters: make([]dto.SemesterResponse, 0, len(numbers)),
	}
	for _, n := range numbers {
		sem := s.semesterView(n, defByNumber[n], entriesByNumber[n])
		if a := approvalByNumber[n]; a != nil {
			ar := toApprovalResponse(a)
			sem.Approval = &ar
		}
		resp.TotalCredits += sem.Credits
		resp.Semesters = append(resp.Semesters, sem)
	}
	return resp, nil
}

func (s *planService) semesterView(n int, def *model.SemesterDefinition, entries []model.PlanEntry) dto.SemesterResponse {
	sem := dto.SemesterResponse{
		Number:  n,
		Label:   semesterLabel(def, n),
		Status:  lifecycle.DeriveStatus(entryStatuses(entries)),
		Entries: make([]dto.PlanEntryResponse, 0, len(entries)),
	}
	if def != nil {
		sem.Term = def.Term
		sem.Year = def.Year
		sem.IsLocked = def.IsLocked
	}
	for i := range entries {
		sem.Entries = append(sem.Entries, toEntryResponse(&entries[i]))
	}
	sem.Credits = entryCredits(entries)
	level, _ := s.limits.Evaluate(sem.Credits)
	sem.CreditLevel = string(level)
	sem.Warning = s.limits.Warning(sem.Credits)
	return sem
}

func (s *planService) ValidatePlan(ctx context.Context, studentID, draftID string) (*dto.ValidatePlanResponse, error) {
	var resp *dto.ValidatePlanResponse
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		draft, err := resolveDraft(ctx, tx, studentID, draftID)
		if err != nil {
			return err
		}
		records, err := tx.Transcript.ListByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		entries, err := tx.Entry.ListByDraft(ctx, draft.DraftID)
		if err != nil {
			return err
		}
		courseIDs := make([]string, 0, len(entries))
		for _, e := range entries {
			courseIDs = append(courseIDs, e.CourseID)
		}
		deps, err := loadDependencies(ctx, tx, courseIDs)
		if err != nil {
			return err
		}

		completed := completedSet(records)
		resp = &dto.ValidatePlanResponse{DraftID: draft.DraftID, Entries: make([]dto.ValidatedEntry, 0, len(entries))}
		for _, e := range entries {
			res := prereq.Resolve(deps[e.CourseID], plannedBefore(completed, entries, e.SemesterNumber))
			if res.Satisfied != e.PrereqsMet {
				if err := tx.Entry.SetPrereqsMet(ctx, e.EntryID, res.Satisfied); err != nil {
					return err
				}
			}
			if !res.Satisfied {
				resp.Unmet++
			}
			v := dto.ValidatedEntry{
				EntryID:        e.EntryID,
				CourseID:       e.CourseID,
				SemesterNumber: e.SemesterNumber,
				PrereqsMet:     res.Satisfied,
				Missing:        res.Missing,
			}
			if e.Course != nil {
				v.Code = e.Course.Code
			}
			resp.Entries = append(resp.Entries, v)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("校验计划失败", err, zap.String("draft_id", draftID))
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 课程增删移
// ════════════════════════════════════════════════════════════

func (s *planService) AddCourse(ctx context.Context, studentID, draftID string, req *dto.AddCourseRequest) (*dto.CourseChangeResponse, error) {
	var (
		entry *model.PlanEntry
		draft *model.PlanDraft
		resp  *dto.CourseChangeResponse
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		draft, err = resolveDraft(ctx, tx, studentID, draftID)
		if err != nil {
			return err
		}

		course, err := tx.Course.GetByID(ctx, req.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if !course.IsActive {
			return ErrCourseInactive
		}

		def, err := s.ensureSemester(ctx, tx, draft.DraftID, req.SemesterNumber, req.Term, req.Year)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckMutable(def.IsLocked); err != nil {
			return err
		}

		if _, err := tx.Entry.GetByDraftCourse(ctx, draft.DraftID, course.CourseID); err == nil {
			return ErrDuplicateCourse
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		existing, err := tx.Entry.ListBySemester(ctx, draft.DraftID, req.SemesterNumber)
		if err != nil {
			return err
		}
		credits := entryCredits(existing) + course.Credits
		if _, err := s.limits.Evaluate(credits); err != nil {
			return err
		}

		maxOrder, err := tx.Entry.MaxOrderIndex(ctx, draft.DraftID, req.SemesterNumber)
		if err != nil {
			return err
		}
		entry = &model.PlanEntry{
			StudentID:      studentID,
			DraftID:        draft.DraftID,
			CourseID:       course.CourseID,
			SemesterNumber: req.SemesterNumber,
			OrderIndex:     maxOrder + 1,
			Status:         model.EntryDraft,
			PrereqsMet:     false,
			Course:         course,
		}
		if err := tx.Entry.Create(ctx, entry); err != nil {
			return err
		}
		resp, err = s.changeResponse(ctx, tx, entry, credits)
		return err
	})
	if err != nil {
		return nil, s.fail("添加课程失败", err, zap.String("course_id", req.CourseID), zap.Int("semester", req.SemesterNumber))
	}

	s.invalidate(ctx, studentID)
	s.logger.Info("课程已加入计划",
		zap.String("student_id", studentID),
		zap.String("draft_id", draft.DraftID),
		zap.String("course_id", entry.CourseID),
		zap.Int("semester", entry.SemesterNumber),
	)
	return resp, nil
}

func (s *planService) RemoveCourse(ctx context.Context, studentID, draftID, courseID string) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		draft, err := resolveDraft(ctx, tx, studentID, draftID)
		if err != nil {
			return err
		}
		entry, err := s.findEntry(ctx, tx, draft.DraftID, courseID)
		if err != nil {
			return err
		}
		if err := s.checkSemesterMutable(ctx, tx, draft.DraftID, entry.SemesterNumber); err != nil {
			return err
		}
		return tx.Entry.Delete(ctx, entry.EntryID)
	})
	if err != nil {
		return s.fail("移除课程失败", err, zap.String("course_id", courseID))
	}
	s.invalidate(ctx, studentID)
	return nil
}

func (s *planService) MoveCourse(ctx context.Context, studentID, draftID, courseID string, req *dto.MoveCourseRequest) (*dto.CourseChangeResponse, error) {
	var resp *dto.CourseChangeResponse
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		draft, err := resolveDraft(ctx, tx, studentID, draftID)
		if err != nil {
			return err
		}
		entry, err := s.findEntry(ctx, tx, draft.DraftID, courseID)
		if err != nil {
			return err
		}
		from, to := entry.SemesterNumber, req.SemesterNumber

		// 按学期号顺序加锁
		first, second := from, to
		if first > second {
			first, second = second, first
		}
		order := []int{first}
		if second != first {
			order = append(order, second)
		}
		for _, n := range order {
			if n != to {
				if err := s.checkSemesterMutable(ctx, tx, draft.DraftID, n); err != nil {
					return err
				}
				continue
			}
			def, err := s.ensureSemester(ctx, tx, draft.DraftID, n, "", 0)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckMutable(def.IsLocked); err != nil {
				return err
			}
		}

		target, err := tx.Entry.ListBySemester(ctx, draft.DraftID, to)
		if err != nil {
			return err
		}
		if from == to {
			resp, err = s.changeResponse(ctx, tx, entry, entryCredits(target))
			return err
		}
		credits := entryCredits(target) + courseCredits(entry)
		if _, err := s.limits.Evaluate(credits); err != nil {
			return err
		}

		maxOrder, err := tx.Entry.MaxOrderIndex(ctx, draft.DraftID, to)
		if err != nil {
			return err
		}
		if err := tx.Entry.Move(ctx, entry.EntryID, to, maxOrder+1); err != nil {
			return err
		}
		entry.SemesterNumber = to
		entry.OrderIndex = maxOrder + 1
		resp, err = s.changeResponse(ctx, tx, entry, credits)
		return err
	})
	if err != nil {
		return nil, s.fail("移动课程失败", err, zap.String("course_id", courseID), zap.Int("semester", req.SemesterNumber))
	}
	s.invalidate(ctx, studentID)
	return resp, nil
}

// ensureSemester 以行锁读取学期定义，不存在时创建（未锁定）
func (s *planService) ensureSemester(ctx context.Context, tx *repository.Repository, draftID string, n int, term string, year int) (*model.SemesterDefinition, error) {
	def, err := tx.Semester.GetForUpdate(ctx, draftID, n)
	if err == nil {
		return def, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	def = &model.SemesterDefinition{DraftID: draftID, SemesterNumber: n, Term: term, Year: year}
	if err := tx.Semester.Create(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// checkSemesterMutable 学期不存在视为未锁定
func (s *planService) checkSemesterMutable(ctx context.Context, tx *repository.Repository, draftID string, n int) error {
	def, err := tx.Semester.GetForUpdate(ctx, draftID, n)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return lifecycle.CheckMutable(def.IsLocked)
}

func (s *planService) findEntry(ctx context.Context, tx *repository.Repository, draftID, courseID string) (*model.PlanEntry, error) {
	entry, err := tx.Entry.GetByDraftCourse(ctx, draftID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// changeResponse 附带先修状态与学分负荷，在事务内计算，失败时变更一并回滚
func (s *planService) changeResponse(ctx context.Context, tx *repository.Repository, entry *model.PlanEntry, credits int) (*dto.CourseChangeResponse, error) {
	resp := &dto.CourseChangeResponse{
		Entry:           toEntryResponse(entry),
		SemesterCredits: credits,
		Warning:         s.limits.Warning(credits),
	}
	level, _ := s.limits.Evaluate(credits)
	resp.CreditLevel = string(level)

	records, err := tx.Transcript.ListByStudent(ctx, entry.StudentID)
	if err != nil {
		return nil, err
	}
	entries, err := tx.Entry.ListByDraft(ctx, entry.DraftID)
	if err != nil {
		return nil, err
	}
	deps, err := loadDependencies(ctx, tx, []string{entry.CourseID})
	if err != nil {
		return nil, err
	}
	res := prereq.Resolve(deps[entry.CourseID], plannedBefore(completedSet(records), entries, entry.SemesterNumber))
	resp.PrereqsMet = res.Satisfied
	resp.MissingPrereqs = res.Missing
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 学期流转
// ════════════════════════════════════════════════════════════

func (s *planService) Submit(ctx context.Context, studentID, draftID string, semester int) (*dto.TransitionResponse, error) {
	return s.transition(ctx, lifecycle.ActionSubmit, studentID, draftID, semester, studentID, "")
}

func (s *planService) Approve(ctx context.Context, advisorID, studentID, draftID string, semester int, req *dto.ReviewRequest) (*dto.TransitionResponse, error) {
	return s.transition(ctx, lifecycle.ActionApprove, studentID, draftID, semester, advisorID, req.Comments)
}

func (s *planService) Reject(ctx context.Context, advisorID, studentID, draftID string, semester int, req *dto.ReviewRequest) (*dto.TransitionResponse, error) {
	return s.transition(ctx, lifecycle.ActionReject, studentID, draftID, semester, advisorID, req.Comments)
}

func (s *planService) Revise(ctx context.Context, studentID, draftID string, semester int) (*dto.TransitionResponse, error) {
	return s.transition(ctx, lifecycle.ActionRevise, studentID, draftID, semester, studentID, "")
}

// transition 学期状态流转：读状态 → 校验守卫 → 写条目状态、锁定标记与审批记录
func (s *planService) transition(ctx context.Context, action lifecycle.Action, studentID, draftID string, n int, actorID, comments string) (*dto.TransitionResponse, error) {
	var resp *dto.TransitionResponse
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		draft, err := resolveDraft(ctx, tx, studentID, draftID)
		if err != nil {
			return err
		}

		// 导师身份须在任何写操作前校验
		advisorID, err := s.checkActor(ctx, tx, action, studentID, actorID)
		if err != nil {
			return err
		}

		def, err := tx.Semester.GetForUpdate(ctx, draft.DraftID, n)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		entries, err := tx.Entry.ListBySemester(ctx, draft.DraftID, n)
		if err != nil {
			return err
		}
		statuses := entryStatuses(entries)
		if err := lifecycle.Check(action, statuses, comments); err != nil {
			return err
		}
		if action == lifecycle.ActionSubmit {
			if _, err := s.limits.Evaluate(entryCredits(entries)); err != nil {
				return err
			}
		}
		if def == nil {
			def, err = s.ensureSemester(ctx, tx, draft.DraftID, n, "", 0)
			if err != nil {
				return err
			}
		}

		// 条目状态
		byNext := make(map[string][]string)
		for i := range entries {
			next, ok := lifecycle.Next(action, entries[i].Status)
			if !ok {
				continue
			}
			byNext[next] = append(byNext[next], entries[i].EntryID)
			entries[i].Status = next
		}
		affected := 0
		for next, ids := range byNext {
			if err := tx.Entry.UpdateStatus(ctx, ids, next); err != nil {
				return err
			}
			affected += len(ids)
		}
		if action == lifecycle.ActionRevise {
			for _, id := range byNext[lifecycle.StatusDraft] {
				if err := tx.Entry.SetPrereqsMet(ctx, id, false); err != nil {
					return err
				}
			}
		}

		// 锁定标记
		locked := lifecycle.LocksAfter(action)
		if err := tx.Semester.SetLocked(ctx, draft.DraftID, n, locked); err != nil {
			return err
		}

		// 审批记录
		approval, err := s.writeApproval(ctx, tx, action, draft, def, advisorID, comments)
		if err != nil {
			return err
		}

		resp = &dto.TransitionResponse{
			SemesterNumber: n,
			Status:         lifecycle.DeriveStatus(entryStatuses(entries)),
			IsLocked:       locked,
			Affected:       affected,
		}
		if approval != nil {
			ar := toApprovalResponse(approval)
			resp.Approval = &ar
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("学期状态变更失败", err,
			zap.String("action", string(action)),
			zap.String("student_id", studentID),
			zap.Int("semester", n),
		)
	}

	s.invalidate(ctx, studentID)
	s.logger.Info("学期状态已变更",
		zap.String("action", string(action)),
		zap.String("student_id", studentID),
		zap.String("actor_id", actorID),
		zap.Int("semester", n),
		zap.String("status", resp.Status),
	)
	return resp, nil
}

// checkActor 提交需已分配导师；审核需调用方为学生的指定导师
// 返回导师 ID
func (s *planService) checkActor(ctx context.Context, tx *repository.Repository, action lifecycle.Action, studentID, actorID string) (string, error) {
	if action == lifecycle.ActionRevise {
		return "", nil
	}
	profile, err := tx.User.GetProfile(ctx, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	var advisorID string
	if profile != nil && profile.AdvisorID != nil {
		advisorID = *profile.AdvisorID
	}

	switch action {
	case lifecycle.ActionSubmit:
		if profile == nil {
			return "", ErrStudentNotFound
		}
		if advisorID == "" {
			return "", ErrNoAdvisor
		}
	case lifecycle.ActionApprove, lifecycle.ActionReject:
		if advisorID == "" || advisorID != actorID {
			return "", ErrNotAdvisor
		}
	}
	return advisorID, nil
}

// writeApproval 提交时创建或刷新 PENDING 记录；审核时更新结论；修订不改动记录
func (s *planService) writeApproval(ctx context.Context, tx *repository.Repository, action lifecycle.Action, draft *model.PlanDraft, def *model.SemesterDefinition, advisorID, comments string) (*model.SemesterApproval, error) {
	if action == lifecycle.ActionRevise {
		return nil, nil
	}

	key := semesterKey(def, def.SemesterNumber)
	now := time.Now()
	approval, err := tx.Approval.GetByKey(ctx, draft.StudentID, key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	isNew := approval == nil
	if isNew {
		approval = &model.SemesterApproval{
			StudentID:   draft.StudentID,
			SemesterKey: key,
			SubmittedAt: now,
		}
	}
	approval.DraftID = draft.DraftID
	approval.SemesterNumber = def.SemesterNumber
	if advisorID != "" {
		approval.AdvisorID = &advisorID
	}

	switch action {
	case lifecycle.ActionSubmit:
		approval.Status = model.ApprovalPending
		approval.Comments = ""
		approval.SubmittedAt = now
		approval.ReviewedAt = nil
	case lifecycle.ActionApprove:
		approval.Status = model.ApprovalApproved
		approval.Comments = comments
		approval.ReviewedAt = &now
		approval.UpdatedBy = &advisorID
	case lifecycle.ActionReject:
		approval.Status = model.ApprovalNeedsRevision
		approval.Comments = comments
		approval.ReviewedAt = &now
		approval.UpdatedBy = &advisorID
	}

	if isNew {
		return approval, tx.Approval.Create(ctx, approval)
	}
	return approval, tx.Approval.Update(ctx, approval)
}

func (s *planService) ListPendingApprovals(ctx context.Context, advisorID string) ([]dto.ApprovalResponse, error) {
	list, err := s.repo.Approval.ListPendingByAdvisor(ctx, advisorID)
	if err != nil {
		s.logger.Error("查询待审记录失败", zap.String("advisor_id", advisorID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.ApprovalResponse, 0, len(list))
	for i := range list {
		out = append(out, toApprovalResponse(&list[i]))
	}
	return out, nil
}

// ── 辅助函数 ──

// fail 领域错误直接返回，基础设施错误记录日志
func (s *planService) fail(msg string, err error, fields ...zap.Field) error {
	if pkgerrors.KindOf(err) == "" {
		s.logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

func (s *planService) invalidate(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAudit(ctx, studentID); err != nil {
		s.logger.Warn("清除审计缓存失败", zap.String("student_id", studentID), zap.Error(err))
	}
}

func entryStatuses(entries []model.PlanEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Status)
	}
	return out
}

func entryCredits(entries []model.PlanEntry) int {
	total := 0
	for i := range entries {
		total += courseCredits(&entries[i])
	}
	return total
}

func courseCredits(e *model.PlanEntry) int {
	if e.Course == nil {
		return 0
	}
	return e.Course.Credits
}

// semesterKey 全局学期标识：有学年学期时为 TERM-YEAR，否则为 S<n>
func semesterKey(def *model.SemesterDefinition, n int) string {
	if def != nil && def.Term != "" && def.Year > 0 {
		return fmt.Sprintf("%s-%d", def.Term, def.Year)
	}
	return fmt.Sprintf("S%d", n)
}

func semesterLabel(def *model.SemesterDefinition, n int) string {
	if def != nil && def.Term != "" && def.Year > 0 {
		return fmt.Sprintf("%s %d", def.Term, def.Year)
	}
	return fmt.Sprintf("第 %d 学期", n)
}

func toDraftResponse(d *model.PlanDraft) dto.DraftResponse {
	return dto.DraftResponse{
		ID:        d.DraftID,
		StudentID: d.StudentID,
		Name:      d.Name,
		IsDefault: d.IsDefault,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryResponse(e *model.PlanEntry) dto.PlanEntryResponse {
	r := dto.PlanEntryResponse{
		EntryID:        e.EntryID,
		CourseID:       e.CourseID,
		SemesterNumber: e.SemesterNumber,
		OrderIndex:     e.OrderIndex,
		Status:         e.Status,
		PrereqsMet:     e.PrereqsMet,
	}
	if e.Course != nil {
		r.Code = e.Course.Code
		r.Title = e.Course.Title
		r.Credits = e.Course.Credits
	}
	return r
}

func toApprovalResponse(a *model.SemesterApproval) dto.ApprovalResponse {
	r := dto.ApprovalResponse{
		ApprovalID:     a.ApprovalID,
		StudentID:      a.StudentID,
		SemesterKey:    a.SemesterKey,
		DraftID:        a.DraftID,
		SemesterNumber: a.SemesterNumber,
		Status:         a.Status,
		Comments:       a.Comments,
		SubmittedAt:    a.SubmittedAt.Format(time.RFC3339),
	}
	if a.AdvisorID != nil {
		r.AdvisorID = *a.AdvisorID
	}
	if a.ReviewedAt != nil {
		t := a.ReviewedAt.Format(time.RFC3339)
		r.ReviewedAt = &t
	}
	return r
}
