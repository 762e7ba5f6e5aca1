package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"coursepath/internal/domain/audit"
	"coursepath/internal/domain/recommend"
	"coursepath/internal/dto"
	"coursepath/internal/model"
	"coursepath/internal/repository"
	pkgerrors "coursepath/pkg/errors"
	"coursepath/pkg/tracing"
)

// NoteAddFailed 应用建议时单条添加失败
const NoteAddFailed = "ADD_FAILED"

// ErrInvalidFillMode 未知填充模式
var ErrInvalidFillMode = pkgerrors.New(pkgerrors.KindGuard, 30104, "填充模式仅支持 remaining 或 full")

// AutoFillService 按推荐修读顺序自动填充草稿
type AutoFillService interface {
	// Generate 只计算建议，不写入草稿
	Generate(ctx context.Context, studentID, draftID, mode string) (*dto.AutoFillResponse, error)
	// Apply 计算建议并逐条加入草稿，单条失败记为冲突
	Apply(ctx context.Context, studentID, draftID, mode string) (*dto.ApplyAutoFillResponse, error)
}

type autoFillService struct {
	repo        *repository.Repository
	plan        PlanService
	defaultMode recommend.Mode
	logger      *zap.Logger
}

// NewAutoFillService 创建 AutoFillService 实例
func NewAutoFillService(repo *repository.Repository, plan PlanService, defaultMode string, logger *zap.Logger) AutoFillService {
	mode, ok := recommend.ParseMode(defaultMode)
	if !ok {
		mode = recommend.ModeRemaining
	}
	return &autoFillService{repo: repo, plan: plan, defaultMode: mode, logger: logger}
}

func (s *autoFillService) Generate(ctx context.Context, studentID, draftID, mode string) (*dto.AutoFillResponse, error) {
	m, err := s.parseMode(mode)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "autofill.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("student_id", studentID),
		attribute.String("autofill.mode", string(m)),
	)

	draft, in, err := s.loadInput(ctx, studentID, draftID, m)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := recommend.Generate(*in)
	span.SetAttributes(
		attribute.Int("autofill.additions", len(out.Additions)),
		attribute.Int("autofill.conflicts", len(out.Conflicts)),
	)

	return &dto.AutoFillResponse{
		DraftID:           draft.DraftID,
		Mode:              string(m),
		SemestersConsumed: in.SemestersConsumed,
		Additions:         out.Additions,
		Conflicts:         out.Conflicts,
	}, nil
}

func (s *autoFillService) Apply(ctx context.Context, studentID, draftID, mode string) (*dto.ApplyAutoFillResponse, error) {
	gen, err := s.Generate(ctx, studentID, draftID, mode)
	if err != nil {
		return nil, err
	}

	resp := &dto.ApplyAutoFillResponse{
		DraftID:   gen.DraftID,
		Mode:      gen.Mode,
		Applied:   make([]dto.CourseChangeResponse, 0, len(gen.Additions)),
		Conflicts: gen.Conflicts,
	}
	for _, sug := range gen.Additions {
		res, err := s.plan.AddCourse(ctx, studentID, gen.DraftID, &dto.AddCourseRequest{
			CourseID:       sug.CourseID,
			SemesterNumber: sug.Semester,
		})
		if err != nil {
			// 领域错误（锁定、超限、重复）记为冲突，其余中止
			if pkgerrors.KindOf(err) == "" {
				return nil, err
			}
			resp.Conflicts = append(resp.Conflicts, recommend.Note{
				Semester: sug.Semester,
				Type:     NoteAddFailed,
				Message:  fmt.Sprintf("%s 未能加入第 %d 学期：%s", sug.Code, sug.Semester, err.Error()),
			})
			continue
		}
		resp.Applied = append(resp.Applied, *res)
	}

	s.logger.Info("自动填充已应用",
		zap.String("student_id", studentID),
		zap.String("draft_id", gen.DraftID),
		zap.String("mode", gen.Mode),
		zap.Int("applied", len(resp.Applied)),
		zap.Int("conflicts", len(resp.Conflicts)),
	)
	return resp, nil
}

func (s *autoFillService) parseMode(mode string) (recommend.Mode, error) {
	if mode == "" {
		return s.defaultMode, nil
	}
	m, ok := recommend.ParseMode(mode)
	if !ok {
		return "", ErrInvalidFillMode
	}
	return m, nil
}

// loadInput 装配推荐引擎输入：主修推荐序列、要求组课程池、辅修/方向课程池、成绩单与草稿
func (s *autoFillService) loadInput(ctx context.Context, studentID, draftID string, mode recommend.Mode) (*model.PlanDraft, *recommend.Input, error) {
	draft, err := resolveDraft(ctx, s.repo, studentID, draftID)
	if err != nil {
		return nil, nil, err
	}

	assignments, err := s.repo.User.ListAssignments(ctx, studentID)
	if err != nil {
		s.logger.Error("查询方案分配失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, nil, err
	}
	major := primaryMajor(assignments)
	if major == nil {
		return nil, nil, ErrNoPrimaryMajor
	}

	seq, err := s.repo.Program.ListSequence(ctx, major.ProgramID)
	if err != nil {
		s.logger.Error("查询推荐序列失败", zap.String("program_id", major.ProgramID), zap.Error(err))
		return nil, nil, err
	}

	in := &recommend.Input{
		Mode:         mode,
		ProgramType:  major.ProgramType,
		Sequence:     make([]recommend.Slot, 0, len(seq)),
		Courses:      make(map[string]recommend.Course),
		Groups:       make(map[string]recommend.Pool),
		Programs:     make(map[string]recommend.Pool),
		Transcript:   make(map[string]bool),
		Planned:      make(map[string]int),
	}

	// 序列中引用的课程
	var slotCourseIDs []string
	for _, e := range seq {
		slot := recommend.Slot{
			Semester:  e.SemesterNumber,
			Type:      e.SlotType,
			Label:     e.Label,
			SortOrder: e.SortOrder,
		}
		if e.CourseID != nil {
			slot.CourseID = *e.CourseID
			slotCourseIDs = append(slotCourseIDs, *e.CourseID)
		}
		if e.GroupID != nil {
			slot.GroupID = *e.GroupID
		}
		in.Sequence = append(in.Sequence, slot)
	}
	if len(slotCourseIDs) > 0 {
		courses, err := s.repo.Course.ListByIDs(ctx, slotCourseIDs)
		if err != nil {
			s.logger.Error("查询课程失败", zap.Error(err))
			return nil, nil, err
		}
		for _, c := range courses {
			in.Courses[c.CourseID] = toRecommendCourse(&c)
		}
	}

	// 主修要求组作为 GROUP 槽位课程池；辅修/方向全部课程合为一个池
	programIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		programIDs = append(programIDs, a.ProgramID)
	}
	groups, err := s.repo.Program.ListGroups(ctx, programIDs)
	if err != nil {
		s.logger.Error("查询要求组失败", zap.Error(err))
		return nil, nil, err
	}
	typeOf := make(map[string]string, len(assignments))
	for _, a := range assignments {
		typeOf[a.ProgramID] = a.ProgramType
	}
	for _, g := range groups {
		pool := toPool(g.Name, g.Courses)
		in.Groups[g.GroupID] = pool
		switch t := typeOf[g.ProgramID]; t {
		case model.ProgramMinor, model.ProgramConcentration:
			merged := in.Programs[t]
			if merged.Name == "" {
				merged.Name = t
			}
			merged.Options = mergeOptions(merged.Options, pool.Options)
			in.Programs[t] = merged
		}
	}

	records, err := s.repo.Transcript.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询成绩单失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, nil, err
	}
	for _, r := range records {
		in.Transcript[r.CourseID] = true
	}
	in.Completed = completedSet(records)
	in.SemestersConsumed = semestersConsumed(records)

	entries, err := s.repo.Entry.ListByDraft(ctx, draft.DraftID)
	if err != nil {
		s.logger.Error("查询计划条目失败", zap.String("draft_id", draft.DraftID), zap.Error(err))
		return nil, nil, err
	}
	for _, e := range entries {
		in.Planned[e.CourseID] = e.SemesterNumber
	}
	trackGroupNeeds(in, groups, records)

	// 一次性加载全部候选课程的依赖
	candidates := candidateIDs(in)
	deps, err := loadDependencies(ctx, s.repo, candidates)
	if err != nil {
		if !errors.Is(err, ErrSelfPrerequisite) {
			s.logger.Error("查询课程依赖失败", zap.Error(err))
		}
		return nil, nil, err
	}
	in.Dependencies = deps

	return draft, in, nil
}

// trackGroupNeeds 由审计树算出各要求组的缺口，已满足的组不再推荐
func trackGroupNeeds(in *recommend.Input, groups []model.RequirementGroup, records []model.TranscriptRecord) {
	auditGroups := make([]audit.Group, 0, len(groups))
	for _, g := range groups {
		auditGroups = append(auditGroups, toAuditGroup(g))
	}
	book := audit.NewStatusBook(toRecords(records), nil)
	audit.Walk(audit.BuildTree(auditGroups, book.Of, in.Planned), func(b *audit.Bucket) {
		pool, ok := in.Groups[b.ID]
		if !ok {
			return
		}
		credits, courses := b.Outstanding()
		pool.Need = &recommend.Need{Credits: credits, Courses: courses}
		in.Groups[b.ID] = pool
	})
}

// primaryMajor 主专业优先，否则取第一个主修
func primaryMajor(assignments []model.StudentProgramAssignment) *model.StudentProgramAssignment {
	var first *model.StudentProgramAssignment
	for i := range assignments {
		a := &assignments[i]
		if a.ProgramType != model.ProgramMajor {
			continue
		}
		if a.IsPrimary {
			return a
		}
		if first == nil {
			first = a
		}
	}
	return first
}

func toRecommendCourse(c *model.Course) recommend.Course {
	return recommend.Course{ID: c.CourseID, Code: c.Code, Title: c.Title, Credits: c.Credits}
}

func toPool(name string, links []model.RequirementGroupCourse) recommend.Pool {
	pool := recommend.Pool{Name: name, Options: make([]recommend.Option, 0, len(links))}
	for _, gc := range links {
		if gc.Course == nil || !gc.Course.IsActive {
			continue
		}
		pool.Options = append(pool.Options, recommend.Option{
			Course:    toRecommendCourse(gc.Course),
			Mandatory: gc.IsMandatory,
		})
	}
	return pool
}

// mergeOptions 按课程去重，任一组标记必修即视为必修
func mergeOptions(dst, src []recommend.Option) []recommend.Option {
	idx := make(map[string]int, len(dst))
	for i, o := range dst {
		idx[o.ID] = i
	}
	for _, o := range src {
		if i, ok := idx[o.ID]; ok {
			dst[i].Mandatory = dst[i].Mandatory || o.Mandatory
			continue
		}
		idx[o.ID] = len(dst)
		dst = append(dst, o)
	}
	return dst
}

func candidateIDs(in *recommend.Input) []string {
	set := make(map[string]bool)
	for id := range in.Courses {
		set[id] = true
	}
	for _, p := range in.Groups {
		for _, o := range p.Options {
			set[o.ID] = true
		}
	}
	for _, p := range in.Programs {
		for _, o := range p.Options {
			set[o.ID] = true
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
