package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepath/internal/domain/audit"
	"coursepath/internal/dto"
	"coursepath/internal/model"
	"coursepath/internal/repository"
	"coursepath/pkg/tracing"
)

// AuditService 学位审计业务接口
type AuditService interface {
	// RunAudit 计算学生合并审计；新生无档案或无方案时返回零进度与提示
	RunAudit(ctx context.Context, studentID string) (*dto.AuditResponse, error)
}

type auditService struct {
	repo   *repository.Repository
	cache  AuditCache
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, cache AuditCache, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, cache: cache, logger: logger}
}

// cachedAudit 缓存条目；指纹不一致时视为未命中
type cachedAudit struct {
	Fingerprint string            `json:"fingerprint"`
	Response    dto.AuditResponse `json:"response"`
}

func (s *auditService) RunAudit(ctx context.Context, studentID string) (*dto.AuditResponse, error) {
	var fp string
	if s.cache != nil {
		var err error
		if fp, err = s.fingerprint(ctx, studentID); err != nil {
			s.logger.Warn("计算审计指纹失败，跳过缓存", zap.String("student_id", studentID), zap.Error(err))
		} else {
			var cached cachedAudit
			hit, err := s.cache.GetAudit(ctx, studentID, &cached)
			if err != nil {
				s.logger.Warn("读取审计缓存失败", zap.String("student_id", studentID), zap.Error(err))
			} else if hit && cached.Fingerprint == fp {
				return &cached.Response, nil
			}
		}
	}

	ctx, span := tracing.Tracer().Start(ctx, "audit.Run")
	defer span.End()
	span.SetAttributes(attribute.String("student_id", studentID))

	in, err := s.loadInput(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp := &dto.AuditResponse{
		StudentID:   studentID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Result:      audit.Run(*in),
	}
	span.SetAttributes(attribute.Int("audit.percent", resp.Progress.Percent))

	if s.cache != nil && fp != "" {
		if err := s.cache.SetAudit(ctx, studentID, cachedAudit{Fingerprint: fp, Response: *resp}); err != nil {
			s.logger.Warn("写入审计缓存失败", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return resp, nil
}

// fingerprint 成绩单与方案分配的摘要
//
// 二者由教务与管理员在计划流程之外修改，不会触发缓存失效。
func (s *auditService) fingerprint(ctx context.Context, studentID string) (string, error) {
	records, err := s.repo.Transcript.ListByStudent(ctx, studentID)
	if err != nil {
		return "", err
	}
	assignments, err := s.repo.User.ListAssignments(ctx, studentID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(records)+len(assignments))
	for _, r := range records {
		sem := ""
		if r.Semester != nil {
			sem = *r.Semester
		}
		lines = append(lines, fmt.Sprintf("t|%s|%s|%s|%s", r.CourseID, r.Status, r.Grade, sem))
	}
	for _, a := range assignments {
		lines = append(lines, fmt.Sprintf("p|%s|%s|%t", a.ProgramID, a.ProgramType, a.IsPrimary))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *auditService) loadInput(ctx context.Context, studentID string) (*audit.Input, error) {
	in := &audit.Input{HasProfile: true}

	if _, err := s.repo.User.GetProfile(ctx, studentID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学生档案失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		in.HasProfile = false
		return in, nil
	}

	assignments, err := s.repo.User.ListAssignments(ctx, studentID)
	if err != nil {
		s.logger.Error("查询方案分配失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	programIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		programIDs = append(programIDs, a.ProgramID)
	}
	groups, err := s.repo.Program.ListGroups(ctx, programIDs)
	if err != nil {
		s.logger.Error("查询要求组失败", zap.Error(err))
		return nil, err
	}
	byProgram := make(map[string][]audit.Group, len(programIDs))
	for _, g := range groups {
		byProgram[g.ProgramID] = append(byProgram[g.ProgramID], toAuditGroup(g))
	}

	for _, a := range assignments {
		p := audit.Program{
			ID:        a.ProgramID,
			Type:      a.ProgramType,
			IsPrimary: a.IsPrimary,
			Groups:    byProgram[a.ProgramID],
		}
		if a.Program != nil {
			p.Code = a.Program.Code
			p.Name = a.Program.Name
			p.TotalCredits = a.Program.TotalCredits
		}
		in.Programs = append(in.Programs, p)
	}

	records, err := s.repo.Transcript.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询成绩单失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	in.Transcript = toRecords(records)

	// 默认草稿中的课程仅作标注
	in.Planned = make(map[string]int)
	draft, err := s.repo.Draft.GetDefault(ctx, studentID)
	switch {
	case err == nil:
		entries, err := s.repo.Entry.ListByDraft(ctx, draft.DraftID)
		if err != nil {
			s.logger.Error("查询计划条目失败", zap.String("draft_id", draft.DraftID), zap.Error(err))
			return nil, err
		}
		for _, e := range entries {
			in.Planned[e.CourseID] = e.SemesterNumber
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询默认草稿失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	return in, nil
}

func toAuditGroup(g model.RequirementGroup) audit.Group {
	out := audit.Group{
		ID:              g.GroupID,
		Name:            g.Name,
		CreditsRequired: g.CreditsRequired,
		MinCourses:      g.MinCourses,
		SortOrder:       g.SortOrder,
		Courses:         make([]audit.GroupCourse, 0, len(g.Courses)),
	}
	if g.ParentGroupID != nil {
		out.ParentID = *g.ParentGroupID
	}
	for _, gc := range g.Courses {
		c := audit.GroupCourse{
			Course:    audit.Course{ID: gc.CourseID},
			Mandatory: gc.IsMandatory,
		}
		if gc.Course != nil {
			c.Code = gc.Course.Code
			c.Title = gc.Course.Title
			c.Credits = gc.Course.Credits
		}
		out.Courses = append(out.Courses, c)
	}
	return out
}
