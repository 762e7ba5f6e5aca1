package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"coursepath/internal/domain/audit"
	"coursepath/internal/domain/prereq"
	"coursepath/internal/model"
	"coursepath/internal/repository"
)

// ── 跨服务共享的数据装配 ──

// resolveDraft 按 ID 取草稿并校验归属；draftID 为空时取默认草稿
func resolveDraft(ctx context.Context, repo *repository.Repository, studentID, draftID string) (*model.PlanDraft, error) {
	var (
		draft *model.PlanDraft
		err   error
	)
	if draftID == "" {
		draft, err = repo.Draft.GetDefault(ctx, studentID)
	} else {
		draft, err = repo.Draft.GetByID(ctx, draftID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	if draft.StudentID != studentID {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// toRecords 成绩记录转换为审计输入
func toRecords(records []model.TranscriptRecord) []audit.Record {
	out := make([]audit.Record, 0, len(records))
	for _, r := range records {
		rec := audit.Record{
			CourseID: r.CourseID,
			Grade:    r.Grade,
			Status:   r.Status,
		}
		if r.Semester != nil {
			rec.Semester = *r.Semester
		}
		if r.Course != nil {
			rec.Code = r.Course.Code
			rec.Title = r.Course.Title
			rec.Credits = r.Course.Credits
		}
		out = append(out, rec)
	}
	return out
}

// completedSet 可用于先修判定的课程：及格的已修、在修与转学分记录
func completedSet(records []model.TranscriptRecord) map[string]bool {
	set := make(map[string]bool, len(records))
	for _, r := range records {
		switch r.Status {
		case model.TranscriptCompleted, model.TranscriptInProgress, model.TranscriptTransfer:
			if audit.IsPassingGrade(r.Grade) {
				set[r.CourseID] = true
			}
		}
	}
	return set
}

// semestersConsumed 成绩单中出现过的不同学期数
func semestersConsumed(records []model.TranscriptRecord) int {
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Semester != nil && *r.Semester != "" {
			seen[*r.Semester] = true
		}
	}
	return len(seen)
}

// plannedBefore 在 completed 基础上加入草稿中早于 semester 的课程
func plannedBefore(completed map[string]bool, entries []model.PlanEntry, semester int) map[string]bool {
	set := make(map[string]bool, len(completed)+len(entries))
	for id := range completed {
		set[id] = true
	}
	for _, e := range entries {
		if e.SemesterNumber < semester {
			set[e.CourseID] = true
		}
	}
	return set
}

// loadDependencies 批量加载课程依赖并按课程分组
func loadDependencies(ctx context.Context, repo *repository.Repository, courseIDs []string) (map[string][]prereq.Dependency, error) {
	rows, err := repo.Course.ListDependencies(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]prereq.Dependency, len(courseIDs))
	for _, d := range rows {
		dep := prereq.Dependency{Kind: d.Kind, LogicSetID: d.LogicSetID}
		if d.DependencyCourseID != nil {
			if *d.DependencyCourseID == d.CourseID {
				return nil, fmt.Errorf("%w: %s", ErrSelfPrerequisite, d.CourseID)
			}
			dep.CourseID = *d.DependencyCourseID
		}
		if d.DependencyCourse != nil {
			dep.Code = d.DependencyCourse.Code
		}
		out[d.CourseID] = append(out[d.CourseID], dep)
	}
	return out, nil
}
