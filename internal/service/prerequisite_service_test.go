package service

import (
	"errors"
	"testing"

	"coursepath/internal/dto"
	"coursepath/internal/model"
)

func TestPrerequisiteService_Resolve(t *testing.T) {
	f := newFixture(t)
	f.prereq("MTH301", "MTH150A", 1)
	f.prereq("MTH301", "MTH150B", 1)
	f.prereq("MTH301", "MTH201", 2)

	tests := []struct {
		name      string
		completed []string
		satisfied bool
		missing   []string
	}{
		{"仅完成第二组", []string{"MTH201"}, true, nil},
		{"第一组全部完成", []string{"MTH150A", "MTH150B"}, true, nil},
		{"第一组完成一半", []string{"MTH150A"}, false, []string{"MTH150B"}},
		{"全部未完成", nil, false, []string{"MTH150A", "MTH150B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, 0, len(tt.completed))
			for _, c := range tt.completed {
				ids = append(ids, f.courses[c])
			}
			res, err := f.svc.Prerequisite.Resolve(f.ctx, &dto.ResolvePrerequisitesRequest{
				CourseID:           f.courses["MTH301"],
				CompletedCourseIDs: ids,
			})
			if err != nil {
				t.Fatalf("判定失败: %v", err)
			}
			if res.Satisfied != tt.satisfied {
				t.Errorf("satisfied 期望 %v，实际 %v", tt.satisfied, res.Satisfied)
			}
			if len(res.Missing) != len(tt.missing) {
				t.Fatalf("missing 期望 %v，实际 %v", tt.missing, res.Missing)
			}
			for i := range tt.missing {
				if res.Missing[i] != tt.missing[i] {
					t.Errorf("missing[%d] 期望 %s，实际 %s", i, tt.missing[i], res.Missing[i])
				}
			}
		})
	}
}

func TestPrerequisiteService_CheckForStudent_FailingGradeDoesNotCount(t *testing.T) {
	f := newFixture(t)
	f.prereq("MTH201", "MTH101", 1)
	f.completed("MTH101", "FALL-2025", "F")

	res, err := f.svc.Prerequisite.CheckForStudent(f.ctx, f.studentID, f.courses["MTH201"])
	if err != nil {
		t.Fatalf("判定失败: %v", err)
	}
	if res.Satisfied {
		t.Error("不及格成绩不应满足先修")
	}
}

func TestPrerequisiteService_Errors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Prerequisite.CheckForStudent(f.ctx, f.studentID, "nope"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}

	self := f.courses["CS101"]
	_ = f.store.repository().Course.CreateDependency(f.ctx, &model.CourseDependency{
		CourseID:           self,
		DependencyCourseID: &self,
		Kind:               model.DependencyPrerequisite,
		LogicSetID:         1,
	})
	if _, err := f.svc.Prerequisite.CheckForStudent(f.ctx, f.studentID, self); !errors.Is(err, ErrSelfPrerequisite) {
		t.Errorf("期望 ErrSelfPrerequisite，实际: %v", err)
	}
}
