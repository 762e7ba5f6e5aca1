package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"coursepath/internal/dto"
	"coursepath/internal/model"
	"coursepath/internal/repository"
	"coursepath/pkg/database"
	pkgerrors "coursepath/pkg/errors"
)

// ── 真实事务：变更后计算先修状态失败时整体回滚 ──

type txFixture struct {
	ctx       context.Context
	repo      *repository.Repository
	svc       *Service
	studentID string
	draftID   string
}

func newTxFixture(t *testing.T) *txFixture {
	t.Helper()
	db, err := database.OpenSQLiteMemory(t.Name())
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}

	f := &txFixture{ctx: context.Background(), repo: repository.NewRepository(db)}
	f.svc = NewService(testConfig(), f.repo, nil, zap.NewNop())

	student := &model.User{Name: "张三", Email: "zs@example.edu", Role: model.RoleStudent}
	if err := f.repo.User.Create(f.ctx, student); err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	f.studentID = student.UserID
	if err := f.repo.User.SaveProfile(f.ctx, &model.StudentProfile{StudentID: f.studentID}); err != nil {
		t.Fatalf("创建档案失败: %v", err)
	}
	draft, err := f.svc.Plan.CreateDraft(f.ctx, f.studentID, &dto.CreateDraftRequest{Name: "主计划"})
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}
	f.draftID = draft.ID
	return f
}

func (f *txFixture) course(t *testing.T, code string) string {
	t.Helper()
	c := &model.Course{Code: code, Title: code, Credits: 3, IsActive: true}
	if err := f.repo.Course.Create(f.ctx, c); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	return c.CourseID
}

// selfDependency 直接写入一条以自身为先修的脏数据
func (f *txFixture) selfDependency(t *testing.T, courseID string) {
	t.Helper()
	dep := courseID
	if err := f.repo.Course.CreateDependency(f.ctx, &model.CourseDependency{
		CourseID:           courseID,
		DependencyCourseID: &dep,
		Kind:               model.DependencyPrerequisite,
		LogicSetID:         1,
	}); err != nil {
		t.Fatalf("写入依赖失败: %v", err)
	}
}

func (f *txFixture) semesterOf(t *testing.T, courseID string) (int, bool) {
	t.Helper()
	entries, err := f.repo.Entry.ListByDraft(f.ctx, f.draftID)
	if err != nil {
		t.Fatalf("查询条目失败: %v", err)
	}
	for _, e := range entries {
		if e.CourseID == courseID {
			return e.SemesterNumber, true
		}
	}
	return 0, false
}

func TestAddCourse_RollsBackWhenPrereqLookupFails(t *testing.T) {
	f := newTxFixture(t)
	one := f.course(t, "ONE")
	f.selfDependency(t, one)

	_, err := f.svc.Plan.AddCourse(f.ctx, f.studentID, "", addReq(one, 1))
	if pkgerrors.KindOf(err) != pkgerrors.KindIntegrity {
		t.Fatalf("期望数据完整性错误，得到: %v", err)
	}
	if _, ok := f.semesterOf(t, one); ok {
		t.Error("失败的添加不应留下计划条目")
	}
}

func TestMoveCourse_RollsBackWhenPrereqLookupFails(t *testing.T) {
	f := newTxFixture(t)
	one := f.course(t, "ONE")
	resp, err := f.svc.Plan.AddCourse(f.ctx, f.studentID, "", addReq(one, 1))
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if !resp.PrereqsMet {
		t.Error("无依赖课程应视为先修满足")
	}

	f.selfDependency(t, one)
	_, err = f.svc.Plan.MoveCourse(f.ctx, f.studentID, "", one, &dto.MoveCourseRequest{SemesterNumber: 2})
	if pkgerrors.KindOf(err) != pkgerrors.KindIntegrity {
		t.Fatalf("期望数据完整性错误，得到: %v", err)
	}
	if n, _ := f.semesterOf(t, one); n != 1 {
		t.Errorf("失败的移动不应改变学期，实际学期 %d", n)
	}
}
