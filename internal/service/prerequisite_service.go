package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepath/internal/domain/prereq"
	"coursepath/internal/dto"
	"coursepath/internal/model"
	"coursepath/internal/repository"
)

// PrerequisiteService 先修判定业务接口
type PrerequisiteService interface {
	// Resolve 按调用方给定的已修课程集合判定
	Resolve(ctx context.Context, req *dto.ResolvePrerequisitesRequest) (*dto.PrerequisiteResponse, error)
	// CheckForStudent 按学生成绩单判定
	CheckForStudent(ctx context.Context, studentID, courseID string) (*dto.PrerequisiteResponse, error)
}

type prerequisiteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPrerequisiteService 创建 PrerequisiteService 实例
func NewPrerequisiteService(repo *repository.Repository, logger *zap.Logger) PrerequisiteService {
	return &prerequisiteService{repo: repo, logger: logger}
}

func (s *prerequisiteService) Resolve(ctx context.Context, req *dto.ResolvePrerequisitesRequest) (*dto.PrerequisiteResponse, error) {
	completed := make(map[string]bool, len(req.CompletedCourseIDs))
	for _, id := range req.CompletedCourseIDs {
		completed[id] = true
	}
	return s.resolve(ctx, req.CourseID, completed)
}

func (s *prerequisiteService) CheckForStudent(ctx context.Context, studentID, courseID string) (*dto.PrerequisiteResponse, error) {
	records, err := s.repo.Transcript.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询成绩单失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return s.resolve(ctx, courseID, completedSet(records))
}

func (s *prerequisiteService) resolve(ctx context.Context, courseID string, completed map[string]bool) (*dto.PrerequisiteResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	deps, err := loadDependencies(ctx, s.repo, []string{courseID})
	if err != nil {
		if !errors.Is(err, ErrSelfPrerequisite) {
			s.logger.Error("查询课程依赖失败", zap.String("course_id", courseID), zap.Error(err))
		}
		return nil, err
	}

	res := prereq.Resolve(deps[courseID], completed)
	return toPrerequisiteResponse(course, res), nil
}

func toPrerequisiteResponse(c *model.Course, res prereq.Result) *dto.PrerequisiteResponse {
	return &dto.PrerequisiteResponse{
		CourseID:  c.CourseID,
		Code:      c.Code,
		Satisfied: res.Satisfied,
		Missing:   res.Missing,
	}
}
