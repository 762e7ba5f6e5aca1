package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepath/internal/model"
)

// CourseRepository 课程目录与课程依赖数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Course, error)
	CreateDependency(ctx context.Context, dep *model.CourseDependency) error
	// ListDependencies 批量获取多门课程的依赖，附带被依赖课程
	ListDependencies(ctx context.Context, courseIDs []string) ([]model.CourseDependency, error)
}

type courseRepo struct {
	db *gorm.DB
}

func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.db.WithContext(ctx).
		Where("course_id IN ?", ids).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) CreateDependency(ctx context.Context, dep *model.CourseDependency) error {
	return r.db.WithContext(ctx).Create(dep).Error
}

func (r *courseRepo) ListDependencies(ctx context.Context, courseIDs []string) ([]model.CourseDependency, error) {
	var deps []model.CourseDependency
	if len(courseIDs) == 0 {
		return deps, nil
	}
	err := r.db.WithContext(ctx).
		Preload("DependencyCourse").
		Where("course_id IN ?", courseIDs).
		Order("course_id ASC, logic_set_id ASC").
		Find(&deps).Error
	return deps, err
}
