package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepath/internal/model"
)

// UserRepository 用户、学生档案与培养方案分配的数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	SaveProfile(ctx context.Context, profile *model.StudentProfile) error
	GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error)
	AssignProgram(ctx context.Context, a *model.StudentProgramAssignment) error
	ListAssignments(ctx context.Context, studentID string) ([]model.StudentProgramAssignment, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) SaveProfile(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *userRepo) GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Advisor").
		Where("student_id = ?", studentID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepo) AssignProgram(ctx context.Context, a *model.StudentProgramAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *userRepo) ListAssignments(ctx context.Context, studentID string) ([]model.StudentProgramAssignment, error) {
	var list []model.StudentProgramAssignment
	err := r.db.WithContext(ctx).
		Preload("Program").
		Where("student_id = ?", studentID).
		Order("is_primary DESC, created_at ASC").
		Find(&list).Error
	return list, err
}
