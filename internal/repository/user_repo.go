package repository

import (
	"context"
	"time"

	"cohort-checkin/internal/model"

	"gorm.io/gorm"
)

type UserFilter struct {
	Role    string
	Keyword string // 学号或姓名模糊匹配
	Page
}

type UserRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, studentID string, fields map[string]any) error
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	ListByStudentIDs(ctx context.Context, studentIDs []string) ([]model.User, error)
	// ListStudentsInRange 学号等长且在 [from, to] 内的学生
	ListStudentsInRange(ctx context.Context, from, to string) ([]model.User, error)
	GrantRange(ctx context.Context, from, to string, deadline time.Time, resetUsed bool) (int64, error)
	// ConsumeSelfSchedule 条件更新，返回 false 表示权限不满足
	ConsumeSelfSchedule(ctx context.Context, studentID string, now time.Time) (bool, error)
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) Update(ctx context.Context, studentID string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("student_id = ?", studentID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		db = db.Where("student_id LIKE ? OR name LIKE ?", kw, kw)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.User
	if err := filter.apply(db).Order("student_id").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) ListByStudentIDs(ctx context.Context, studentIDs []string) ([]model.User, error) {
	var users []model.User
	if len(studentIDs) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("student_id IN ?", studentIDs).Find(&users).Error
	return users, err
}

func (r *userRepo) inRange(ctx context.Context, from, to string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", model.RoleStudent).
		Where("LENGTH(student_id) = ? AND student_id BETWEEN ? AND ?", len(from), from, to)
}

func (r *userRepo) ListStudentsInRange(ctx context.Context, from, to string) ([]model.User, error) {
	var users []model.User
	err := r.inRange(ctx, from, to).Order("student_id").Find(&users).Error
	return users, err
}

func (r *userRepo) GrantRange(ctx context.Context, from, to string, deadline time.Time, resetUsed bool) (int64, error) {
	fields := map[string]any{
		"can_self_schedule":      true,
		"self_schedule_deadline": deadline,
	}
	if resetUsed {
		fields["has_used_self_schedule"] = false
	}
	res := r.inRange(ctx, from, to).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *userRepo) ConsumeSelfSchedule(ctx context.Context, studentID string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("student_id = ? AND can_self_schedule = ? AND has_used_self_schedule = ? AND self_schedule_deadline > ?",
			studentID, true, false, now).
		Update("has_used_self_schedule", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
