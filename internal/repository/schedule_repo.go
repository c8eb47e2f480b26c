package repository

import (
	"context"

	"cohort-checkin/internal/model"

	"gorm.io/gorm"
)

type ScheduleFilter struct {
	StudentID  string
	ActiveOnly bool
	Page
}

type ScheduleRepository interface {
	GetActive(ctx context.Context, studentID string) (*model.CheckinSchedule, error)
	ListActive(ctx context.Context) ([]model.CheckinSchedule, error)
	List(ctx context.Context, filter ScheduleFilter) ([]model.CheckinSchedule, int64, error)
	Create(ctx context.Context, schedule *model.CheckinSchedule) error
	// DeactivateActive 关闭学生当前生效的排期，没有时不报错
	DeactivateActive(ctx context.Context, studentID string) error
	Deactivate(ctx context.Context, id uint) error
}

type scheduleRepo struct {
	db *gorm.DB
}

func (r *scheduleRepo) GetActive(ctx context.Context, studentID string) (*model.CheckinSchedule, error) {
	var s model.CheckinSchedule
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Order("id DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepo) ListActive(ctx context.Context) ([]model.CheckinSchedule, error) {
	var list []model.CheckinSchedule
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("student_id").Find(&list).Error
	return list, err
}

func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]model.CheckinSchedule, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.CheckinSchedule{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.CheckinSchedule
	if err := filter.apply(db).Order("id DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.CheckinSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) DeactivateActive(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).Model(&model.CheckinSchedule{}).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Update("is_active", false).Error
}

func (r *scheduleRepo) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.CheckinSchedule{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
