package repository

import (
	"context"
	"time"

	"cohort-checkin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckinFilter struct {
	StudentID string
	Status    string
	From      *model.Date
	To        *model.Date
	Page
}

type CheckinRepository interface {
	// Upsert 同一学生同一天只保留一条，重复提交会覆盖链接并重置为待审核
	Upsert(ctx context.Context, record *model.CheckinRecord) error
	GetByID(ctx context.Context, id uint) (*model.CheckinRecord, error)
	GetByDate(ctx context.Context, studentID string, date model.Date) (*model.CheckinRecord, error)
	Review(ctx context.Context, id uint, status, reviewer, note string, at time.Time) error
	List(ctx context.Context, filter CheckinFilter) ([]model.CheckinRecord, int64, error)
	// Dates 返回 [from, to] 内状态属于 statuses 的打卡日期
	Dates(ctx context.Context, studentID string, from, to model.Date, statuses []string) ([]string, error)
	DatesByStudents(ctx context.Context, studentIDs []string, statuses []string) (map[string][]string, error)
}

type checkinRepo struct {
	db *gorm.DB
}

func (r *checkinRepo) Upsert(ctx context.Context, record *model.CheckinRecord) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "checkin_date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"xiaohongshu_url": record.XiaohongshuURL,
			"post_title":      record.PostTitle,
			"status":          model.CheckinPending,
			"reviewed_by":     "",
			"reviewed_at":     nil,
			"review_note":     "",
			"updated_at":      time.Now(),
			"deleted_at":      nil,
		}),
	}).Create(record).Error
	if err != nil {
		return err
	}
	stored, err := r.GetByDate(ctx, record.StudentID, record.CheckinDate)
	if err != nil {
		return err
	}
	*record = *stored
	return nil
}

func (r *checkinRepo) GetByID(ctx context.Context, id uint) (*model.CheckinRecord, error) {
	var rec model.CheckinRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *checkinRepo) GetByDate(ctx context.Context, studentID string, date model.Date) (*model.CheckinRecord, error) {
	var rec model.CheckinRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND checkin_date = ?", studentID, date).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *checkinRepo) Review(ctx context.Context, id uint, status, reviewer, note string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.CheckinRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":      status,
		"reviewed_by": reviewer,
		"reviewed_at": at,
		"review_note": note,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *checkinRepo) List(ctx context.Context, filter CheckinFilter) ([]model.CheckinRecord, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.CheckinRecord{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("checkin_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("checkin_date <= ?", *filter.To)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.CheckinRecord
	if err := filter.apply(db).Order("checkin_date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *checkinRepo) Dates(ctx context.Context, studentID string, from, to model.Date, statuses []string) ([]string, error) {
	var dates []model.Date
	err := r.db.WithContext(ctx).Model(&model.CheckinRecord{}).
		Where("student_id = ? AND checkin_date BETWEEN ? AND ? AND status IN ?", studentID, from, to, statuses).
		Order("checkin_date").
		Pluck("checkin_date", &dates).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out, nil
}

func (r *checkinRepo) DatesByStudents(ctx context.Context, studentIDs []string, statuses []string) (map[string][]string, error) {
	out := make(map[string][]string, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		StudentID   string
		CheckinDate model.Date
	}
	err := r.db.WithContext(ctx).Model(&model.CheckinRecord{}).
		Select("student_id, checkin_date").
		Where("student_id IN ? AND status IN ?", studentIDs, statuses).
		Order("student_id, checkin_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.StudentID] = append(out[row.StudentID], row.CheckinDate.String())
	}
	return out, nil
}
