package repository

import (
	"context"
	"time"

	"cohort-checkin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, id uint) (*model.Assignment, error)
	List(ctx context.Context, activeOnly bool) ([]model.Assignment, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

type SubmissionRepository interface {
	// Upsert 以 (assignment_id, student_id) 为键覆盖提交内容
	Upsert(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id uint) (*model.Submission, error)
	Get(ctx context.Context, assignmentID uint, studentID string) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint, page Page) ([]model.Submission, int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Submission, error)
	SaveResult(ctx context.Context, id uint, status, feedback, graderModel string, gradedAt *time.Time) error
}

type assignmentRepo struct {
	db *gorm.DB
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id uint) (*model.Assignment, error) {
	var a model.Assignment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) List(ctx context.Context, activeOnly bool) ([]model.Assignment, error) {
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var list []model.Assignment
	err := db.Order("id DESC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Assignment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Assignment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type submissionRepo struct {
	db *gorm.DB
}

func (r *submissionRepo) Upsert(ctx context.Context, s *model.Submission) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"content":         s.Content,
			"attachment_urls": s.AttachmentURLs,
			"status":          s.Status,
			"feedback":        s.Feedback,
			"grader_model":    s.GraderModel,
			"graded_at":       s.GradedAt,
			"updated_at":      time.Now(),
			"deleted_at":      nil,
		}),
	}).Create(s).Error
	if err != nil {
		return err
	}
	// 冲突更新时部分驱动不回填主键
	stored, err := r.Get(ctx, s.AssignmentID, s.StudentID)
	if err != nil {
		return err
	}
	s.ID, s.CreatedAt = stored.ID, stored.CreatedAt
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id uint) (*model.Submission, error) {
	var s model.Submission
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) Get(ctx context.Context, assignmentID uint, studentID string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) ListByAssignment(ctx context.Context, assignmentID uint, page Page) ([]model.Submission, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Submission{}).Where("assignment_id = ?", assignmentID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Submission
	if err := page.apply(db).Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *submissionRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Submission, error) {
	var list []model.Submission
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("assignment_id").Find(&list).Error
	return list, err
}

func (r *submissionRepo) SaveResult(ctx context.Context, id uint, status, feedback, graderModel string, gradedAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Submission{}).Where("id = ?", id).Updates(map[string]any{
		"status":       status,
		"feedback":     feedback,
		"grader_model": graderModel,
		"graded_at":    gradedAt,
	}).Error
}
