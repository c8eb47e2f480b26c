package assignment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"cohort-checkin/internal/global/grader"
	"cohort-checkin/internal/global/storage"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound = errors.New("作业不存在")
	ErrAssignmentClosed   = errors.New("作业已关闭提交")
	ErrSubmissionNotFound = errors.New("作业提交不存在")
	ErrEmptySubmission    = errors.New("提交内容和附件不能同时为空")
	ErrTooManyFiles       = fmt.Errorf("附件最多 %d 个", maxAttachments)
	ErrFileTooLarge       = fmt.Errorf("单个附件不能超过 %d MB", maxAttachmentSize>>20)
	ErrFileType           = errors.New("附件仅支持图片或 PDF")
)

const (
	maxAttachments    = 9
	maxAttachmentSize = 10 << 20
	maxFeedbackLen    = 1000
)

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".pdf": true,
}

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type Grader interface {
	Grade(ctx context.Context, req grader.Request) (*grader.Result, error)
}

type Service struct {
	repo   *repository.Repository
	now    func() time.Time
	files  Uploader
	grader Grader
}

type AssignmentRequest struct {
	Title       string `json:"title" binding:"required,max=128"`
	Description string `json:"description" binding:"required"`
	DueDate     string `json:"due_date"`
}

func (s *Service) CreateAssignment(ctx context.Context, admin string, req AssignmentRequest) (*model.Assignment, error) {
	a := &model.Assignment{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedBy:   admin,
		IsActive:    true,
	}
	if req.DueDate != "" {
		d, err := model.ParseDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		a.DueDate = &d
	}
	if err := s.repo.Assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	log.Info("创建作业", "admin", admin, "id", a.ID, "title", a.Title)
	return a, nil
}

// AssignmentUpdate 只更新非空字段，due_date 传空字符串表示清除截止日期
type AssignmentUpdate struct {
	Title       *string `json:"title" binding:"omitempty,max=128"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Service) UpdateAssignment(ctx context.Context, id uint, req AssignmentUpdate) (*model.Assignment, error) {
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.DueDate != nil {
		var due *model.Date
		if *req.DueDate != "" {
			d, err := model.ParseDate(*req.DueDate)
			if err != nil {
				return nil, err
			}
			due = &d
		}
		fields["due_date"] = due
	}
	if len(fields) > 0 {
		if err := s.repo.Assignments.Update(ctx, id, fields); err != nil {
			return nil, notFound(err, ErrAssignmentNotFound)
		}
	}
	return s.GetAssignment(ctx, id)
}

func (s *Service) DeleteAssignment(ctx context.Context, id uint) error {
	return notFound(s.repo.Assignments.Delete(ctx, id), ErrAssignmentNotFound)
}

func (s *Service) GetAssignment(ctx context.Context, id uint) (*model.Assignment, error) {
	a, err := s.repo.Assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	return a, nil
}

func (s *Service) ListAssignments(ctx context.Context, activeOnly bool) ([]model.Assignment, error) {
	return s.repo.Assignments.List(ctx, activeOnly)
}

// Attachment 待上传的附件
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func checkAttachments(files []Attachment) error {
	if len(files) > maxAttachments {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if f.Size > maxAttachmentSize {
			return ErrFileTooLarge
		}
		if !allowedExt[strings.ToLower(path.Ext(f.Filename))] {
			return ErrFileType
		}
	}
	return nil
}

// Submit 上传附件、覆盖旧提交后同步调用 AI 批改
// 批改失败不影响提交本身，记录为 grading_failed 等待管理员重新批改
func (s *Service) Submit(ctx context.Context, studentID string, assignmentID uint, content string, files []Attachment) (*model.Submission, error) {
	a, err := s.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, ErrAssignmentClosed
	}
	content = strings.TrimSpace(content)
	if content == "" && len(files) == 0 {
		return nil, ErrEmptySubmission
	}
	if err := checkAttachments(files); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(files))
	if len(files) > 0 && s.files == nil {
		return nil, storage.ErrNotConfigured
	}
	for _, f := range files {
		u, err := s.files.Upload(ctx, f.Filename, f.ContentType, f.Body)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	sub := &model.Submission{
		AssignmentID:   assignmentID,
		StudentID:      studentID,
		Content:        content,
		AttachmentURLs: urls,
		Status:         model.SubmissionGrading,
	}
	if err := s.repo.Submissions.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	log.Info("提交作业", "student_id", studentID, "assignment_id", assignmentID, "attachments", len(urls))

	if err := s.grade(ctx, a, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Regrade 重新批改已有提交
func (s *Service) Regrade(ctx context.Context, submissionID uint) (*model.Submission, error) {
	sub, err := s.repo.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	a, err := s.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Submissions.SaveResult(ctx, sub.ID, model.SubmissionGrading, "", "", nil); err != nil {
		return nil, err
	}
	if err := s.grade(ctx, a, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// grade 写回批改结果，只有写库失败才返回错误
func (s *Service) grade(ctx context.Context, a *model.Assignment, sub *model.Submission) error {
	// 批改不随请求取消，超时由 grader 的 HTTP 客户端控制
	gctx := context.WithoutCancel(ctx)
	res, err := s.grader.Grade(gctx, grader.Request{
		Title:          a.Title,
		Description:    a.Description,
		Content:        describeContent(sub),
		AttachmentURLs: imageURLs(sub.AttachmentURLs),
	})

	if err != nil {
		log.Warn("AI 批改失败", "submission_id", sub.ID, "error", err)
		sub.Status = model.SubmissionGradingFailed
		sub.Feedback = truncate("AI 批改失败："+err.Error(), maxFeedbackLen)
		sub.GraderModel, sub.GradedAt = "", nil
	} else {
		at := s.now()
		sub.Status = res.Status
		sub.Feedback = truncate(res.Feedback, maxFeedbackLen)
		sub.GraderModel, sub.GradedAt = res.Model, &at
	}
	return s.repo.Submissions.SaveResult(gctx, sub.ID, sub.Status, sub.Feedback, sub.GraderModel, sub.GradedAt)
}

// describeContent 非图片附件以链接形式附在文本后
func describeContent(sub *model.Submission) string {
	var b strings.Builder
	b.WriteString(sub.Content)
	for _, u := range sub.AttachmentURLs {
		if !isImage(u) {
			fmt.Fprintf(&b, "\n附件：%s", u)
		}
	}
	return b.String()
}

func imageURLs(urls []string) []string {
	var out []string
	for _, u := range urls {
		if isImage(u) {
			out = append(out, u)
		}
	}
	return out
}

func isImage(u string) bool {
	return allowedExt[strings.ToLower(path.Ext(u))] && !strings.EqualFold(path.Ext(u), ".pdf")
}

func (s *Service) ListSubmissions(ctx context.Context, assignmentID uint, page repository.Page) ([]model.Submission, int64, error) {
	if _, err := s.GetAssignment(ctx, assignmentID); err != nil {
		return nil, 0, err
	}
	return s.repo.Submissions.ListByAssignment(ctx, assignmentID, page)
}

func (s *Service) MySubmissions(ctx context.Context, studentID string) ([]model.Submission, error) {
	return s.repo.Submissions.ListByStudent(ctx, studentID)
}

func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
