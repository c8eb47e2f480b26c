package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SubmissionPending       = "pending"
	SubmissionGrading       = "grading"
	SubmissionPassed        = "passed"
	SubmissionFailed        = "failed"
	SubmissionGradingFailed = "grading_failed"
)

type Assignment struct {
	Model
	Title       string `gorm:"type:varchar(128);not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	DueDate     *Date  `gorm:"type:date" json:"due_date"`
	CreatedBy   string `gorm:"type:varchar(32);not null" json:"created_by"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

// Submission 学生作业提交，同一作业每个学生仅保留最新一份
type Submission struct {
	Model
	AssignmentID   uint                        `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID      string                      `gorm:"type:varchar(32);not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Content        string                      `gorm:"type:text" json:"content"`
	AttachmentURLs datatypes.JSONSlice[string] `gorm:"column:attachment_urls;type:json" json:"attachment_urls"`
	Status         string                      `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Feedback       string                      `gorm:"type:text" json:"feedback"`
	GraderModel    string                      `gorm:"type:varchar(64);not null;default:''" json:"grader_model"`
	GradedAt       *time.Time                  `json:"graded_at"`
}

func IsGradeResult(s string) bool {
	return s == SubmissionPassed || s == SubmissionFailed
}
