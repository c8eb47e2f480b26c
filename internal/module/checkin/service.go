package checkin

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrNoSchedule      = errors.New("尚未安排打卡周期")
	ErrFutureDate      = errors.New("不能为未来的日期打卡")
	ErrOutsideWindow   = errors.New("打卡日期不在打卡周期内")
	ErrRecordNotFound  = errors.New("打卡记录不存在")
	ErrStudentNotFound = errors.New("学生不存在")
	ErrInvalidStatus   = errors.New("审核状态只能是 valid 或 invalid")
)

const (
	titleFetchTimeout = 8 * time.Second
	maxTitleLen       = 255
)

// PostFetcher 打卡时补全笔记标题
type PostFetcher interface {
	FetchPost(ctx context.Context, rawURL string) (*crawler.PostInfo, error)
}

type Service struct {
	repo         *repository.Repository
	now          func() time.Time
	policy       model.Policy
	countPending bool
	posts        PostFetcher
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now())
}

type SubmitRequest struct {
	URL  string `json:"xiaohongshu_url" binding:"required"`
	Date string `json:"checkin_date"` // 为空时为今天
}

// Submit 同一天重复提交会覆盖链接并重新进入待审核
func (s *Service) Submit(ctx context.Context, studentID string, req SubmitRequest) (*model.CheckinRecord, error) {
	link, err := crawler.ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	today := s.today()
	date := today
	if req.Date != "" {
		if date, err = model.ParseDate(req.Date); err != nil {
			return nil, err
		}
	}
	if date.After(today) {
		return nil, ErrFutureDate
	}

	schedule, err := s.repo.Schedules.GetActive(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSchedule
	}
	if err != nil {
		return nil, err
	}
	if !schedule.Contains(date) {
		return nil, ErrOutsideWindow
	}

	record := &model.CheckinRecord{
		StudentID:      studentID,
		CheckinDate:    date,
		XiaohongshuURL: link,
		PostTitle:      s.postTitle(ctx, link),
		Status:         model.CheckinPending,
	}
	if err := s.repo.Checkins.Upsert(ctx, record); err != nil {
		return nil, err
	}
	log.Info("学生打卡", "student_id", studentID, "date", date, "url", link)
	return record, nil
}

// postTitle 抓取失败或只拿到占位数据时返回空标题
func (s *Service) postTitle(ctx context.Context, link string) string {
	if s.posts == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, titleFetchTimeout)
	defer cancel()
	info, err := s.posts.FetchPost(ctx, link)
	if err != nil {
		log.Warn("获取笔记标题失败", "url", link, "error", err)
		return ""
	}
	if info.Fallback {
		return ""
	}
	return truncate(info.Title, maxTitleLen)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type ListQuery struct {
	repository.PageQuery
	From   string `form:"from"`
	To     string `form:"to"`
	Status string `form:"status"`
}

func (q ListQuery) filter(studentID string) (repository.CheckinFilter, error) {
	f := repository.CheckinFilter{StudentID: studentID, Status: q.Status, Page: q.ToPage()}
	if q.From != "" {
		d, err := model.ParseDate(q.From)
		if err != nil {
			return f, err
		}
		f.From = &d
	}
	if q.To != "" {
		d, err := model.ParseDate(q.To)
		if err != nil {
			return f, err
		}
		f.To = &d
	}
	return f, nil
}

func (s *Service) ListMine(ctx context.Context, studentID string, q ListQuery) ([]model.CheckinRecord, int64, error) {
	f, err := q.filter(studentID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.Checkins.List(ctx, f)
}

// ProgressView 进度面板数据
type ProgressView struct {
	StudentID string                 `json:"student_id"`
	Schedule  *model.CheckinSchedule `json:"schedule"`
	Policy    model.Policy           `json:"policy"`
	model.Progress
}

// Progress 基于当前生效排期实时计算，不落库
func (s *Service) Progress(ctx context.Context, studentID string) (*ProgressView, error) {
	schedule, err := s.repo.Schedules.GetActive(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSchedule
	}
	if err != nil {
		return nil, err
	}

	dates, err := s.repo.Checkins.Dates(ctx, studentID, schedule.StartDate, schedule.EndDate, model.CountableStatuses(s.countPending))
	if err != nil {
		return nil, err
	}
	p, err := model.ComputeProgress(schedule.StartDate.String(), schedule.EndDate.String(), dates, s.now(), s.policy)
	if err != nil {
		return nil, err
	}
	return &ProgressView{StudentID: studentID, Schedule: schedule, Policy: s.policy, Progress: p}, nil
}

func (s *Service) AdminStudentProgress(ctx context.Context, studentID string) (*ProgressView, error) {
	if _, err := s.repo.Users.GetByStudentID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s.Progress(ctx, studentID)
}

type ReviewRequest struct {
	ID     uint   `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=255"`
}

func (s *Service) AdminReview(ctx context.Context, reviewer string, req ReviewRequest) (*model.CheckinRecord, error) {
	if !model.IsReviewStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	err := s.repo.Checkins.Review(ctx, req.ID, req.Status, reviewer, req.Note, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	log.Info("审核打卡", "reviewer", reviewer, "id", req.ID, "status", req.Status)
	return s.repo.Checkins.GetByID(ctx, req.ID)
}

// AdminListPending 待审核打卡，studentID 为空时查询全部学生
func (s *Service) AdminListPending(ctx context.Context, studentID string, page repository.Page) ([]model.CheckinRecord, int64, error) {
	return s.repo.Checkins.List(ctx, repository.CheckinFilter{
		StudentID: studentID,
		Status:    model.CheckinPending,
		Page:      page,
	})
}
