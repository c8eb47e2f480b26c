package schedule

import (
	"context"
	"errors"
	"strings"
	"time"

	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrScheduleNotFound = errors.New("排期不存在或已停用")
	ErrNoSchedule       = errors.New("尚未安排打卡周期")
	ErrInvalidRange     = errors.New("学号范围不合法，起止学号需等长且起始不大于结束")
	ErrEmptyRange       = errors.New("学号范围内没有学生")
	ErrStartInPast      = errors.New("自主排期的开始日期不能早于今天")
)

type Service struct {
	repo   *repository.Repository
	now    func() time.Time
	policy model.Policy
	months int
}

func NewService(repo *repository.Repository, now func() time.Time, policy model.Policy, months int) *Service {
	policy = model.NewPolicy(policy.WindowDays, policy.PassDays)
	if months <= 0 {
		months = 6
	}
	return &Service{repo: repo, now: now, policy: policy, months: months}
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now())
}

// replace 停用旧排期并写入新排期，调用方负责开启事务
func (s *Service) replace(ctx context.Context, tx *repository.Repository, studentID string, start model.Date, createdBy, scheduleType string) (*model.CheckinSchedule, error) {
	if err := tx.Schedules.DeactivateActive(ctx, studentID); err != nil {
		return nil, err
	}
	schedule := model.NewSchedule(studentID, start, createdBy, scheduleType, s.policy)
	if err := tx.Schedules.Create(ctx, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *Service) AdminSetSchedule(ctx context.Context, admin, studentID, startDate string) (*model.CheckinSchedule, error) {
	start, err := model.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.student(ctx, studentID); err != nil {
		return nil, err
	}

	var schedule *model.CheckinSchedule
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		schedule, err = s.replace(ctx, tx, studentID, start, admin, model.ScheduleAdminSet)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("管理员设置排期", "admin", admin, "student_id", studentID, "start", schedule.StartDate, "end", schedule.EndDate)
	return schedule, nil
}

type BatchResult struct {
	Count      int      `json:"count"`
	StudentIDs []string `json:"student_ids"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
}

// AdminBatchSetSchedule 为学号范围内的所有学生设置同一周期，整体在一个事务中完成
func (s *Service) AdminBatchSetSchedule(ctx context.Context, admin, from, to, startDate string) (*BatchResult, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	start, err := model.ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Users.ListStudentsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrEmptyRange
	}

	result := &BatchResult{StartDate: start.String(), EndDate: s.policy.EndDate(start).String()}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, u := range students {
			if _, err := s.replace(ctx, tx, u.StudentID, start, admin, model.ScheduleAdminSet); err != nil {
				return err
			}
			result.StudentIDs = append(result.StudentIDs, u.StudentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Count = len(result.StudentIDs)
	log.Info("管理员批量设置排期", "admin", admin, "from", from, "to", to, "count", result.Count)
	return result, nil
}

func (s *Service) GetMySchedule(ctx context.Context, studentID string) (*model.CheckinSchedule, error) {
	schedule, err := s.repo.Schedules.GetActive(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSchedule
	}
	return schedule, err
}

func (s *Service) AdminListSchedules(ctx context.Context, filter repository.ScheduleFilter) ([]model.CheckinSchedule, int64, error) {
	return s.repo.Schedules.List(ctx, filter)
}

func (s *Service) AdminDeactivateSchedule(ctx context.Context, id uint) error {
	err := s.repo.Schedules.Deactivate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrScheduleNotFound
	}
	return err
}

// EntitlementView 自主排期权限及当前排期
type EntitlementView struct {
	StudentID       string                 `json:"student_id"`
	State           model.EntitlementState `json:"state"`
	CanSelfSchedule bool                   `json:"can_self_schedule"`
	HasUsed         bool                   `json:"has_used_self_schedule"`
	Deadline        *time.Time             `json:"self_schedule_deadline"`
	Schedule        *model.CheckinSchedule `json:"schedule"`
}

func (s *Service) view(ctx context.Context, u *model.User) (*EntitlementView, error) {
	v := &EntitlementView{
		StudentID:       u.StudentID,
		State:           u.EntitlementState(s.now()),
		CanSelfSchedule: u.CanSelfSchedule,
		HasUsed:         u.HasUsedSelfSchedule,
		Deadline:        u.SelfScheduleDeadline,
	}
	schedule, err := s.repo.Schedules.GetActive(ctx, u.StudentID)
	switch {
	case err == nil:
		v.Schedule = schedule
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return v, nil
}

// GrantSelfSchedule 授权有效期从当前时间起算；不重置时已使用过的学生仍为已使用
func (s *Service) GrantSelfSchedule(ctx context.Context, studentID string, resetUsed bool) (*EntitlementView, error) {
	u, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	u.GrantSelfSchedule(s.now(), s.months, resetUsed)

	fields := map[string]any{
		"can_self_schedule":      u.CanSelfSchedule,
		"self_schedule_deadline": *u.SelfScheduleDeadline,
	}
	if resetUsed {
		fields["has_used_self_schedule"] = false
	}
	if err := s.repo.Users.Update(ctx, studentID, fields); err != nil {
		return nil, err
	}
	return s.view(ctx, u)
}

func (s *Service) BatchGrantSelfSchedule(ctx context.Context, from, to string, resetUsed bool) (int64, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return 0, err
	}
	return s.repo.Users.GrantRange(ctx, from, to, model.GrantDeadline(s.now(), s.months), resetUsed)
}

func (s *Service) RevokeSelfSchedule(ctx context.Context, studentID string) (*EntitlementView, error) {
	u, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	u.RevokeSelfSchedule()
	err = s.repo.Users.Update(ctx, studentID, map[string]any{
		"can_self_schedule":      false,
		"self_schedule_deadline": nil,
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, u)
}

func (s *Service) SelfScheduleStatus(ctx context.Context, studentID string) (*EntitlementView, error) {
	u, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, u)
}

// SetSelfSchedule 消耗自主排期权限并写入 self_set 排期
// 权限消耗是带条件的 UPDATE，并发请求只有一个能成功
func (s *Service) SetSelfSchedule(ctx context.Context, studentID, startDate string) (*model.CheckinSchedule, error) {
	start, err := model.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	if start.Before(s.today()) {
		return nil, ErrStartInPast
	}

	now := s.now()
	var schedule *model.CheckinSchedule
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		consumed, err := tx.Users.ConsumeSelfSchedule(ctx, studentID, now)
		if err != nil {
			return err
		}
		if !consumed {
			u, err := tx.Users.GetByStudentID(ctx, studentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			if err != nil {
				return err
			}
			if err := u.CheckEntitlement(now); err != nil {
				return err
			}
			// 条件更新未命中但重新读取时仍可用，按已使用处理
			return model.ErrEntitlementAlreadyUsed
		}
		schedule, err = s.replace(ctx, tx, studentID, start, studentID, model.ScheduleSelfSet)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("学生自主排期", "student_id", studentID, "start", schedule.StartDate, "end", schedule.EndDate)
	return schedule, nil
}

func (s *Service) student(ctx context.Context, studentID string) (*model.User, error) {
	u, err := s.repo.Users.GetByStudentID(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	return u, err
}

// normalizeRange 学号等长时字典序与数值序一致
func normalizeRange(from, to string) (string, string, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" || len(from) != len(to) || from > to {
		return "", "", ErrInvalidRange
	}
	return from, to, nil
}
