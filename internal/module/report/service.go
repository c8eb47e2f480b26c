package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"reflect"
	"time"

	"cohort-checkin/internal/global/pdf"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
	"cohort-checkin/tools"

	"gorm.io/gorm"
)

var (
	ErrStudentNotFound = errors.New("学生不存在")
	ErrNoSchedule      = errors.New("尚未安排打卡周期")
	ErrPDFUnavailable  = errors.New("承诺书模板不可用")
	ErrFormat          = errors.New("导出格式只支持 xlsx、csv、json")
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

type LetterRenderer interface {
	Render(l pdf.Letter) ([]byte, error)
}

type Service struct {
	repo         *repository.Repository
	now          func() time.Time
	policy       model.Policy
	countPending bool
	letters      LetterRenderer
}

// StudentRow 导出的一行，excel 标签为表头
type StudentRow struct {
	StudentID     string `json:"student_id" excel:"学号"`
	Name          string `json:"name" excel:"姓名"`
	ScheduleType  string `json:"schedule_type" excel:"排期方式"`
	StartDate     string `json:"start_date" excel:"开始日期"`
	EndDate       string `json:"end_date" excel:"结束日期"`
	CheckedDays   int    `json:"checked_days" excel:"已打卡天数"`
	TotalDays     int    `json:"total_days" excel:"周期天数"`
	CheckinRate   int    `json:"checkin_rate" excel:"打卡率(%)"`
	CurrentStreak int    `json:"current_streak" excel:"当前连续天数"`
	MaxStreak     int    `json:"max_streak" excel:"最长连续天数"`
	Status        string `json:"status" excel:"状态"`
}

// Rows 每个有生效排期的学生一行，按学号排序
func (s *Service) Rows(ctx context.Context) ([]StudentRow, error) {
	schedules, err := s.repo.Schedules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(schedules))
	for i, sc := range schedules {
		ids[i] = sc.StudentID
	}

	users, err := s.repo.Users.ListByStudentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.StudentID] = u.Name
	}

	dates, err := s.repo.Checkins.DatesByStudents(ctx, ids, model.CountableStatuses(s.countPending))
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]StudentRow, 0, len(schedules))
	for _, sc := range schedules {
		p, err := model.ComputeProgress(sc.StartDate.String(), sc.EndDate.String(), dates[sc.StudentID], now, s.policy)
		if err != nil {
			log.Warn("计算进度失败", "student_id", sc.StudentID, "error", err)
			continue
		}
		rows = append(rows, StudentRow{
			StudentID:     sc.StudentID,
			Name:          names[sc.StudentID],
			ScheduleType:  sc.ScheduleType,
			StartDate:     p.StartDate,
			EndDate:       p.EndDate,
			CheckedDays:   p.CheckedDays,
			TotalDays:     p.TotalDays,
			CheckinRate:   p.CheckinRate,
			CurrentStreak: p.CurrentStreak,
			MaxStreak:     p.MaxStreak,
			Status:        p.Status,
		})
	}
	return rows, nil
}

type Overview struct {
	Students    int64          `json:"students"`
	Scheduled   int            `json:"scheduled"`
	Unscheduled int64          `json:"unscheduled"`
	Counts      map[string]int `json:"counts"`
	Policy      model.Policy   `json:"policy"`
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	_, students, err := s.repo.Users.List(ctx, repository.UserFilter{Role: model.RoleStudent, Page: repository.Page{Limit: 1}})
	if err != nil {
		return nil, err
	}

	o := &Overview{
		Students:  students,
		Scheduled: len(rows),
		Counts: map[string]int{
			model.StatusNotStarted:  0,
			model.StatusActive:      0,
			model.StatusQualified:   0,
			model.StatusUnqualified: 0,
		},
		Policy: s.policy,
	}
	for _, r := range rows {
		o.Counts[r.Status]++
	}
	o.Unscheduled = max(students-int64(len(rows)), 0)
	return o, nil
}

// Export 返回文件内容、Content-Type 与文件名
func (s *Service) Export(ctx context.Context, format string) ([]byte, string, string, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, "", "", ErrFormat
	}
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, "", "", err
	}
	name := fmt.Sprintf("打卡统计_%s.%s", s.now().Format("20060102"), format)

	if format == FormatCSV {
		data, err := rowsToCSV(rows)
		return data, tools.CSVContentType, name, err
	}
	data, err := tools.ExcelBytes("打卡统计", rows)
	return data, tools.ExcelContentType, name, err
}

// rowsToCSV 带 UTF-8 BOM，Excel 直接打开不乱码
func rowsToCSV(rows []StudentRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)

	t := reflect.TypeOf(StudentRow{})
	if err := w.Write(tools.ExcelHeaders(t)); err != nil {
		return nil, err
	}
	for _, r := range rows {
		cells := tools.ExcelRow(reflect.ValueOf(r), t)
		record := make([]string, len(cells))
		for i, v := range cells {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Certificate 按当前生效排期生成承诺书
func (s *Service) Certificate(ctx context.Context, studentID string) ([]byte, string, error) {
	if s.letters == nil {
		return nil, "", ErrPDFUnavailable
	}
	u, err := s.repo.Users.GetByStudentID(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrStudentNotFound
	}
	if err != nil {
		return nil, "", err
	}
	sc, err := s.repo.Schedules.GetActive(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrNoSchedule
	}
	if err != nil {
		return nil, "", err
	}

	data, err := s.letters.Render(pdf.Letter{
		Name:       u.Name,
		StudentID:  u.StudentID,
		StartDate:  sc.StartDate.String(),
		EndDate:    sc.EndDate.String(),
		WindowDays: s.policy.WindowDays,
		PassDays:   s.policy.PassDays,
		IssuedAt:   model.DateOf(s.now()).String(),
	})
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("承诺书_%s.pdf", u.StudentID), nil
}

// Diagnostics 排查学生数据用，包含原始字段与推导结果
type Diagnostics struct {
	User          *model.User             `json:"user"`
	RawFlags      map[string]any          `json:"raw_flags"`
	Entitlement   model.EntitlementState  `json:"entitlement"`
	Schedules     []model.CheckinSchedule `json:"schedules"`
	Checkins      []model.CheckinRecord   `json:"checkins"`
	Progress      *model.Progress         `json:"progress"`
	ProgressError string                  `json:"progress_error,omitempty"`
	ServerTime    time.Time               `json:"server_time"`
	Today         string                  `json:"today"`
}

func (s *Service) Diagnostics(ctx context.Context, studentID string) (*Diagnostics, error) {
	u, err := s.repo.Users.GetByStudentID(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	d := &Diagnostics{
		User: u,
		RawFlags: map[string]any{
			"can_self_schedule":      u.CanSelfSchedule,
			"self_schedule_deadline": u.SelfScheduleDeadline,
			"has_used_self_schedule": u.HasUsedSelfSchedule,
			"has_password_hash":      u.PasswordHash != "",
			"has_legacy_password":    u.Password != "",
		},
		Entitlement: u.EntitlementState(now),
		ServerTime:  now,
		Today:       model.DateOf(now).String(),
	}

	if d.Schedules, _, err = s.repo.Schedules.List(ctx, repository.ScheduleFilter{StudentID: studentID}); err != nil {
		return nil, err
	}
	if d.Checkins, _, err = s.repo.Checkins.List(ctx, repository.CheckinFilter{StudentID: studentID}); err != nil {
		return nil, err
	}

	for _, sc := range d.Schedules {
		if sc.IsActive {
			if err := s.diagnoseProgress(ctx, d, sc); err != nil {
				return nil, err
			}
			break
		}
	}
	return d, nil
}

// diagnoseProgress 进度计算失败时记录原因而不是报错
func (s *Service) diagnoseProgress(ctx context.Context, d *Diagnostics, sc model.CheckinSchedule) error {
	dates, err := s.repo.Checkins.Dates(ctx, sc.StudentID, sc.StartDate, sc.EndDate, model.CountableStatuses(s.countPending))
	if err != nil {
		return err
	}
	p, err := model.ComputeProgress(sc.StartDate.String(), sc.EndDate.String(), dates, d.ServerTime, s.policy)
	if err != nil {
		d.ProgressError = err.Error()
		return nil
	}
	d.Progress = &p
	return nil
}
