// Package repotest 内存版 Repository，供各模块的 service 测试使用
package repotest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"

	"gorm.io/gorm"
)

type Store struct {
	mu          sync.Mutex
	nextID      uint
	users       map[string]*model.User
	schedules   []*model.CheckinSchedule
	checkins    []*model.CheckinRecord
	assignments map[uint]*model.Assignment
	submissions []*model.Submission
}

// New 返回共享同一份数据的 Repository 与底层 Store
func New() (*repository.Repository, *Store) {
	s := &Store{
		users:       map[string]*model.User{},
		assignments: map[uint]*model.Assignment{},
	}
	return &repository.Repository{
		Users:       users{s},
		Schedules:   schedules{s},
		Checkins:    checkins{s},
		Assignments: assignments{s},
		Submissions: submissions{s},
	}, s
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// AddUser 直接写入用户，返回存储中的指针便于断言
func (s *Store) AddUser(u model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	u.ID = s.id()
	s.users[u.StudentID] = &u
	return &u
}

func (s *Store) User(studentID string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[studentID]
}

func (s *Store) Schedules(studentID string) []model.CheckinSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CheckinSchedule
	for _, sc := range s.schedules {
		if sc.StudentID == studentID {
			out = append(out, *sc)
		}
	}
	return out
}

func (s *Store) Checkins() []model.CheckinRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CheckinRecord, len(s.checkins))
	for i, c := range s.checkins {
		out[i] = *c
	}
	return out
}

func paginate[T any](list []T, p repository.Page) []T {
	if p.Limit <= 0 {
		return list
	}
	if p.Offset >= len(list) {
		return nil
	}
	return list[p.Offset:min(len(list), p.Offset+p.Limit)]
}

func inRange(id, from, to string) bool {
	return len(id) == len(from) && id >= from && id <= to
}

type users struct{ s *Store }

func (r users) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r users) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.StudentID]; ok {
		return gorm.ErrDuplicatedKey
	}
	user.ID = r.s.id()
	cp := *user
	r.s.users[user.StudentID] = &cp
	return nil
}

func (r users) Update(_ context.Context, studentID string, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[studentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "password":
			u.Password = v.(string)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "role":
			u.Role = v.(string)
		case "persona":
			u.Persona = v.(string)
		case "keywords":
			u.Keywords = v.(string)
		case "vision":
			u.Vision = v.(string)
		case "xiaohongshu_profile_url":
			u.XiaohongshuProfileURL = v.(string)
		case "can_self_schedule":
			u.CanSelfSchedule = v.(bool)
		case "has_used_self_schedule":
			u.HasUsedSelfSchedule = v.(bool)
		case "self_schedule_deadline":
			switch d := v.(type) {
			case time.Time:
				u.SelfScheduleDeadline = &d
			case *time.Time:
				u.SelfScheduleDeadline = d
			default:
				u.SelfScheduleDeadline = nil
			}
		default:
			panic("repotest: 未支持的用户字段 " + k)
		}
	}
	return nil
}

func (r users) List(_ context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, u := range r.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Keyword != "" && !strings.Contains(u.StudentID, f.Keyword) && !strings.Contains(u.Name, f.Keyword) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (r users) ListByStudentIDs(_ context.Context, ids []string) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r users) ListStudentsInRange(_ context.Context, from, to string) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, u := range r.s.users {
		if u.Role == model.RoleStudent && inRange(u.StudentID, from, to) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (r users) GrantRange(_ context.Context, from, to string, deadline time.Time, resetUsed bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role != model.RoleStudent || !inRange(u.StudentID, from, to) {
			continue
		}
		d := deadline
		u.CanSelfSchedule, u.SelfScheduleDeadline = true, &d
		if resetUsed {
			u.HasUsedSelfSchedule = false
		}
		n++
	}
	return n, nil
}

func (r users) ConsumeSelfSchedule(_ context.Context, studentID string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[studentID]
	if !ok || !u.CanSelfSchedule || u.HasUsedSelfSchedule || u.SelfScheduleDeadline == nil || !u.SelfScheduleDeadline.After(now) {
		return false, nil
	}
	u.HasUsedSelfSchedule = true
	return true, nil
}

type schedules struct{ s *Store }

func (r schedules) GetActive(_ context.Context, studentID string) (*model.CheckinSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.schedules) - 1; i >= 0; i-- {
		sc := r.s.schedules[i]
		if sc.StudentID == studentID && sc.IsActive {
			cp := *sc
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r schedules) ListActive(_ context.Context) ([]model.CheckinSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CheckinSchedule
	for _, sc := range r.s.schedules {
		if sc.IsActive {
			out = append(out, *sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (r schedules) List(_ context.Context, f repository.ScheduleFilter) ([]model.CheckinSchedule, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CheckinSchedule
	for i := len(r.s.schedules) - 1; i >= 0; i-- {
		sc := r.s.schedules[i]
		if (f.StudentID == "" || sc.StudentID == f.StudentID) && (!f.ActiveOnly || sc.IsActive) {
			out = append(out, *sc)
		}
	}
	return paginate(out, f.Page), int64(len(out)), nil
}

// Create 模拟部分唯一索引：已有生效排期时报唯一键冲突
func (r schedules) Create(_ context.Context, schedule *model.CheckinSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if schedule.IsActive {
		for _, sc := range r.s.schedules {
			if sc.StudentID == schedule.StudentID && sc.IsActive {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	schedule.ID = r.s.id()
	cp := *schedule
	r.s.schedules = append(r.s.schedules, &cp)
	return nil
}

func (r schedules) DeactivateActive(_ context.Context, studentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sc := range r.s.schedules {
		if sc.StudentID == studentID {
			sc.IsActive = false
		}
	}
	return nil
}

func (r schedules) Deactivate(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sc := range r.s.schedules {
		if sc.ID == id && sc.IsActive {
			sc.IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type checkins struct{ s *Store }

func (r checkins) Upsert(_ context.Context, record *model.CheckinRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.checkins {
		if c.StudentID == record.StudentID && c.CheckinDate.Equal(record.CheckinDate) {
			c.XiaohongshuURL, c.PostTitle = record.XiaohongshuURL, record.PostTitle
			c.Status, c.ReviewedBy, c.ReviewedAt, c.ReviewNote = model.CheckinPending, "", nil, ""
			*record = *c
			return nil
		}
	}
	record.ID = r.s.id()
	if record.Status == "" {
		record.Status = model.CheckinPending
	}
	cp := *record
	r.s.checkins = append(r.s.checkins, &cp)
	return nil
}

func (r checkins) GetByID(_ context.Context, id uint) (*model.CheckinRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.checkins {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r checkins) GetByDate(_ context.Context, studentID string, date model.Date) (*model.CheckinRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.checkins {
		if c.StudentID == studentID && c.CheckinDate.Equal(date) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r checkins) Review(_ context.Context, id uint, status, reviewer, note string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.checkins {
		if c.ID == id {
			c.Status, c.ReviewedBy, c.ReviewNote, c.ReviewedAt = status, reviewer, note, &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r checkins) List(_ context.Context, f repository.CheckinFilter) ([]model.CheckinRecord, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CheckinRecord
	for _, c := range r.s.checkins {
		if f.StudentID != "" && c.StudentID != f.StudentID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.From != nil && c.CheckinDate.Before(*f.From) {
			continue
		}
		if f.To != nil && c.CheckinDate.After(*f.To) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckinDate.After(out[j].CheckinDate) })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (r checkins) Dates(_ context.Context, studentID string, from, to model.Date, statuses []string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, c := range r.s.checkins {
		if c.StudentID == studentID && !c.CheckinDate.Before(from) && !c.CheckinDate.After(to) && slices.Contains(statuses, c.Status) {
			out = append(out, c.CheckinDate.String())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r checkins) DatesByStudents(_ context.Context, ids []string, statuses []string) (map[string][]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string][]string{}
	for _, c := range r.s.checkins {
		if slices.Contains(ids, c.StudentID) && slices.Contains(statuses, c.Status) {
			out[c.StudentID] = append(out[c.StudentID], c.CheckinDate.String())
		}
	}
	return out, nil
}

type assignments struct{ s *Store }

func (r assignments) Create(_ context.Context, a *model.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	cp := *a
	r.s.assignments[a.ID] = &cp
	return nil
}

func (r assignments) GetByID(_ context.Context, id uint) (*model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r assignments) List(_ context.Context, activeOnly bool) ([]model.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Assignment
	for _, a := range r.s.assignments {
		if !activeOnly || a.IsActive {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r assignments) Update(_ context.Context, id uint, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			a.Title = v.(string)
		case "description":
			a.Description = v.(string)
		case "is_active":
			a.IsActive = v.(bool)
		case "due_date":
			a.DueDate, _ = v.(*model.Date)
		default:
			panic("repotest: 未支持的作业字段 " + k)
		}
	}
	return nil
}

func (r assignments) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.assignments, id)
	return nil
}

type submissions struct{ s *Store }

func (r submissions) Upsert(_ context.Context, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
			sub.ID, sub.CreatedAt = existing.ID, existing.CreatedAt
			*existing = *sub
			return nil
		}
	}
	sub.ID = r.s.id()
	cp := *sub
	r.s.submissions = append(r.s.submissions, &cp)
	return nil
}

func (r submissions) GetByID(_ context.Context, id uint) (*model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.submissions {
		if sub.ID == id {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r submissions) Get(_ context.Context, assignmentID uint, studentID string) (*model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r submissions) ListByAssignment(_ context.Context, assignmentID uint, p repository.Page) ([]model.Submission, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Submission
	for _, sub := range r.s.submissions {
		if sub.AssignmentID == assignmentID {
			out = append(out, *sub)
		}
	}
	return paginate(out, p), int64(len(out)), nil
}

func (r submissions) ListByStudent(_ context.Context, studentID string) ([]model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Submission
	for _, sub := range r.s.submissions {
		if sub.StudentID == studentID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r submissions) SaveResult(_ context.Context, id uint, status, feedback, graderModel string, gradedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.submissions {
		if sub.ID == id {
			sub.Status, sub.Feedback, sub.GraderModel, sub.GradedAt = status, feedback, graderModel, gradedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
