package model

import (
	"fmt"
	"math"
	"time"
)

const (
	StatusNotStarted  = "not_started"
	StatusActive      = "active"
	StatusQualified   = "qualified"
	StatusUnqualified = "unqualified"
)

// Policy 打卡周期规则
type Policy struct {
	WindowDays int `json:"window_days"`
	PassDays   int `json:"pass_days"`
}

var DefaultPolicy = Policy{WindowDays: 93, PassDays: 90}

// NewPolicy 任一参数非正数时整体回退到默认规则
func NewPolicy(windowDays, passDays int) Policy {
	if windowDays <= 0 || passDays <= 0 {
		return DefaultPolicy
	}
	return Policy{WindowDays: windowDays, PassDays: passDays}
}

// EndDate 周期结束日（含），start + WindowDays - 1
func (p Policy) EndDate(start Date) Date {
	return start.AddDays(p.WindowDays - 1)
}

// BuildWindow 根据开始日期计算结束日期
func (p Policy) BuildWindow(start string) (string, error) {
	s, err := ParseDate(start)
	if err != nil {
		return "", err
	}
	return p.EndDate(s).String(), nil
}

type Progress struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TotalDays     int    `json:"total_days"`
	CheckedDays   int    `json:"checked_days"`
	CheckinRate   int    `json:"checkin_rate"`
	CurrentStreak int    `json:"current_streak"`
	MaxStreak     int    `json:"max_streak"`
	Status        string `json:"status"`
	RemainingDays int    `json:"remaining_days"`
	DaysNeeded    int    `json:"days_needed"`
	TodayChecked  bool   `json:"today_checked"`
}

// ComputeProgress 根据周期与打卡日期计算进度，today 需已换算到项目时区
func ComputeProgress(start, end string, dates []string, today time.Time, policy Policy) (Progress, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Progress{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Progress{}, err
	}
	if e.Before(s) {
		return Progress{}, fmt.Errorf("%w: 结束日期 %s 早于开始日期 %s", ErrInvalidInput, end, start)
	}

	checked := make(map[Date]struct{}, len(dates))
	for _, raw := range dates {
		d, err := ParseDate(raw)
		if err != nil {
			return Progress{}, err
		}
		if d.Before(s) || d.After(e) {
			continue
		}
		checked[d] = struct{}{}
	}

	now := DateOf(today)
	p := Progress{
		StartDate:   s.String(),
		EndDate:     e.String(),
		TotalDays:   s.DaysUntil(e) + 1,
		CheckedDays: len(checked),
	}
	p.CheckinRate = int(math.Round(float64(p.CheckedDays) / float64(p.TotalDays) * 100))
	p.DaysNeeded = max(0, policy.PassDays-p.CheckedDays)
	_, p.TodayChecked = checked[now]

	switch {
	case now.Before(s):
		p.Status = StatusNotStarted
		p.RemainingDays = p.TotalDays
		return p, nil
	case now.After(e):
		if p.CheckedDays >= policy.PassDays && p.TotalDays >= policy.PassDays {
			p.Status = StatusQualified
		} else {
			p.Status = StatusUnqualified
		}
	default:
		p.Status = StatusActive
		p.RemainingDays = now.DaysUntil(e) + 1
	}

	anchor := now
	if anchor.After(e) {
		anchor = e
	}
	p.MaxStreak = maxStreak(checked, s, anchor)

	if _, ok := checked[anchor]; !ok && anchor.Equal(now) {
		// 当天还没打卡时从昨天起算，不打断连续天数
		anchor = anchor.AddDays(-1)
	}
	p.CurrentStreak = streakEndingAt(checked, s, anchor)
	return p, nil
}

func maxStreak(checked map[Date]struct{}, from, to Date) int {
	best, run := 0, 0
	for d := from; !d.After(to); d = d.AddDays(1) {
		if _, ok := checked[d]; ok {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}
	return best
}

func streakEndingAt(checked map[Date]struct{}, from, at Date) int {
	n := 0
	for d := at; !d.Before(from); d = d.AddDays(-1) {
		if _, ok := checked[d]; !ok {
			break
		}
		n++
	}
	return n
}
