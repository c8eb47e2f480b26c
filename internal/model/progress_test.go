package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}

// consecutive 从 start 开始连续 n 天
func consecutive(start string, n int) []string {
	s, _ := ParseDate(start)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.AddDays(i).String())
	}
	return out
}

func TestBuildWindow(t *testing.T) {
	end, err := DefaultPolicy.BuildWindow("2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-03", end)

	end, err = DefaultPolicy.BuildWindow("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-03", end)

	_, err = DefaultPolicy.BuildWindow("2025/01/01")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeProgress_Qualified(t *testing.T) {
	p, err := ComputeProgress("2025-01-01", "2025-04-03", consecutive("2025-01-01", 90), day("2025-05-01"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 93, p.TotalDays)
	assert.Equal(t, 90, p.CheckedDays)
	assert.Equal(t, 97, p.CheckinRate)
	assert.Equal(t, StatusQualified, p.Status)
	assert.Equal(t, 90, p.MaxStreak)
	assert.Equal(t, 0, p.CurrentStreak)
	assert.Equal(t, 0, p.DaysNeeded)
	assert.Equal(t, 0, p.RemainingDays)
}

func TestComputeProgress_Unqualified(t *testing.T) {
	p, err := ComputeProgress("2025-01-01", "2025-04-03", consecutive("2025-01-01", 89), day("2025-05-01"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 89, p.CheckedDays)
	assert.Equal(t, 96, p.CheckinRate)
	assert.Equal(t, StatusUnqualified, p.Status)
	assert.Equal(t, 1, p.DaysNeeded)
}

func TestComputeProgress_ShortWindowNeverQualifies(t *testing.T) {
	p, err := ComputeProgress("2025-01-01", "2025-01-10", consecutive("2025-01-01", 10), day("2025-02-01"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 100, p.CheckinRate)
	assert.Equal(t, StatusUnqualified, p.Status)
}

func TestComputeProgress_NotStarted(t *testing.T) {
	p, err := ComputeProgress("2025-01-01", "2025-04-03", nil, day("2024-12-31"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, p.Status)
	assert.Equal(t, 0, p.CurrentStreak)
	assert.Equal(t, 0, p.MaxStreak)
	assert.Equal(t, 93, p.RemainingDays)
	assert.Equal(t, 90, p.DaysNeeded)
}

func TestComputeProgress_ActiveStreaks(t *testing.T) {
	dates := []string{
		"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04",
		"2025-01-06", "2025-01-07",
	}

	t.Run("今天已打卡", func(t *testing.T) {
		p, err := ComputeProgress("2025-01-01", "2025-04-03", dates, day("2025-01-07"), DefaultPolicy)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, p.Status)
		assert.True(t, p.TodayChecked)
		assert.Equal(t, 2, p.CurrentStreak)
		assert.Equal(t, 4, p.MaxStreak)
		assert.Equal(t, 87, p.RemainingDays)
	})

	t.Run("今天未打卡从昨天起算", func(t *testing.T) {
		p, err := ComputeProgress("2025-01-01", "2025-04-03", dates, day("2025-01-08"), DefaultPolicy)
		require.NoError(t, err)
		assert.False(t, p.TodayChecked)
		assert.Equal(t, 2, p.CurrentStreak)
	})

	t.Run("昨天也未打卡", func(t *testing.T) {
		p, err := ComputeProgress("2025-01-01", "2025-04-03", dates, day("2025-01-09"), DefaultPolicy)
		require.NoError(t, err)
		assert.Equal(t, 0, p.CurrentStreak)
		assert.Equal(t, 4, p.MaxStreak)
	})

	t.Run("开始当天未打卡", func(t *testing.T) {
		p, err := ComputeProgress("2025-01-01", "2025-04-03", nil, day("2025-01-01"), DefaultPolicy)
		require.NoError(t, err)
		assert.Equal(t, 0, p.CurrentStreak)
	})
}

func TestComputeProgress_FutureDatesIgnoredForStreak(t *testing.T) {
	dates := []string{"2025-01-01", "2025-01-02", "2025-01-10", "2025-01-11", "2025-01-12"}
	p, err := ComputeProgress("2025-01-01", "2025-04-03", dates, day("2025-01-02"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 5, p.CheckedDays)
	assert.Equal(t, 2, p.MaxStreak)
	assert.Equal(t, 2, p.CurrentStreak)
}

func TestComputeProgress_EndedStreakAnchorsAtEnd(t *testing.T) {
	p, err := ComputeProgress("2025-01-01", "2025-04-03", consecutive("2025-03-29", 6), day("2025-06-01"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 6, p.CurrentStreak)
	assert.Equal(t, 6, p.MaxStreak)
}

func TestComputeProgress_DedupAndOutOfWindow(t *testing.T) {
	dates := []string{"2024-12-31", "2025-01-01", "2025-01-01", "2025-01-02", "2025-04-04"}
	p, err := ComputeProgress("2025-01-01", "2025-04-03", dates, day("2025-01-02"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CheckedDays)
	assert.Equal(t, 2, p.CurrentStreak)
}

func TestComputeProgress_InvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		dates      []string
	}{
		{"缺少开始日期", "", "2025-04-03", nil},
		{"结束日期格式错误", "2025-01-01", "04/04/2025", nil},
		{"结束早于开始", "2025-04-03", "2025-01-01", nil},
		{"打卡日期格式错误", "2025-01-01", "2025-04-03", []string{"2025-1-2x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeProgress(tc.start, tc.end, tc.dates, day("2025-01-02"), DefaultPolicy)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestComputeProgress_RateRounding(t *testing.T) {
	// 2/3 = 66.67 -> 67
	p, err := ComputeProgress("2025-01-01", "2025-01-03", []string{"2025-01-01", "2025-01-02"}, day("2025-01-02"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 67, p.CheckinRate)

	// 1/8 = 12.5 -> 13
	p, err = ComputeProgress("2025-01-01", "2025-01-08", []string{"2025-01-01"}, day("2025-01-02"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 13, p.CheckinRate)
}
