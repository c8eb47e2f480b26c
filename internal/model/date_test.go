package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 92, NewDate(2025, 1, 1).DaysUntil(NewDate(2025, 4, 3)))
	assert.Equal(t, -92, NewDate(2025, 4, 3).DaysUntil(NewDate(2025, 1, 1)))
	assert.Equal(t, 29, NewDate(2024, 2, 1).DaysUntil(NewDate(2024, 3, 1)))

	// 超出 time.Duration 可表示的跨度
	first, err := ParseDate("0001-01-01")
	require.NoError(t, err)
	last, err := ParseDate("9999-12-31")
	require.NoError(t, err)
	assert.Equal(t, 3652058, first.DaysUntil(last))

	p, err := ComputeProgress("0001-01-01", "9999-12-31", nil, day("2025-01-01"), DefaultPolicy)
	require.NoError(t, err)
	assert.Equal(t, 3652059, p.TotalDays)
}

func TestDaysUntilIgnoresLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	a := Date{time.Date(2025, 1, 1, 0, 0, 0, 0, shanghai)}
	assert.Equal(t, 1, a.DaysUntil(NewDate(2025, 1, 2)))
}

func TestNewPolicy(t *testing.T) {
	assert.Equal(t, Policy{WindowDays: 30, PassDays: 28}, NewPolicy(30, 28))
	assert.Equal(t, DefaultPolicy, NewPolicy(93, 0))
	assert.Equal(t, DefaultPolicy, NewPolicy(0, 90))
}
