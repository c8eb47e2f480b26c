package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlementState(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	u := &User{StudentID: "2024001"}
	assert.Equal(t, EntitlementNone, u.EntitlementState(now))
	require.ErrorIs(t, u.CheckEntitlement(now), ErrNoEntitlement)

	u.GrantSelfSchedule(now, 6, false)
	require.NotNil(t, u.SelfScheduleDeadline)
	assert.Equal(t, time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC), *u.SelfScheduleDeadline)
	assert.Equal(t, EntitlementEntitled, u.EntitlementState(now))
	require.NoError(t, u.CheckEntitlement(now))

	// 截止时间当刻即视为过期
	assert.Equal(t, EntitlementExpired, u.EntitlementState(*u.SelfScheduleDeadline))
	require.ErrorIs(t, u.CheckEntitlement(now.AddDate(1, 0, 0)), ErrEntitlementExpired)

	u.HasUsedSelfSchedule = true
	assert.Equal(t, EntitlementConsumed, u.EntitlementState(now))
	require.ErrorIs(t, u.CheckEntitlement(now), ErrEntitlementAlreadyUsed)

	// 重新授权但不重置，仍为已使用
	u.GrantSelfSchedule(now, 6, false)
	assert.Equal(t, EntitlementConsumed, u.EntitlementState(now))

	u.GrantSelfSchedule(now, 6, true)
	assert.Equal(t, EntitlementEntitled, u.EntitlementState(now))

	u.RevokeSelfSchedule()
	assert.Nil(t, u.SelfScheduleDeadline)
	assert.Equal(t, EntitlementNone, u.EntitlementState(now))
}

func TestEntitlementState_MissingDeadline(t *testing.T) {
	u := &User{CanSelfSchedule: true}
	assert.Equal(t, EntitlementExpired, u.EntitlementState(time.Now()))
}

func TestNewSchedule(t *testing.T) {
	start := NewDate(2025, 1, 1)
	s := NewSchedule("2024001", start, "admin01", ScheduleAdminSet, DefaultPolicy)
	assert.Equal(t, "2025-04-03", s.EndDate.String())
	assert.True(t, s.IsActive)
	assert.True(t, s.Contains(start))
	assert.True(t, s.Contains(NewDate(2025, 4, 3)))
	assert.False(t, s.Contains(NewDate(2025, 4, 4)))
	assert.False(t, s.Contains(NewDate(2024, 12, 31)))
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 1, 1)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-01"`, string(b))

	var got Date
	require.NoError(t, got.UnmarshalJSON([]byte(`"2025-04-03"`)))
	assert.Equal(t, 93, d.DaysUntil(got)+1)

	require.ErrorIs(t, got.UnmarshalJSON([]byte(`"2025-13-01"`)), ErrInvalidInput)

	var scanned Date
	require.NoError(t, scanned.Scan("2025-01-01T00:00:00Z"))
	assert.True(t, scanned.Equal(d))
}
