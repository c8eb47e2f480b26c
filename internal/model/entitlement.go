package model

import "time"

type EntitlementState string

const (
	EntitlementNone     EntitlementState = "no_entitlement"
	EntitlementEntitled EntitlementState = "entitled"
	EntitlementConsumed EntitlementState = "consumed"
	EntitlementExpired  EntitlementState = "expired"
)

// EntitlementState 自主排期权限状态，过期状态只在读取时推导，不落库
func (u *User) EntitlementState(now time.Time) EntitlementState {
	switch {
	case u.HasUsedSelfSchedule:
		return EntitlementConsumed
	case !u.CanSelfSchedule:
		return EntitlementNone
	case u.SelfScheduleDeadline == nil || !now.Before(*u.SelfScheduleDeadline):
		return EntitlementExpired
	default:
		return EntitlementEntitled
	}
}

// CheckEntitlement 返回不能自主排期的原因，可以排期时返回 nil
func (u *User) CheckEntitlement(now time.Time) error {
	switch u.EntitlementState(now) {
	case EntitlementEntitled:
		return nil
	case EntitlementConsumed:
		return ErrEntitlementAlreadyUsed
	case EntitlementExpired:
		return ErrEntitlementExpired
	default:
		return ErrNoEntitlement
	}
}

// GrantDeadline 授权截止时间
func GrantDeadline(now time.Time, months int) time.Time {
	return now.AddDate(0, months, 0)
}

// GrantSelfSchedule 授予自主排期权限，resetUsed 时允许再次使用
func (u *User) GrantSelfSchedule(now time.Time, months int, resetUsed bool) {
	deadline := GrantDeadline(now, months)
	u.CanSelfSchedule = true
	u.SelfScheduleDeadline = &deadline
	if resetUsed {
		u.HasUsedSelfSchedule = false
	}
}

func (u *User) RevokeSelfSchedule() {
	u.CanSelfSchedule = false
	u.SelfScheduleDeadline = nil
}
