package model

import "errors"

var (
	// ErrInvalidInput 日期缺失或格式错误
	ErrInvalidInput = errors.New("invalid input")

	ErrNoEntitlement          = errors.New("没有自主排期权限")
	ErrEntitlementAlreadyUsed = errors.New("自主排期权限已使用")
	ErrEntitlementExpired     = errors.New("自主排期权限已过期")
)
