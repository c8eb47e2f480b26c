package model

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// 角色等级，middleware.Auth 按等级放行
const (
	RoleLevelStudent = 0
	RoleLevelAdmin   = 1
)

type User struct {
	Model
	StudentID             string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"student_id"`
	Name                  string     `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Password              string     `gorm:"type:varchar(255);not null;default:''" json:"-"` // 历史明文密码，登录成功后迁移为哈希
	PasswordHash          string     `gorm:"type:varchar(255);not null;default:''" json:"-"`
	Role                  string     `gorm:"type:varchar(16);not null;default:'student'" json:"role"`
	Persona               string     `gorm:"type:text" json:"persona"`
	Keywords              string     `gorm:"type:text" json:"keywords"`
	Vision                string     `gorm:"type:text" json:"vision"`
	XiaohongshuProfileURL string     `gorm:"column:xiaohongshu_profile_url;type:varchar(512)" json:"xiaohongshu_profile_url"`
	CanSelfSchedule       bool       `gorm:"not null;default:false" json:"can_self_schedule"`
	SelfScheduleDeadline  *time.Time `json:"self_schedule_deadline"`
	HasUsedSelfSchedule   bool       `gorm:"not null;default:false" json:"has_used_self_schedule"`
}

func RoleLevel(role string) int {
	if role == RoleAdmin {
		return RoleLevelAdmin
	}
	return RoleLevelStudent
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
