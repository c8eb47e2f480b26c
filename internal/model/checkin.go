package model

import "time"

const (
	CheckinPending = "pending"
	CheckinValid   = "valid"
	CheckinInvalid = "invalid"
)

// CheckinRecord 每日打卡记录，(student_id, checkin_date) 唯一
type CheckinRecord struct {
	Model
	StudentID      string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_student_checkin_date" json:"student_id"`
	CheckinDate    Date       `gorm:"type:date;not null;uniqueIndex:idx_student_checkin_date" json:"checkin_date"`
	XiaohongshuURL string     `gorm:"column:xiaohongshu_url;type:varchar(1024);not null" json:"xiaohongshu_url"`
	PostTitle      string     `gorm:"type:varchar(255);not null;default:''" json:"post_title"`
	Status         string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ReviewedBy     string     `gorm:"type:varchar(32);not null;default:''" json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ReviewNote     string     `gorm:"type:varchar(255);not null;default:''" json:"review_note"`
}

// CountableStatuses 计入进度的打卡状态
func CountableStatuses(countPending bool) []string {
	if countPending {
		return []string{CheckinValid, CheckinPending}
	}
	return []string{CheckinValid}
}

func IsReviewStatus(s string) bool {
	return s == CheckinValid || s == CheckinInvalid
}
