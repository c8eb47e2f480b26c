package model

const (
	ScheduleAdminSet = "admin_set"
	ScheduleSelfSet  = "self_set"
)

// CheckinSchedule 学生的打卡周期，每个学生同一时间只有一条 is_active 记录
type CheckinSchedule struct {
	Model
	StudentID    string `gorm:"type:varchar(32);not null;index" json:"student_id"`
	StartDate    Date   `gorm:"type:date;not null" json:"start_date"`
	EndDate      Date   `gorm:"type:date;not null" json:"end_date"`
	CreatedBy    string `gorm:"type:varchar(32);not null" json:"created_by"`
	ScheduleType string `gorm:"type:varchar(16);not null" json:"schedule_type"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
}

// NewSchedule 按周期规则从开始日期生成排期
func NewSchedule(studentID string, start Date, createdBy, scheduleType string, policy Policy) CheckinSchedule {
	return CheckinSchedule{
		StudentID:    studentID,
		StartDate:    start,
		EndDate:      policy.EndDate(start),
		CreatedBy:    createdBy,
		ScheduleType: scheduleType,
		IsActive:     true,
	}
}

// Contains 判断日期是否落在周期内（含首尾）
func (s *CheckinSchedule) Contains(d Date) bool {
	return !d.Before(s.StartDate) && !d.After(s.EndDate)
}
