package schedule

import (
	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleSchedule) InitRouter(r *gin.RouterGroup) {
	studentGroup := r.Group("/schedule", middleware.Auth(model.RoleLevelStudent))
	{
		studentGroup.GET("/mine", GetMySchedule)
		studentGroup.GET("/self", SelfScheduleStatus)
		studentGroup.POST("/self", SetSelfSchedule)
	}

	adminGroup := r.Group("/admin", middleware.Auth(model.RoleLevelAdmin))
	{
		adminGroup.GET("/schedules", AdminListSchedules)
		adminGroup.POST("/schedules", AdminSetSchedule)
		adminGroup.POST("/schedules/batch", AdminBatchSetSchedule)
		adminGroup.DELETE("/schedules/:id", AdminDeactivateSchedule)

		adminGroup.POST("/self-schedule/grant", GrantSelfSchedule)
		adminGroup.POST("/self-schedule/batch-grant", BatchGrantSelfSchedule)
		adminGroup.POST("/self-schedule/revoke", RevokeSelfSchedule)
		adminGroup.GET("/self-schedule/:student_id", AdminSelfScheduleStatus)
	}
}
