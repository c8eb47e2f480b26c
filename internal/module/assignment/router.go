package assignment

import (
	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleAssignment) InitRouter(r *gin.RouterGroup) {
	studentGroup := r.Group("", middleware.Auth(model.RoleLevelStudent))
	{
		studentGroup.GET("/assignments", ListAssignments)
		studentGroup.GET("/assignments/:id", GetAssignment)
		studentGroup.POST("/assignments/:id/submit", Submit)
		studentGroup.GET("/submissions/mine", MySubmissions)
	}

	adminGroup := r.Group("/admin", middleware.Auth(model.RoleLevelAdmin))
	{
		adminGroup.GET("/assignments", AdminListAssignments)
		adminGroup.POST("/assignments", CreateAssignment)
		adminGroup.PUT("/assignments/:id", UpdateAssignment)
		adminGroup.DELETE("/assignments/:id", DeleteAssignment)
		adminGroup.GET("/assignments/:id/submissions", ListSubmissions)
		adminGroup.POST("/submissions/:id/regrade", Regrade)
	}
}
