package checkin

import (
	"time"

	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleCheckin) InitRouter(r *gin.RouterGroup) {
	checkinGroup := r.Group("/checkin", middleware.Auth(model.RoleLevelStudent))
	{
		checkinGroup.POST("", middleware.RateLimit(30, time.Minute), Submit)
		checkinGroup.GET("/mine", ListMine)
		checkinGroup.GET("/progress", GetProgress)
	}

	adminGroup := r.Group("/admin/checkin", middleware.Auth(model.RoleLevelAdmin))
	{
		adminGroup.POST("/review", AdminReview)
		adminGroup.GET("/pending", AdminListPending)
		adminGroup.GET("/progress/:student_id", AdminStudentProgress)
	}
}
