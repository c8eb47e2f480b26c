package report

import (
	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleReport) InitRouter(r *gin.RouterGroup) {
	r.GET("/report/certificate", middleware.Auth(model.RoleLevelStudent), MyCertificate)

	adminGroup := r.Group("/admin/report", middleware.Auth(model.RoleLevelAdmin))
	{
		adminGroup.GET("/overview", GetOverview)
		adminGroup.GET("/export", Export)
		adminGroup.GET("/certificate/:student_id", StudentCertificate)
		adminGroup.GET("/diagnostics/:student_id", Diagnose)
	}
}
