package upload

import (
	"time"

	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleUpload) InitRouter(r *gin.RouterGroup) {
	uploadGroup := r.Group("/upload", middleware.Auth(model.RoleLevelStudent), middleware.RateLimit(60, time.Minute))
	{
		uploadGroup.POST("", Upload)
		uploadGroup.POST("/presign", Presign)
	}
}
