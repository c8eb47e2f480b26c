package user

import (
	"time"

	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user")

	userGroup.POST("/login", middleware.RateLimit(10, time.Minute), Login)
	userGroup.POST("/register", middleware.RateLimit(5, time.Minute), Register)

	commonGroup := userGroup.Group("", middleware.Auth(model.RoleLevelStudent))
	{
		commonGroup.POST("/logout", Logout)
		commonGroup.GET("/profile", GetProfile)
		commonGroup.PUT("/profile", UpdateProfile)
		commonGroup.PUT("/password", ChangePassword)
	}

	adminGroup := r.Group("/admin/users", middleware.Auth(model.RoleLevelAdmin))
	{
		adminGroup.GET("", ListUsers)
		adminGroup.POST("", CreateUser)
		adminGroup.PUT("/:student_id/password", ResetPassword)
	}
}
