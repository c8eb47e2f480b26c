package crawler

import (
	"time"

	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleCrawler) InitRouter(r *gin.RouterGroup) {
	crawlerGroup := r.Group("/crawler", middleware.Auth(model.RoleLevelStudent), middleware.RateLimit(30, time.Minute))
	{
		crawlerGroup.GET("/post", Post)
		crawlerGroup.GET("/profile", Profile)
	}
}
