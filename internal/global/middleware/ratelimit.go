package middleware

import (
	"time"

	"cohort-checkin/internal/global/redis"
	"cohort-checkin/internal/global/response"

	"github.com/gin-gonic/gin"
)

// RateLimit 按 IP + 路由限流，Redis 不可用时放行
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := redis.Allow(c.Request.Context(), redis.Client, c.ClientIP()+":"+c.FullPath(), limit, window)
		if err != nil {
			log.Warn("限流计数失败", "error", err)
			c.Next()
			return
		}
		if !ok {
			response.Fail(c, response.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
