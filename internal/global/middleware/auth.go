package middleware

import (
	"strings"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/redis"
	"cohort-checkin/internal/global/response"

	"github.com/gin-gonic/gin"
)

// Auth 校验 Bearer token 并要求角色等级不低于 minRoleID
// 页面请求没有 Authorization 头时也接受名为 token 的 cookie
func Auth(minRoleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Fail(c, response.ErrUnauthorized)
			return
		}

		payload, err := jwt.ParseToken(token)
		if err != nil {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		revoked, err := redis.IsBlacklisted(c.Request.Context(), redis.Client, payload.Id)
		if err != nil {
			log.Warn("token 黑名单查询失败", "error", err)
		}
		if revoked {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		if payload.RoleID < minRoleID {
			response.Fail(c, response.ErrForbidden)
			return
		}

		c.Set(jwt.PayloadKey, payload)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}
