package middleware

import (
	"bytes"
	"log/slog"
	"time"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// maxLoggedBody 日志中保留的响应体上限
const maxLoggedBody = 4 * 1024

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		w.body.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

// Logger 记录每个请求，只有 JSON 错误响应会带上响应体
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if payload, ok := jwt.GetUserPayload(c); ok {
			attrs = append(attrs, "student_id", payload.StudentID)
		}
		if v, ok := c.Get(response.ErrorContextKey); ok {
			attrs = append(attrs, "error", v, "response_body", rec.body.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("HTTP Request", attrs...)
		case c.Writer.Status() >= 400:
			log.Warn("HTTP Request", attrs...)
		default:
			log.Info("HTTP Request", attrs...)
		}
	}
}

// SentryEnrichIP 放在 sentry 中间件之后，为后续事件带上客户端 IP
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				ip := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: ip})
				scope.SetTag("client_ip", ip)
			})
		}
		c.Next()
	}
}
