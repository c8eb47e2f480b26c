package httpclient

import (
	"time"

	"cohort-checkin/internal/global/sentry/tracing"

	"github.com/go-resty/resty/v2"
)

// New 外部服务客户端，不做重试，超时由调用方按服务配置
func New(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "cohort-checkin/1.0")
	if tracing.IsEnabled() {
		tracing.SetupResty(c)
	}
	return c
}
