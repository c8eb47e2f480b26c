// Package tracing 为 gorm、go-redis、resty 接入 Sentry 性能追踪
package tracing

import (
	"context"
	"time"

	"cohort-checkin/config"

	"github.com/getsentry/sentry-go"
)

func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// StartSpan 在 ctx 当前 span 下创建子 span，没有父 span 时返回 nil
func StartSpan(ctx context.Context, operation, description string) *sentry.Span {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return nil
	}
	span := parent.StartChild(operation)
	span.Description = description
	return span
}

// finish 低于慢阈值的 span 不采样
func finish(span *sentry.Span, elapsed, slowThreshold time.Duration, err error) {
	if span == nil {
		return
	}
	if slowThreshold > 0 && elapsed < slowThreshold {
		span.Sampled = sentry.SampledFalse
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
