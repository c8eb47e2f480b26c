package tracing

import (
	"context"
	"net/url"

	"cohort-checkin/config"

	"github.com/getsentry/sentry-go"
	"github.com/go-resty/resty/v2"
)

type restySpanKey struct{}

// SetupResty 为外部 HTTP 调用（AI 批改、爬虫）创建 span 并透传 sentry-trace
func SetupResty(client *resty.Client) {
	if !config.Get().Sentry.Tracing.TraceHTTPCalls {
		return
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		target := sanitizeURL(req.URL)
		span := StartSpan(req.Context(), "http.client", req.Method+" "+target)
		if span == nil {
			return nil
		}
		span.SetData("http.request.method", req.Method)
		span.SetData("url.full", target)
		req.SetHeader("sentry-trace", span.ToSentryTrace())
		if baggage := span.ToBaggage(); baggage != "" {
			req.SetHeader("baggage", baggage)
		}
		req.SetContext(context.WithValue(span.Context(), restySpanKey{}, span))
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		span, _ := resp.Request.Context().Value(restySpanKey{}).(*sentry.Span)
		if span == nil {
			return nil
		}
		span.SetData("http.response.status_code", resp.StatusCode())
		if resp.StatusCode() >= 400 {
			span.Status = sentry.HTTPtoSpanStatus(resp.StatusCode())
		} else {
			span.Status = sentry.SpanStatusOK
		}
		span.Finish()
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		if req == nil {
			return
		}
		if span, _ := req.Context().Value(restySpanKey{}).(*sentry.Span); span != nil {
			span.Status = sentry.SpanStatusInternalError
			span.SetData("http.error", err.Error())
			span.Finish()
		}
	})
}

// sanitizeURL 去掉查询参数，爬虫地址里可能带 token
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Scheme + "://" + u.Host + u.Path
}
