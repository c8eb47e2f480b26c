package tracing

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"cohort-checkin/config"

	"github.com/redis/go-redis/v9"
)

// RedisHook 实现 redis.Hook，命令参数不记录
type RedisHook struct {
	slowThreshold time.Duration
}

func NewRedisHook() *RedisHook {
	return &RedisHook{slowThreshold: millis(config.Get().Sentry.Tracing.RedisSlowThresholdMs)}
}

func (h *RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		span := StartSpan(ctx, "db.redis", strings.ToUpper(cmd.Name()))
		if span != nil {
			span.SetData("db.system", "redis")
			ctx = span.Context()
		}
		err := next(ctx, cmd)
		spanErr := err
		if errors.Is(err, redis.Nil) {
			spanErr = nil
		}
		finish(span, time.Since(start), h.slowThreshold, spanErr)
		return err
	}
}

func (h *RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		span := StartSpan(ctx, "db.redis.pipeline", pipelineDescription(cmds))
		if span != nil {
			span.SetData("db.system", "redis")
			span.SetData("redis.pipeline_length", len(cmds))
			ctx = span.Context()
		}
		err := next(ctx, cmds)
		finish(span, time.Since(start), h.slowThreshold, err)
		return err
	}
}

// pipelineDescription 最多列出三个命令名
func pipelineDescription(cmds []redis.Cmder) string {
	names := make([]string, 0, 3)
	for i, cmd := range cmds {
		if i == 3 {
			names = append(names, "...")
			break
		}
		names = append(names, strings.ToUpper(cmd.Name()))
	}
	return "PIPELINE: " + strings.Join(names, ", ")
}
