package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/sentry/tracing"

	goredis "github.com/redis/go-redis/v9"
)

// Client 为 nil 时限流与 token 黑名单均降级关闭
var Client *goredis.Client

func Init() {
	cfg := config.Get().Redis
	log := logger.New("Redis")

	c := goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		log.Warn("Redis 不可用，限流与登出黑名单已关闭", "addr", c.Options().Addr, "error", err)
		_ = c.Close()
		return
	}
	if tracing.IsEnabled() {
		c.AddHook(tracing.NewRedisHook())
	}
	Client = c
	log.Info("Redis 连接成功", "addr", c.Options().Addr)
}

const (
	blacklistPrefix = "checkin:token:blacklist:"
	rateLimitPrefix = "checkin:ratelimit:"
)

// BlacklistToken 将 jti 加入黑名单直到 token 自然过期
func BlacklistToken(ctx context.Context, rdb *goredis.Client, jti string, ttl time.Duration) error {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, blacklistPrefix+jti, 1, ttl).Err()
}

func IsBlacklisted(ctx context.Context, rdb *goredis.Client, jti string) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	n, err := rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Allow 固定窗口计数，窗口内第 limit+1 次起拒绝
func Allow(ctx context.Context, rdb *goredis.Client, key string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}
	k := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, time.Now().UnixNano()/int64(window))
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}
