package ping

import (
	"context"
	"log/slog"

	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/redis"
)

var log *slog.Logger

type ModulePing struct{}

func (p *ModulePing) GetName() string {
	return "Ping"
}

func (p *ModulePing) Init() {
	log = logger.New("Ping")
	probes = defaultProbes()
}

func defaultProbes() []Probe {
	list := []Probe{{Name: "database", Check: func(ctx context.Context) error {
		if database.DB == nil {
			return errNotReady
		}
		sqlDB, err := database.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	// redis 可选，未连接时不计入健康检查
	if redis.Client != nil {
		list = append(list, Probe{Name: "redis", Check: func(ctx context.Context) error {
			return redis.Client.Ping(ctx).Err()
		}})
	}
	return list
}
