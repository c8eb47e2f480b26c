package checkin

import (
	"log/slog"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
)

var (
	log = slog.Default()
	svc *Service
)

type ModuleCheckin struct{}

func (m *ModuleCheckin) GetName() string {
	return "Checkin"
}

func (m *ModuleCheckin) Init() {
	log = logger.New("Checkin")
	cfg := config.Get()
	loc := cfg.App.Location()
	svc = &Service{
		repo:         repository.New(database.DB),
		now:          func() time.Time { return time.Now().In(loc) },
		policy:       model.NewPolicy(cfg.Program.WindowDays, cfg.Program.PassDays),
		countPending: cfg.Program.CountPending,
		posts:        crawler.New(cfg.Crawler),
	}
}
