package schedule

import (
	"log/slog"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
)

var (
	log = slog.Default()
	svc *Service
)

type ModuleSchedule struct{}

func (m *ModuleSchedule) GetName() string {
	return "Schedule"
}

func (m *ModuleSchedule) Init() {
	log = logger.New("Schedule")
	cfg := config.Get()
	loc := cfg.App.Location()
	svc = NewService(
		repository.New(database.DB),
		func() time.Time { return time.Now().In(loc) },
		model.NewPolicy(cfg.Program.WindowDays, cfg.Program.PassDays),
		cfg.Program.SelfScheduleMonths,
	)
}
