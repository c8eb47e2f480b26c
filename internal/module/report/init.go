package report

import (
	"log/slog"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/pdf"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
)

var (
	log = slog.Default()
	svc *Service
)

type ModuleReport struct{}

func (m *ModuleReport) GetName() string {
	return "Report"
}

func (m *ModuleReport) Init() {
	log = logger.New("Report")
	cfg := config.Get()
	loc := cfg.App.Location()
	svc = &Service{
		repo:         repository.New(database.DB),
		now:          func() time.Time { return time.Now().In(loc) },
		policy:       model.NewPolicy(cfg.Program.WindowDays, cfg.Program.PassDays),
		countPending: cfg.Program.CountPending,
	}
	renderer, err := pdf.New(cfg.PDF)
	if err != nil {
		log.Error("承诺书模板加载失败，证书下载不可用", "error", err)
		return
	}
	svc.letters = renderer
}
