package user

import (
	"log/slog"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/repository"
)

var (
	log = slog.Default()
	svc *Service
)

type ModuleUser struct{}

func (u *ModuleUser) GetName() string {
	return "User"
}

func (u *ModuleUser) Init() {
	log = logger.New("User")
	cfg := config.Get()
	loc := cfg.App.Location()
	svc = NewService(repository.New(database.DB), func() time.Time { return time.Now().In(loc) }, cfg.App.AllowRegister)
}
