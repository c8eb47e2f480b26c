package assignment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/grader"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/storage"
	"cohort-checkin/internal/repository"
)

var (
	log = slog.Default()
	svc *Service
)

type ModuleAssignment struct{}

func (m *ModuleAssignment) GetName() string {
	return "Assignment"
}

func (m *ModuleAssignment) Init() {
	log = logger.New("Assignment")
	cfg := config.Get()
	loc := cfg.App.Location()
	svc = &Service{
		repo:   repository.New(database.DB),
		now:    func() time.Time { return time.Now().In(loc) },
		grader: grader.New(cfg.AI),
	}

	st, err := storage.New(context.Background(), cfg.S3)
	switch {
	case err == nil:
		svc.files = st
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn("对象存储未配置，作业附件上传不可用")
	default:
		log.Error("对象存储初始化失败", "error", err)
	}
	if cfg.AI.BaseURL == "" {
		log.Warn("AI 批改服务未配置，提交的作业将标记为批改失败")
	}
}
