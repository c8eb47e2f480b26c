package upload

import (
	"context"
	"errors"
	"log/slog"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/storage"
)

var (
	log   = slog.Default()
	store ObjectStore
)

type ModuleUpload struct{}

func (m *ModuleUpload) GetName() string {
	return "Upload"
}

func (m *ModuleUpload) Init() {
	log = logger.New("Upload")
	st, err := storage.New(context.Background(), config.Get().S3)
	switch {
	case err == nil:
		store = st
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn("对象存储未配置，上传接口不可用")
	default:
		log.Error("对象存储初始化失败", "error", err)
	}
}
