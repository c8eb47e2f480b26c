package web

import (
	"log/slog"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/logger"
)

var (
	log    = slog.Default()
	prefix string
)

// ModuleWeb 服务端渲染的页面，页面数据由浏览器调用 JSON 接口获取
type ModuleWeb struct{}

func (m *ModuleWeb) GetName() string {
	return "Web"
}

func (m *ModuleWeb) Init() {
	log = logger.New("Web")
	prefix = config.Get().Prefix
}
