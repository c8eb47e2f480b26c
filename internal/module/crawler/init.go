package crawler

import (
	"log/slog"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/global/logger"
)

var (
	log     = slog.Default()
	fetcher Fetcher
)

type ModuleCrawler struct{}

func (m *ModuleCrawler) GetName() string {
	return "Crawler"
}

func (m *ModuleCrawler) Init() {
	log = logger.New("Crawler")
	cfg := config.Get().Crawler
	if cfg.BaseURL == "" {
		log.Warn("未配置爬虫 MCP 服务，仅使用 OpenGraph 解析")
	}
	fetcher = crawler.New(cfg)
}
