package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/database"
	"cohort-checkin/internal/global/logger"
	"cohort-checkin/internal/global/middleware"
	"cohort-checkin/internal/global/redis"
	"cohort-checkin/internal/global/sentry"
	"cohort-checkin/internal/module"
	"cohort-checkin/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")
	middleware.SetLogger(logger.New("HTTP"))

	if err := sentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	}

	database.Init()
	redis.Init()

	for _, m := range module.Modules {
		log.Info("Init Module: " + m.GetName())
		m.Init()
	}
}

func Run() {
	cfg := config.Get()
	gin.SetMode(string(cfg.Mode))
	r := gin.New()

	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	switch cfg.Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.CORS(cfg.App.AllowOrigins...))
	r.Use(middleware.Recovery())

	for _, m := range module.Modules {
		log.Info("Init Router: " + m.GetName())
		m.InitRouter(r.Group("/" + cfg.Prefix))
		if p, ok := m.(module.PageModule); ok {
			p.InitPages(r)
		}
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("服务启动", "addr", srv.Addr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tools.PanicOnErr(err)
		}
	}()

	<-ctx.Done()
	log.Info("正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("服务关闭失败", "error", err)
	}
	sentry.Flush(2 * time.Second)
}
