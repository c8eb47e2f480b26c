package ping

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cohort-checkin/internal/global/response"

	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

var errNotReady = errors.New("未初始化")

// Probe 健康检查项
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

var probes []Probe

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", Ping)
	r.GET("/health", Health)
}

func Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "pong",
		"version": Version,
	})
}

type HealthResult struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
	Time       time.Time         `json:"time"`
}

// Health 任一依赖异常时返回 503
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	result := HealthResult{Status: "ok", Version: Version, Components: map[string]string{}, Time: time.Now()}
	for _, p := range probes {
		if err := p.Check(ctx); err != nil {
			log.Warn("健康检查失败", "component", p.Name, "error", err)
			result.Status = "degraded"
			result.Components[p.Name] = err.Error()
			continue
		}
		result.Components[p.Name] = "ok"
	}
	if result.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, response.Body{Code: response.ErrServerInternal.Code, Msg: "服务异常", Data: result})
		return
	}
	response.Success(c, result)
}
