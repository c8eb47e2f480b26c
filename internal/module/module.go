package module

import (
	"cohort-checkin/internal/module/assignment"
	"cohort-checkin/internal/module/checkin"
	"cohort-checkin/internal/module/crawler"
	"cohort-checkin/internal/module/ping"
	"cohort-checkin/internal/module/report"
	"cohort-checkin/internal/module/schedule"
	"cohort-checkin/internal/module/upload"
	"cohort-checkin/internal/module/user"
	"cohort-checkin/internal/module/web"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

// PageModule 在根路径下注册页面，不带 API 前缀
type PageModule interface {
	InitPages(r *gin.Engine)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&user.ModuleUser{},
		&ping.ModulePing{},
		&schedule.ModuleSchedule{},
		&checkin.ModuleCheckin{},
		&assignment.ModuleAssignment{},
		&report.ModuleReport{},
		&upload.ModuleUpload{},
		&crawler.ModuleCrawler{},
		&web.ModuleWeb{},
	})
}
