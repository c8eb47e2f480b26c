package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// InitRouter 页面不挂在 API 前缀下，见 InitPages
func (m *ModuleWeb) InitRouter(_ *gin.RouterGroup) {}

// InitPages 注册页面路由
func (m *ModuleWeb) InitPages(r *gin.Engine) {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/login", page("login.html", "登录"))
	r.GET("/profile", page("profile.html", "个人资料"))
	r.GET("/dashboard", page("dashboard.html", "打卡面板"))
	log.Info("页面路由已注册")
}

type pageData struct {
	Title   string
	APIBase string
}

func page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, pageData{Title: title, APIBase: apiBase()})
	}
}

func apiBase() string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
