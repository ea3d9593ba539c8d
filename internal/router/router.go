package router

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sensiveblog/internal/config"
	"github.com/sensiveblog/internal/handler"
	"github.com/sensiveblog/web"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.New()

	registry := prometheus.NewRegistry()
	metrics := newHTTPMetrics(registry)

	r.Use(requestID())
	r.Use(gin.LoggerWithFormatter(logFormatter))
	r.Use(gin.Recovery())
	r.Use(metrics.middleware())

	// 加载嵌入的模板并添加自定义函数
	r.SetHTMLTemplate(loadTemplates())

	// 上传的媒体文件
	uploadURL := "/" + strings.Trim(strings.TrimSpace(cfg.UploadURLPath), "/")
	if uploadURL != "/" && strings.TrimSpace(cfg.UploadDir) != "" {
		r.Static(uploadURL, cfg.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := handler.NewAPI(gdb, cfg)

	r.GET("/", api.ShowIndex)
	r.GET("/post/:slug", api.ShowPostDetail)
	r.GET("/tag/*title", api.ShowTagFilter)
	r.GET("/contacts", api.ShowContacts)
	r.NoRoute(api.NotFound)

	return r
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs()).ParseFS(web.Templates, "template/*.html"))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": formatDate,
		"tagURL":     tagURL,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// tagURL 生成标签页链接，标题中的 "/" 等字符会被转义。
func tagURL(title string) string {
	return "/tag/" + url.PathEscape(title)
}
