package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensiveblog/internal/config"
	"github.com/sensiveblog/internal/media"
	"github.com/sensiveblog/internal/view"
	"gorm.io/gorm"
)

// 侧边栏与首页各列表的条数
const (
	sidebarLimit     = 5
	indexFreshLimit  = 5
	tagFilterLimit   = 20
	defaultSiteTitle = "Sensive"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	media    *media.Library
	views    *view.Assembler
	siteName string
	contacts []view.ContactLink
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	library := media.NewLibrary(cfg.UploadDir, cfg.UploadURLPath)

	contacts := make([]view.ContactLink, 0, len(cfg.Contacts))
	for _, contact := range cfg.Contacts {
		contacts = append(contacts, view.ContactLink{Kind: contact.Kind, Label: contact.Label, URL: contact.URL})
	}

	siteName := strings.TrimSpace(cfg.SiteName)
	if siteName == "" {
		siteName = defaultSiteTitle
	}

	return &API{
		db:       gdb,
		media:    library,
		views:    view.NewAssembler(library),
		siteName: siteName,
		contacts: contacts,
	}
}

// store 返回绑定了请求上下文的数据库句柄
func (a *API) store(c *gin.Context) *gorm.DB {
	return a.db.WithContext(c.Request.Context())
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}
