package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sensiveblog/internal/service"
	"github.com/sensiveblog/internal/view"
	"gorm.io/gorm"
)

// sidebar 汇总每个页面共用的热门标签与热门文章
type sidebar struct {
	PopularTags      []view.TagSummary
	MostPopularPosts []view.PostSummary
}

func (a *API) loadSidebar(gdb *gorm.DB) (*sidebar, error) {
	tags, err := service.PopularTags(gdb, sidebarLimit)
	if err != nil {
		return nil, err
	}

	posts, err := service.PopularPosts(gdb, sidebarLimit)
	if err != nil {
		return nil, err
	}

	return &sidebar{
		PopularTags:      a.views.TagSummaries(tags),
		MostPopularPosts: a.views.PostSummaries(posts),
	}, nil
}

// ShowIndex renders the home page with popular and fresh posts.
func (a *API) ShowIndex(c *gin.Context) {
	gdb := a.store(c)

	side, err := a.loadSidebar(gdb)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	fresh, err := service.FreshPosts(gdb, indexFreshLimit)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "index.html", gin.H{
		"title":            "Главная",
		"mostPopularPosts": side.MostPopularPosts,
		"pagePosts":        a.views.PostSummaries(fresh),
		"popularTags":      side.PopularTags,
	})
}

// ShowPostDetail renders a post by slug with its comments and tags.
func (a *API) ShowPostDetail(c *gin.Context) {
	gdb := a.store(c)

	post, err := service.PostBySlug(gdb, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	comments, err := service.CommentsForPost(gdb, post)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	relatedTags, err := service.TagsForPost(gdb, post)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	side, err := a.loadSidebar(gdb)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	detail := a.views.PostDetail(*post, comments, relatedTags)

	content, err := renderMarkdown(detail.Text)
	if err != nil {
		c.Error(err) // 渲染失败时退回纯文本
		content = ""
	}

	data := gin.H{
		"title":            detail.Title,
		"post":             detail,
		"content":          content,
		"popularTags":      side.PopularTags,
		"mostPopularPosts": side.MostPopularPosts,
	}

	if post.HasImage() {
		if dims, dimErr := a.media.Dimensions(post.Image); dimErr == nil {
			data["imageWidth"] = dims.Width
			data["imageHeight"] = dims.Height
		}
	}

	a.renderHTML(c, http.StatusOK, "post_detail.html", data)
}

// ShowTagFilter lists the posts carrying a tag.
func (a *API) ShowTagFilter(c *gin.Context) {
	gdb := a.store(c)

	tag, err := service.TagByTitle(gdb, strings.TrimPrefix(c.Param("title"), "/"))
	if err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderServerError(c, err)
		return
	}

	posts, err := service.PostsForTag(gdb, tag, tagFilterLimit)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	side, err := a.loadSidebar(gdb)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "posts_list.html", gin.H{
		"title":            tag.Title,
		"tag":              tag.Title,
		"posts":            a.views.PostSummaries(posts),
		"popularTags":      side.PopularTags,
		"mostPopularPosts": side.MostPopularPosts,
	})
}

// ShowContacts renders the static contacts page.
func (a *API) ShowContacts(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "contacts.html", gin.H{
		"title":    "Контакты",
		"contacts": view.ContactViews(a.contacts),
	})
}

// NotFound handles unknown routes.
func (a *API) NotFound(c *gin.Context) {
	a.renderNotFound(c)
}
