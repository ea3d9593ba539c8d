package view

import (
	"time"

	"github.com/sensiveblog/internal/db"
	"github.com/sensiveblog/internal/service"
)

// ImageResolver maps a stored media name to its public URL.
type ImageResolver interface {
	URL(name string) string
}

// TagSummary 是模板中展示的标签信息
type TagSummary struct {
	Title             string
	PostsWithTagCount int64
}

// PostSummary 是列表页中展示的文章卡片
type PostSummary struct {
	Title          string
	Teaser         string
	AuthorUsername string
	CommentsCount  int64
	ImageURL       *string
	PublishedAt    time.Time
	Slug           string
	Tags           []TagSummary
	// FirstTagTitle is empty for a post without tags.
	FirstTagTitle string
}

// CommentView 是详情页中的一条评论
type CommentView struct {
	Text           string
	PublishedAt    time.Time
	AuthorUsername string
}

// PostDetail 是详情页的文章数据
type PostDetail struct {
	Title          string
	Text           string
	AuthorUsername string
	Comments       []CommentView
	LikesCount     int64
	ImageURL       *string
	PublishedAt    time.Time
	Slug           string
	Tags           []TagSummary
}

// Assembler converts annotated store records into template records.
type Assembler struct {
	images ImageResolver
}

// NewAssembler creates an Assembler resolving image URLs through images.
func NewAssembler(images ImageResolver) *Assembler {
	return &Assembler{images: images}
}

// PostSummary maps a post loaded by one of the listing queries.
func (a *Assembler) PostSummary(post db.Post) PostSummary {
	tags := a.TagSummaries(post.Tags)

	firstTag := ""
	if len(tags) > 0 {
		firstTag = tags[0].Title
	}

	return PostSummary{
		Title:          post.Title,
		Teaser:         post.Teaser(),
		AuthorUsername: post.Author.Username,
		CommentsCount:  post.CommentsCount,
		ImageURL:       a.imageURL(post),
		PublishedAt:    post.PublishedAt,
		Slug:           post.Slug,
		Tags:           tags,
		FirstTagTitle:  firstTag,
	}
}

// PostSummaries maps a slice of posts, never returning nil.
func (a *Assembler) PostSummaries(posts []db.Post) []PostSummary {
	summaries := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, a.PostSummary(post))
	}
	return summaries
}

// PostDetail 组装详情页数据，评论与标签由调用方单独查询后传入。
func (a *Assembler) PostDetail(post db.Post, comments []service.CommentRow, relatedTags []db.Tag) PostDetail {
	commentViews := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		commentViews = append(commentViews, CommentView{
			Text:           comment.Text,
			PublishedAt:    comment.PublishedAt,
			AuthorUsername: comment.AuthorUsername,
		})
	}

	return PostDetail{
		Title:          post.Title,
		Text:           post.Text,
		AuthorUsername: post.Author.Username,
		Comments:       commentViews,
		LikesCount:     post.LikesCount,
		ImageURL:       a.imageURL(post),
		PublishedAt:    post.PublishedAt,
		Slug:           post.Slug,
		Tags:           a.TagSummaries(relatedTags),
	}
}

// TagSummary maps a tag annotated with its post count.
func (a *Assembler) TagSummary(tag db.Tag) TagSummary {
	return TagSummary{Title: tag.Title, PostsWithTagCount: tag.PostsWithTagCount}
}

// TagSummaries maps a slice of tags, never returning nil.
func (a *Assembler) TagSummaries(tags []db.Tag) []TagSummary {
	summaries := make([]TagSummary, 0, len(tags))
	for _, tag := range tags {
		summaries = append(summaries, a.TagSummary(tag))
	}
	return summaries
}

// imageURL 没有图片时返回 nil；未配置解析器时直接使用存储名。
func (a *Assembler) imageURL(post db.Post) *string {
	if !post.HasImage() {
		return nil
	}
	url := post.Image
	if a.images != nil {
		if resolved := a.images.URL(post.Image); resolved != "" {
			url = resolved
		}
	}
	return &url
}
