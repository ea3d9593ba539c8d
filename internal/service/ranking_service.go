package service

import (
	"errors"
	"strings"
	"time"

	"github.com/sensiveblog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrTagNotFound  = errors.New("tag not found")
)

// 计数均通过关联子查询实时得出，不落库；软删除的记录（包括已注销作者的点赞）不参与计数。
const (
	commentsCountSelect = "(SELECT COUNT(*) FROM comments AS c WHERE c.post_id = posts.id AND c.deleted_at IS NULL) AS comments_count"
	likesCountSelect    = "(SELECT COUNT(*) FROM post_likes AS pl JOIN authors AS a ON a.id = pl.author_id WHERE pl.post_id = posts.id AND a.deleted_at IS NULL) AS likes_count"
	tagsCountSelect     = "(SELECT COUNT(*) FROM post_tags AS pt JOIN tags AS t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.deleted_at IS NULL) AS tags_count"

	postsWithTagCountSelect = "(SELECT COUNT(*) FROM post_tags AS pt JOIN posts AS p ON p.id = pt.post_id WHERE pt.tag_id = tags.id AND p.deleted_at IS NULL) AS posts_with_tag_count"
)

// CommentRow is a comment flattened for display. The author username is
// joined in at query time.
type CommentRow struct {
	Text           string
	PublishedAt    time.Time
	AuthorUsername string
}

// PopularPosts returns posts ordered by like count, most liked first.
// Ties fall back to publication time and then id, both descending.
func PopularPosts(gdb *gorm.DB, limit int) ([]db.Post, error) {
	return listPosts(annotatedPosts(gdb).
		Order("likes_count desc").
		Order("posts.published_at desc").
		Order("posts.id desc"), limit)
}

// FreshPosts returns the most recently published posts.
func FreshPosts(gdb *gorm.DB, limit int) ([]db.Post, error) {
	return listPosts(annotatedPosts(gdb).
		Order("posts.published_at desc").
		Order("posts.id desc"), limit)
}

// PostsForTag returns posts carrying the given tag, newest first.
func PostsForTag(gdb *gorm.DB, tag *db.Tag, limit int) ([]db.Post, error) {
	if tag == nil {
		return []db.Post{}, nil
	}
	return listPosts(annotatedPosts(gdb).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tag.ID).
		Order("posts.published_at desc").
		Order("posts.id desc"), limit)
}

// PostBySlug 根据 slug 查找文章，附带点赞数、评论数与标签数。
func PostBySlug(gdb *gorm.DB, slug string) (*db.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}

	var post db.Post
	if err := annotatedPosts(gdb).Where("posts.slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// PopularTags returns tags ordered by how many posts carry them.
// Ties are broken by title and then id, both ascending.
func PopularTags(gdb *gorm.DB, limit int) ([]db.Tag, error) {
	query := annotatedTags(gdb).
		Order("posts_with_tag_count desc").
		Order("tags.title asc").
		Order("tags.id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	tags := []db.Tag{}
	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// TagsForPost 返回文章关联的标签，按标题升序。
func TagsForPost(gdb *gorm.DB, post *db.Post) ([]db.Tag, error) {
	tags := []db.Tag{}
	if post == nil {
		return tags, nil
	}

	if err := annotatedTags(gdb).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", post.ID).
		Order("tags.title asc").
		Order("tags.id asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// TagByTitle 根据标题查找标签，附带文章数。
func TagByTitle(gdb *gorm.DB, title string) (*db.Tag, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTagNotFound
	}

	var tag db.Tag
	if err := annotatedTags(gdb).Where("tags.title = ?", title).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// CommentsForPost returns the comments of a post in insertion order.
// Comments keep their author's name after the author is soft-deleted.
func CommentsForPost(gdb *gorm.DB, post *db.Post) ([]CommentRow, error) {
	rows := []CommentRow{}
	if post == nil {
		return rows, nil
	}

	if err := gdb.Table("comments").
		Select("comments.text, comments.published_at, authors.username AS author_username").
		Joins("JOIN authors ON authors.id = comments.author_id").
		Where("comments.post_id = ?", post.ID).
		Where("comments.deleted_at IS NULL").
		Order("comments.id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func annotatedPosts(gdb *gorm.DB) *gorm.DB {
	return gdb.Model(&db.Post{}).
		Select(strings.Join([]string{"posts.*", commentsCountSelect, likesCountSelect, tagsCountSelect}, ", ")).
		Preload("Author", unscopedAuthors).
		Preload("Tags", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("tags.*, " + postsWithTagCountSelect).
				Order("tags.title asc").
				Order("tags.id asc")
		})
}

// 作者被软删除后，其文章仍显示原作者名。
func unscopedAuthors(tx *gorm.DB) *gorm.DB {
	return tx.Unscoped()
}

func annotatedTags(gdb *gorm.DB) *gorm.DB {
	return gdb.Model(&db.Tag{}).Select("tags.*, " + postsWithTagCountSelect)
}

func listPosts(query *gorm.DB, limit int) ([]db.Post, error) {
	if limit > 0 {
		query = query.Limit(limit)
	}

	posts := []db.Post{}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
