package db

import (
	"time"

	"gorm.io/gorm"
)

// TeaserLength 是文章预览截取的字符数
const TeaserLength = 200

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Text        string
	Image       string
	PublishedAt time.Time `gorm:"index"`
	AuthorID    uint      `gorm:"not null"`
	Author      Author
	Tags        []Tag    `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;"`
	Likes       []Author `gorm:"many2many:post_likes;constraint:OnDelete:CASCADE;"`

	CommentsCount int64 `gorm:"->;-:migration"`
	LikesCount    int64 `gorm:"->;-:migration"`
	TagsCount     int64 `gorm:"->;-:migration"`
}

// Teaser returns the first TeaserLength characters of the post text.
func (p Post) Teaser() string {
	return truncateRunes(p.Text, TeaserLength)
}

// HasImage reports whether the post references stored media.
func (p Post) HasImage() bool {
	return p.Image != ""
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for idx := range s {
		if count == limit {
			return s[:idx]
		}
		count++
	}
	return s
}
