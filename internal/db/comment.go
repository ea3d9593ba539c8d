package db

import (
	"time"

	"gorm.io/gorm"
)

// Comment 定义了评论模型，随所属文章一起删除
type Comment struct {
	gorm.Model
	Text        string `gorm:"not null"`
	PostID      uint   `gorm:"not null;index"`
	Post        Post   `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID    uint   `gorm:"not null"`
	Author      Author
	PublishedAt time.Time `gorm:"index"`
}
