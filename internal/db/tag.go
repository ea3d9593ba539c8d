package db

import "gorm.io/gorm"

// Tag 定义了标签模型
type Tag struct {
	gorm.Model
	Title string `gorm:"uniqueIndex;not null"`
	Posts []Post `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;"`

	// PostsWithTagCount 只在查询时通过子查询填充，不落库
	PostsWithTagCount int64 `gorm:"->;-:migration"`
}
