package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Author 定义了作者模型，文章、评论与点赞都引用它
type Author struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
}

// ErrNoStore is returned when EnsureAuthor is called without a database.
var ErrNoStore = errors.New("database not initialized")

// EnsureAuthor makes sure the bootstrap author from the configuration exists.
// Blank credentials disable the bootstrap. An existing account is left untouched,
// so restarting with a different password never rewrites the stored hash.
func EnsureAuthor(gdb *gorm.DB, username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil
	}
	if gdb == nil {
		return ErrNoStore
	}

	var found int64
	if err := gdb.Unscoped().Model(&Author{}).Where("username = ?", username).Count(&found).Error; err != nil {
		return err
	}
	if found > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return gdb.Create(&Author{Username: username, Password: string(hashed)}).Error
}
