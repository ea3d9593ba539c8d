package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultDatabasePath = "sensive.db"

// Open 打开 SQLite 数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 sensive.db；gormLogger 为 nil 时使用 gorm 默认日志。
func Open(databasePath string, gormLogger logger.Interface) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = defaultDatabasePath
	}

	if !isMemoryDSN(path) {
		if err := ensureParentDir(stripDSNParams(path)); err != nil {
			return nil, err
		}
	}

	if gormLogger == nil {
		gormLogger = logger.Default
	}

	gdb, err := gorm.Open(sqlite.Open(withForeignKeys(path)), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate 自动迁移模式，为核心模型创建表
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Author{},
		&Tag{},
		&Post{},
		&Comment{},
	)
}

// withForeignKeys turns on SQLite foreign key enforcement so comment rows
// follow their post on delete.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func stripDSNParams(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	return path
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
