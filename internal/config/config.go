package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string    `yaml:"listen_addr"`
	Port              string    `yaml:"port"`
	DatabasePath      string    `yaml:"database_path"`
	GinMode           string    `yaml:"gin_mode"`
	UploadDir         string    `yaml:"upload_dir"`
	UploadURLPath     string    `yaml:"upload_url_path"`
	SiteBaseURL       string    `yaml:"site_base_url"`
	SiteName          string    `yaml:"site_name"`
	SuperRootUserName string    `yaml:"super_root_user_name"`
	SuperRootPassword string    `yaml:"super_root_password"`
	LogSQL            bool      `yaml:"log_sql"`
	Contacts          []Contact `yaml:"contacts"`
}

// Contact 描述联系页上的一条联系方式
type Contact struct {
	Kind  string `yaml:"kind"`
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	cfg := AppConfig{}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg
}

// LoadFile 先读取 YAML 配置文件，再用环境变量覆盖，最后补齐默认值。
func LoadFile(path string) (AppConfig, error) {
	cfg := AppConfig{}

	path = strings.TrimSpace(path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setFromEnv(&cfg.Port, "PORT")
	setFromEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	setFromEnv(&cfg.DatabasePath, "DATABASE_PATH")
	setFromEnv(&cfg.GinMode, "GIN_MODE")
	setFromEnv(&cfg.UploadDir, "UPLOAD_DIR")
	setFromEnv(&cfg.UploadURLPath, "UPLOAD_URL_PATH")
	setFromEnv(&cfg.SiteBaseURL, "SITE_BASE_URL")
	setFromEnv(&cfg.SiteName, "SITE_NAME")
	setFromEnv(&cfg.SuperRootUserName, "SUPER_ROOT_USER_NAME")
	setFromEnv(&cfg.SuperRootPassword, "SUPER_ROOT_PASSWORD")

	if raw := strings.TrimSpace(os.Getenv("LOG_SQL")); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			cfg.LogSQL = enabled
		}
	}
}

func applyDefaults(cfg *AppConfig) {
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	if strings.TrimSpace(cfg.DatabasePath) == "" {
		cfg.DatabasePath = "sensive.db"
	}

	if strings.TrimSpace(cfg.GinMode) == "" {
		cfg.GinMode = "release"
	}

	if strings.TrimSpace(cfg.UploadDir) == "" {
		cfg.UploadDir = "web/static/uploads"
	}

	if strings.TrimSpace(cfg.UploadURLPath) == "" {
		cfg.UploadURLPath = "/media"
	}

	if strings.TrimSpace(cfg.SiteBaseURL) == "" {
		cfg.SiteBaseURL = "http://localhost:" + cfg.Port
	}

	if strings.TrimSpace(cfg.SiteName) == "" {
		cfg.SiteName = "Sensive"
	}
}

func setFromEnv(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}
