package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensiveblog/internal/config"
	"github.com/sensiveblog/internal/db"
	"github.com/sensiveblog/internal/router"
	"github.com/sensiveblog/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	appName = "sensive"
	Version = "0.1.0"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Sensive blog server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})

	var seedPassword string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with demo content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedDemo(configPath, seedPassword)
		},
	}
	seed.Flags().StringVar(&seedPassword, "password", os.Getenv("SEED_PASSWORD"), "Password for the demo authors")
	cmd.AddCommand(seed)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func openStore(cfg config.AppConfig) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabasePath, logger.Default.LogMode(level))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return gdb, nil
}

func serve(configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	gdb, err := openStore(cfg)
	if err != nil {
		return err
	}

	if err := db.EnsureAuthor(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		return fmt.Errorf("failed to ensure super root author: %w", err)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(gdb, cfg)
	log.Printf("%s listening on %s (%s)", appName, cfg.ListenAddr, cfg.SiteBaseURL)
	if err := r.Run(cfg.ListenAddr); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}

func seedDemo(configPath, password string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	gdb, err := openStore(cfg)
	if err != nil {
		return err
	}

	report, err := service.SeedDemoContent(gdb, strings.TrimSpace(password), time.Now())
	if err != nil {
		return fmt.Errorf("failed to seed demo content: %w", err)
	}

	if report.Skipped {
		log.Println("posts already exist, skipping demo content")
		return nil
	}

	log.Printf("demo content created: %d authors, %d tags, %d posts, %d comments, %d likes",
		report.Authors, report.Tags, report.Posts, report.Comments, report.Likes)
	return nil
}
