// cmd/migrate/main.go
package main

import (
	"log/slog"
	"os"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/repository"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

// スキーマを作成・更新して終了します
func main() {
	configDir := flag.String("config-dir", "configs", "config.yaml を置いたディレクトリ")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Migration completed", slog.Int("models", len(repository.Models())))
}
