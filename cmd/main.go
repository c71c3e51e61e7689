// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/handlers"
	"go_5_skill_sync/internal/repository"
	"go_5_skill_sync/internal/service"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"
)

func main() {
	configDir := flag.String("config-dir", "configs", "config.yaml を置いたディレクトリ")
	flag.Parse()

	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	// .env はローカル開発用。無くてもよい
	if err := godotenv.Load(); err != nil {
		tempLogger.Debug(".env not loaded", slog.Any("error", err))
	}

	if err := config.LoadConfig(*configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := &config.Cfg

	logger := newLogger(cfg.Log.Level, tempLogger)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("app", cfg.App.Name))

	// 1. Database
	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	if err := repository.Migrate(db); err != nil {
		slog.Error("Error migrating database", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Dependency Injection
	mailer, err := service.NewMailer(context.Background(), cfg)
	if err != nil {
		slog.Error("Error initializing mailer", slog.Any("error", err))
		os.Exit(1)
	}
	generator := service.NewOptionGenerator(cfg.Generator, &http.Client{Timeout: cfg.Generator.Timeout})

	userRepo := repository.NewGormUserRepository()
	groupRepo := repository.NewGormGroupRepository()
	setRepo := repository.NewGormSetRepository()
	cardRepo := repository.NewGormFlashcardRepository()
	progressRepo := repository.NewGormProgressRepository()
	reviewLogRepo := repository.NewGormReviewLogRepository()

	guard := service.NewAccessGuard(userRepo, groupRepo, setRepo)
	selector := service.NewDueSelector(progressRepo, cardRepo, cfg.Study.SeedBatchMin)

	authService := service.NewAuthService(db, userRepo, mailer, cfg)
	studyService := service.NewStudyService(db, guard, selector, userRepo, cardRepo, progressRepo, reviewLogRepo, generator, cfg)
	statsService := service.NewStatsService(db, guard, progressRepo, reviewLogRepo, groupRepo, cfg)
	flashcardService := service.NewFlashcardService(db, guard, cardRepo, progressRepo, reviewLogRepo)

	// 3. Router
	r := handlers.NewRouter(cfg, logger, handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Study:     handlers.NewStudyHandler(studyService, cfg.Study.DefaultLimit),
		Stats:     handlers.NewStatsHandler(statsService),
		Flashcard: handlers.NewFlashcardHandler(flashcardService),
		Health:    handlers.NewHealthHandler(db),
	})

	// 4. Start Server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}

// newLogger は log.level と APP_ENV からロガーを作ります。dev なら tint、それ以外は JSON。
func newLogger(level string, tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info", "":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		tempLogger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}
