package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/harshshukla07/SwiftCV/internal/api"
	"github.com/harshshukla07/SwiftCV/internal/auth"
	"github.com/harshshukla07/SwiftCV/internal/config"
	"github.com/harshshukla07/SwiftCV/internal/database"
	"github.com/harshshukla07/SwiftCV/internal/imagekit"
	"github.com/harshshukla07/SwiftCV/internal/llm"
	"github.com/harshshukla07/SwiftCV/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("api bootstrapping",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(&database.User{}, &database.Resume{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database migrated")

	authService, err := auth.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})

	aiClient := llm.NewClient(cfg.AI, logger)
	if !aiClient.Enabled() {
		logger.Warn("ai model not configured, ai endpoints will reject requests")
	}

	uploader := imagekit.NewClient(cfg.ImageKit)
	if !uploader.Enabled() {
		logger.Warn("image cdn not configured, image uploads will fail")
	}

	archive, err := storage.NewArchive(cfg.MinIO)
	if err != nil {
		log.Fatalf("init resume archive: %v", err)
	}
	if archive == nil {
		logger.Info("resume text archival disabled")
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, cfg, db, authService, redisClient, logger, aiClient, uploader, archive)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
