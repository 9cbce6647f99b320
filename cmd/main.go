package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/tsumo-app/tsumo-server/config"
	"github.com/tsumo-app/tsumo-server/db"
	"github.com/tsumo-app/tsumo-server/handlers"
	"github.com/tsumo-app/tsumo-server/live"
	"github.com/tsumo-app/tsumo-server/repositories"
	api "github.com/tsumo-app/tsumo-server/routes"
	"github.com/tsumo-app/tsumo-server/services"
	"github.com/tsumo-app/tsumo-server/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("backend", cfg.DataBackend))

	var (
		userRepo   repositories.UserRepository
		groupRepo  repositories.GroupRepository
		memberRepo repositories.GroupMemberRepository
		gameRepo   repositories.GameRepository
	)

	switch cfg.DataBackend {
	case config.BackendPostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		logger.Info("database connection established")

		userRepo = repositories.NewPostgresUserRepository(dbConn)
		groupRepo = repositories.NewPostgresGroupRepository(dbConn)
		memberRepo = repositories.NewPostgresGroupMemberRepository(dbConn)
		gameRepo = repositories.NewPostgresGameRepository(dbConn)

	case config.BackendMemory:
		store := repositories.NewMemoryStore()
		userRepo = store.UserRepo()
		groupRepo = store.GroupRepo()
		memberRepo = store.MemberRepo()
		gameRepo = store.GameRepo()
		logger.Info("in-memory store initialized; data will not survive restarts")
	}
	logger.Info("repositories initialized")

	var uploader storage.FileUploader
	if cfg.UploadsConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 credentials not configured; avatar and logo uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	groupService := services.NewGroupService(groupRepo, memberRepo, userRepo, uploader)
	gameService := services.NewGameService(gameRepo, groupRepo, memberRepo, wsHub)
	statsService := services.NewStatsService(gameRepo, userRepo)
	rankingService := services.NewRankingService(groupRepo, memberRepo, gameRepo, userRepo)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService, rankingService)
	gameHandler := handlers.NewGameHandler(gameService)
	statsHandler := handlers.NewStatsHandler(statsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		userHandler,
		groupHandler,
		gameHandler,
		statsHandler,
		webSocketHandler,
		cfg.JWTSecretKey,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
