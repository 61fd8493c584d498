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

	"github.com/Dosada05/fantasy-league/config"
	"github.com/Dosada05/fantasy-league/db"
	"github.com/Dosada05/fantasy-league/feed"
	"github.com/Dosada05/fantasy-league/handlers"
	"github.com/Dosada05/fantasy-league/live"
	"github.com/Dosada05/fantasy-league/repositories"
	api "github.com/Dosada05/fantasy-league/routes"
	"github.com/Dosada05/fantasy-league/services"
	"github.com/Dosada05/fantasy-league/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// Без настроенного R2 загрузка логотипов отключена, остальное работает.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
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
		logger.Warn("R2 is not configured, logo uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("live hub started")

	txRunner := repositories.NewTxRunner(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	stageTeamRepo := repositories.NewPostgresStageTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	phasePickRepo := repositories.NewPostgresPhasePickRepository(dbConn)
	playoffPickRepo := repositories.NewPostgresPlayoffPickRepository(dbConn)
	logger.Info("repositories initialized")

	var feedClient feed.Client
	if cfg.FeedEnabled {
		feedClient = feed.NewHTTPClient(cfg.FeedBaseURL, cfg.FeedAPIKey, 10*time.Second)
	}

	authService := services.NewAuthService(userRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, stageRepo)
	stageService := services.NewStageService(txRunner, stageRepo, stageTeamRepo, matchRepo, phasePickRepo, playoffPickRepo, wsHub, logger)
	pickService := services.NewPickService(txRunner, tournamentRepo, stageRepo, stageTeamRepo, phasePickRepo, playoffPickRepo)
	fantasyService := services.NewFantasyService(txRunner, tournamentRepo, stageRepo, stageTeamRepo, matchRepo, userRepo, phasePickRepo, playoffPickRepo, logger)
	leaderboardService := services.NewLeaderboardService(userRepo, phasePickRepo, playoffPickRepo)
	teamService := services.NewTeamService(teamRepo, uploader)
	feedService := services.NewFeedService(txRunner, stageRepo, stageTeamRepo, matchRepo, teamRepo, feedClient, wsHub, logger)
	logger.Info("services initialized")

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	if cfg.FeedEnabled {
		go feedService.RunPoller(rootCtx, cfg.FeedPollInterval)
	}

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, stageService)
	fantasyHandler := handlers.NewFantasyHandler(stageService)
	pickHandler := handlers.NewPickHandler(pickService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	adminHandler := handlers.NewAdminHandler(tournamentService, stageService, fantasyService, feedService, teamService)
	feedHandler := handlers.NewFeedHandler(feedService, cfg.FeedAPIKey)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		fantasyHandler,
		pickHandler,
		leaderboardHandler,
		adminHandler,
		feedHandler,
		webSocketHandler,
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
		cancelRoot()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

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
