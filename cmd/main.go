package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fencelab/fencing-system/config"
	"github.com/fencelab/fencing-system/db"
	"github.com/fencelab/fencing-system/handlers"
	"github.com/fencelab/fencing-system/live"
	"github.com/fencelab/fencing-system/middleware"
	"github.com/fencelab/fencing-system/repositories"
	"github.com/fencelab/fencing-system/routes"
	"github.com/fencelab/fencing-system/services"
	"github.com/fencelab/fencing-system/storage"
)

const (
	dbConnectTimeout      = 5 * time.Second
	statusUpdateInterval  = 30 * time.Second
	serverShutdownTimeout = 15 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application terminated", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connection established")

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
			return fmt.Errorf("init R2 uploader: %w", err)
		}
	} else {
		logger.Warn("object storage is not configured, season export disabled")
		uploader = storage.NewDisabledUploader()
	}

	hub := live.NewHub(logger)
	go hub.Run()

	tx := repositories.NewSQLTransactor(pool)
	fencerRepo := repositories.NewPostgresFencerRepository(pool)
	clubRepo := repositories.NewPostgresClubRepository(pool)
	tournamentRepo := repositories.NewPostgresTournamentRepository(pool)
	resultRepo := repositories.NewPostgresResultRepository(pool)
	rankingRepo := repositories.NewPostgresRankingRepository(pool)
	seasonRepo := repositories.NewPostgresSeasonRepository(pool)
	userRepo := repositories.NewPostgresUserRepository(pool)

	broadcaster := live.NewStandingsBroadcaster(hub, rankingRepo, logger)

	rankingService := services.NewRankingService(rankingRepo, resultRepo, fencerRepo, tx, logger)
	eligibility := services.NewEligibilityChecker(resultRepo)
	tournamentService := services.NewTournamentService(
		tournamentRepo, resultRepo, fencerRepo,
		rankingService, eligibility, tx, broadcaster, logger,
	)
	fencerService := services.NewFencerService(
		fencerRepo, clubRepo, resultRepo, rankingRepo,
		rankingService, tx, logger,
	)
	clubService := services.NewClubService(clubRepo, fencerRepo)
	seasonService := services.NewSeasonService(seasonRepo, tournamentRepo)
	authService := services.NewAuthService(userRepo)
	simulationService := services.NewSimulationService(
		seasonRepo, fencerRepo, tournamentRepo,
		tournamentService, eligibility, rankingService, logger,
	)
	exportService := services.NewExportService(
		seasonRepo, tournamentRepo, resultRepo,
		fencerRepo, rankingRepo, uploader, logger,
	)
	rosterService := services.NewRosterService(clubRepo, fencerRepo, rankingService, tx, logger)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go runStatusScheduler(schedulerCtx, tournamentService, logger)

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		authenticator,
		handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		handlers.NewFencerHandler(fencerService, rankingService),
		handlers.NewClubHandler(clubService),
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewRankingHandler(rankingService),
		handlers.NewSeasonHandler(seasonService, simulationService, exportService, rosterService),
		handlers.NewWebSocketHandler(hub),
	)

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
		logger.Info("starting server", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown started", slog.String("signal", sig.String()))
		stopScheduler()

		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("shutdown complete")
	}

	return nil
}

// runStatusScheduler периодически продвигает статусы турниров по
// календарю: открывает регистрацию и стартует турниры в день
// проведения. Первый прогон — сразу при старте.
func runStatusScheduler(ctx context.Context, tournaments *services.TournamentService, logger *slog.Logger) {
	ticker := time.NewTicker(statusUpdateInterval)
	defer ticker.Stop()

	runOnce := func() {
		if err := tournaments.AutoUpdateStatusesByDate(ctx); err != nil {
			logger.Error("automatic status update failed", slog.Any("error", err))
		}
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
