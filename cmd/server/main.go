package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cardfolio/cardfolio/internal/api"
	"github.com/cardfolio/cardfolio/internal/config"
	"github.com/cardfolio/cardfolio/internal/database"
	"github.com/cardfolio/cardfolio/internal/metrics"
	"github.com/cardfolio/cardfolio/internal/reports"
	"github.com/cardfolio/cardfolio/internal/repository"
	"github.com/cardfolio/cardfolio/internal/scheduler"
	"github.com/cardfolio/cardfolio/internal/services"
	"github.com/cardfolio/cardfolio/internal/undoredo"
)

func main() {
	cfg := config.MustLoad()
	setupLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	cardRepo := repository.NewCardRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	undoLog := undoredo.NewLog(cardRepo, saleRepo)

	dashboardService := services.NewDashboardService(db)
	snapshotService := services.NewSnapshotService(db)
	exportService := services.NewExportService(db, cfg.DBPath)
	importService := services.NewBulkImportService(db)
	reportGenerator := reports.NewGenerator(db)
	pokeClient := services.NewPokeAPIClient(cfg.PokeAPI.BaseURL, cfg.PokeAPI.RequestsPerSecond, cfg.PokeAPI.CacheSize)

	metrics.UpdateCollectionMetrics(db)

	sched, err := scheduler.New()
	if err != nil {
		slog.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	err = sched.NewIntervalJob("value-snapshot", func(ctx context.Context) error {
		return snapshotService.TakeDailySnapshot(ctx)
	}, cfg.Snapshot.Interval, cfg.Snapshot.StartImmediately)
	if err != nil {
		slog.Error("failed to schedule snapshot job", slog.Any("error", err))
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	router := api.SetupRouter(api.Deps{
		Cards:              cardRepo,
		Sales:              saleRepo,
		Log:                undoLog,
		Dashboard:          dashboardService,
		Snapshots:          snapshotService,
		Export:             exportService,
		Importer:           importService,
		Reports:            reportGenerator,
		PokeAPI:            pokeClient,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BackupDir:          cfg.BackupDir,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.Any("error", err))
	}

	slog.Info("server exited")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
