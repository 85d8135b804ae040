package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enerscope/enerscope/internal/api"
	"github.com/enerscope/enerscope/internal/config"
	"github.com/enerscope/enerscope/internal/db"
	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/enerscope/enerscope/internal/provider/glowmarkt"
	"github.com/enerscope/enerscope/internal/provider/n3rgy"
	"github.com/enerscope/enerscope/internal/repository/sqlite"
	"github.com/enerscope/enerscope/internal/secrets"
	"github.com/enerscope/enerscope/internal/services"
	"github.com/enerscope/enerscope/internal/sync"
	"github.com/enerscope/enerscope/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("EnerScope Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("provider=%s", cfg.Provider)
	log.Debug("sync_worker_count=%d", cfg.SyncWorkerCount)
	log.Debug("sync_queue_size=%d", cfg.SyncQueueSize)
	log.Debug("window_days=%d", cfg.WindowDays)
	log.Debug("http_timeout_secs=%d", cfg.HTTPTimeoutSecs)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	repos := sqlite.NewSet(database.DB)
	secretStore := secrets.NewFileStore(cfg.DataDir)
	bus := events.NewBus()

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSecs) * time.Second}
	buildProvider := func(ctx context.Context) (provider.DataProvider, error) {
		switch cfg.Provider {
		case "n3rgy":
			apiKey, ok, err := secrets.LoadN3rgyAPIKey(secretStore)
			if err != nil || !ok {
				return nil, err
			}
			return n3rgy.New(apiKey,
				n3rgy.WithHTTPClient(httpClient),
				n3rgy.WithWindowDays(cfg.WindowDays),
			), nil
		default:
			creds, ok, err := secrets.LoadGlowmarktCredentials(secretStore)
			if err != nil || !ok {
				return nil, err
			}
			return glowmarkt.New(ctx, creds.Username, creds.Password,
				glowmarkt.WithHTTPClient(httpClient))
		}
	}

	// Missing or rejected credentials leave the engine idle, not broken: the
	// UI shows the client as unavailable until credentials are saved.
	prov, err := buildProvider(context.Background())
	if err != nil {
		log.Warn("provider unavailable at startup: %v", err)
		prov = nil
	}
	if prov == nil {
		log.Info("no %s credentials configured yet", cfg.Provider)
	}

	orchestrator := sync.NewOrchestrator(prov, repos, bus)
	syncPool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)

	srv := &api.Server{
		DB:            database,
		Consumption:   services.NewConsumptionService(repos),
		Tariffs:       services.NewTariffService(repos),
		Costs:         services.NewCostService(repos),
		Profiles:      services.NewProfileService(repos, bus),
		Reset:         services.NewResetService(repos, secretStore, bus),
		Orchestrator:  orchestrator,
		Secrets:       secretStore,
		Bus:           bus,
		SyncPool:      syncPool,
		BuildProvider: buildProvider,
	}

	ctx, cancel := context.WithCancel(context.Background())
	syncPool.Start(ctx)

	// Kick off a pass at startup so fresh data arrives without user action.
	syncPool.TrySubmit(&worker.SyncJob{Orchestrator: orchestrator})

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // event stream stays open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping workers")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping sync pool")
	syncPool.Stop()

	log.Info("===========================================")
	log.Info("EnerScope Server Stopped")
	log.Info("===========================================")
}
