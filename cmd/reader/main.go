// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command reader is the entry point for the Yomira Drive reader service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Install tracing (when an OTLP endpoint is configured).
//  4. Open the session store (Redis when configured, memory otherwise).
//  5. Open the reading-position store (bbolt file, or memory).
//  6. Wire the Drive client, directories and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-drive/internal/api"
	"github.com/taibuivan/yomira-drive/internal/core/library"
	"github.com/taibuivan/yomira-drive/internal/core/progress"
	"github.com/taibuivan/yomira-drive/internal/drive"
	"github.com/taibuivan/yomira-drive/internal/platform/config"
	"github.com/taibuivan/yomira-drive/internal/platform/constants"
	"github.com/taibuivan/yomira-drive/internal/platform/kv"
	redisstore "github.com/taibuivan/yomira-drive/internal/platform/redis"
	"github.com/taibuivan/yomira-drive/internal/platform/tracing"
)

// sessionKeyPrefix namespaces session keys inside a shared Redis.
const sessionKeyPrefix = "yomira-drive:"

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Yomira Drive] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("drive_configured", cfg.DriveConfigured()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives as long as the process; stops the rate limiter sweeper on exit.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. Tracing ────────────────────────────────────────────────────────
	shutdownTracing, err := tracing.Init(startupCtx, cfg.OTelEndpoint, constants.AppName, constants.AppVersion)
	must(log, err, "initialize tracing")
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error("tracing_shutdown_error", slog.Any("error", err))
		}
	}()

	// ── 4. Session Store ──────────────────────────────────────────────────
	var (
		sessionStore kv.Store = kv.NewMemory()
		checks       []api.Check
	)

	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		sessionStore = kv.NewRedis(rdb, sessionKeyPrefix, cfg.SessionTTL)
		checks = append(checks, api.Check{
			Name: "redis",
			Run:  func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	}

	// ── 5. Reading Positions ──────────────────────────────────────────────
	var positionStore kv.Store = kv.NewMemory()

	if cfg.PositionsPath != "" {
		bolt, err := kv.OpenBolt(cfg.PositionsPath)
		must(log, err, "open position store")
		defer func() {
			log.Info("closing position store")
			if cerr := bolt.Close(); cerr != nil {
				log.Error("position store close error", slog.Any("error", cerr))
			}
		}()
		positionStore = bolt
	}

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{Checks: checks}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	driveClient := drive.NewClient(drive.Options{
		BaseURL:  cfg.DriveBaseURL,
		APIKey:   cfg.DriveAPIKey,
		PageSize: cfg.DrivePageSize,
		Timeout:  cfg.DriveTimeout,
	}, log)

	progressService := progress.NewService(progress.NewKVStore(positionStore, cfg.PositionsMaxEntries), log)

	libraryService := library.NewService(
		library.NewStoryDirectory(driveClient, cfg.DriveRootFolderID, cfg.DriveConfigured(), log),
		library.NewChapterDirectory(driveClient, driveClient.DownloadURL, log),
		library.NewSessionIndex(sessionStore, log, library.WithMaxAge(cfg.SessionTTL)),
		driveClient,
		progressService,
		log,
	)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Library:   library.NewHandler(libraryService),
		Progress:  progress.NewHandler(progressService),
	}

	server := api.NewServer(rootCtx, cfg, log, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}

	// Let background chapter drains land in the session store before it closes.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := libraryService.Wait(drainCtx); err != nil {
		log.Warn("background_drains_abandoned", slog.Any("error", err))
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors must be returned
// and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
