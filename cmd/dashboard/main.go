// Package main is the entry point for the envmonitor dashboard service.
//
// It restores the rolling window from its snapshot file, starts the poll
// loop against the ingestion API, and serves the /v1/dashboard projection
// API. The poll loop and the HTTP server run under one errgroup: a signal or
// a failure in either stops both.
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

	"golang.org/x/sync/errgroup"

	"envmonitor/internal/config"
	"envmonitor/internal/core"
	"envmonitor/internal/dashboard"
	"envmonitor/internal/external"
	"envmonitor/internal/poller"
	"envmonitor/internal/telemetry"
	"envmonitor/internal/window"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadDashboardConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("dashboard starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"ingest_url", cfg.Poller.IngestURL,
		"poll_interval", cfg.Poller.Interval.String(),
		"horizon", cfg.Window.Horizon.String(),
	)
	if cfg.Poller.Interval > cfg.Window.Horizon {
		logger.Warn("poll interval exceeds window horizon; the window will be empty between ticks",
			"poll_interval", cfg.Poller.Interval.String(),
			"horizon", cfg.Window.Horizon.String(),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := window.NewFileStorage(cfg.Window.SnapshotDir)
	if err != nil {
		return fmt.Errorf("opening snapshot storage: %w", err)
	}

	store := window.New(storage,
		window.WithHorizon(cfg.Window.Horizon),
		window.WithSnapshotKey(cfg.Window.SnapshotKey),
		window.WithLogger(logger.With("component", "window")),
	)
	store.Restore(time.Now().UTC())

	metrics, err := newMetrics(ctx, cfg.Metrics, cfg.Service, logger)
	if err != nil {
		_ = storage.Close()
		return err
	}

	client := external.NewIngestClient(cfg.Poller.IngestURL, cfg.Poller.RequestTimeout, cfg.Poller.Interval, cfg.Poller.UserAgent)

	p := poller.New(poller.Config{
		Fetcher: client,
		Window:  store,
		Metrics: metrics,
		Period:  cfg.Poller.Interval,
		Logger:  logger.With("component", "poller"),
	})

	srv, err := core.NewServer(cfg.Service, logger)
	if err != nil {
		_ = storage.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.AllowedOrigins = cfg.Server.CorsAllowedOrigins
	srv.RequestTimeout = cfg.Server.RequestTimeout
	srv.Metrics = metrics
	srv.HealthProbes = append(srv.HealthProbes, client, storage)
	srv.Closers = append(srv.Closers, func(context.Context) error {
		return storage.Close()
	})

	handler := dashboard.NewHandler(store, p, nil, logger)
	srv.RouteRegistrars = append(srv.RouteRegistrars, handler.RegisterRoutes)
	srv.MountRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown: %w", err)
	}

	if runErr == nil {
		logger.Info("dashboard stopped cleanly", "window_size", store.Len())
	}
	return runErr
}

// newMetrics returns a CloudWatch recorder when metrics are enabled and a
// no-op recorder otherwise.
func newMetrics(ctx context.Context, cfg config.MetricsConfig, service string, logger *slog.Logger) (telemetry.Recorder, error) {
	if !cfg.Enabled {
		return telemetry.Noop{}, nil
	}
	client, err := telemetry.NewCloudWatchClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating cloudwatch client: %w", err)
	}
	return telemetry.NewCloudWatchMetrics(client, cfg.Namespace, service, logger), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
