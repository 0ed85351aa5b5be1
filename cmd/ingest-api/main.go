// Package main is the entry point for the envmonitor ingestion API.
//
// It loads configuration, connects the PostgreSQL pool, ensures the schema,
// and serves GET /api/data and GET /health through the core chassis.
//
// Inside AWS Lambda the router is driven by API Gateway proxy events;
// everywhere else it runs as a standard HTTP server with graceful shutdown
// on SIGINT/SIGTERM.
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

	"github.com/aws/aws-lambda-go/lambda"

	"envmonitor/internal/config"
	"envmonitor/internal/core"
	"envmonitor/internal/db"
	"envmonitor/internal/external"
	"envmonitor/internal/generator"
	"envmonitor/internal/ingest"
	"envmonitor/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadIngestConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("ingest API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}

	if cfg.Database.AutoMigrate {
		schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := db.EnsureSchema(schemaCtx, pool)
		cancel()
		if err != nil {
			pool.Close()
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}

	srv, err := core.NewServer(cfg.Service, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.AllowedOrigins = cfg.Server.CorsAllowedOrigins
	srv.RequestTimeout = cfg.Server.RequestTimeout
	srv.HealthProbes = append(srv.HealthProbes, db.NewPoolProbe(pool))
	srv.Closers = append(srv.Closers, func(context.Context) error {
		pool.Close()
		return nil
	})

	metrics, err := newMetrics(ctx, cfg.Metrics, cfg.Service, logger)
	if err != nil {
		pool.Close()
		return err
	}
	srv.Metrics = metrics

	var mirror ingest.Mirror
	if cfg.Influx.Enabled() {
		influx := external.NewInfluxMirror(cfg.Influx.URL, cfg.Influx.Token.Unmask(), cfg.Influx.Org, cfg.Influx.Bucket)
		mirror = influx
		srv.Closers = append(srv.Closers, func(context.Context) error {
			influx.Close()
			return nil
		})
		logger.Info("influx mirror enabled", "url", cfg.Influx.URL, "bucket", cfg.Influx.Bucket)
	}

	handler := ingest.NewHandler(
		db.NewPoolStore(pool, cfg.Database.AcquireTimeout),
		generator.New(cfg.Generator.Latitude, cfg.Generator.Longitude),
		core.NewValidator(logger),
		mirror,
		logger,
	)
	srv.RouteRegistrars = append(srv.RouteRegistrars, handler.RegisterRoutes)
	srv.MountRoutes()

	if isLambdaEnvironment() {
		logger.Info("running in Lambda mode")
		lambda.Start(core.NewLambdaHandler(srv.Handler()).Handle)
		return nil
	}

	return runHTTPServer(srv, cfg.Server.Port, logger)
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

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasFunctionName := os.LookupEnv("AWS_LAMBDA_FUNCTION_NAME")
	return hasRuntimeAPI || hasFunctionName
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, port string, logger *slog.Logger) error {
	addr := ":" + port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
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
