package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"envmonitor/internal/config"
	"envmonitor/internal/telemetry"
)

func TestIsLambdaEnvironment(t *testing.T) {
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
	if !isLambdaEnvironment() {
		t.Error("expected Lambda mode when AWS_LAMBDA_RUNTIME_API is set")
	}
}

func TestNewMetrics_DisabledIsNoop(t *testing.T) {
	rec, err := newMetrics(context.Background(), config.MetricsConfig{}, "envmonitor-ingest", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newMetrics: %v", err)
	}
	if _, ok := rec.(telemetry.Noop); !ok {
		t.Errorf("recorder = %T, want telemetry.Noop", rec)
	}
}
