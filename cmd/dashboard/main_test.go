package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"envmonitor/internal/config"
	"envmonitor/internal/telemetry"
)

func TestNewMetrics_DisabledIsNoop(t *testing.T) {
	rec, err := newMetrics(context.Background(), config.MetricsConfig{Enabled: false}, "envmonitor-dashboard", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newMetrics: %v", err)
	}
	if _, ok := rec.(telemetry.Noop); !ok {
		t.Errorf("recorder = %T, want telemetry.Noop", rec)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		logger := newLogger(tt.level)
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("newLogger(%q) does not enable %v", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-1) {
			t.Errorf("newLogger(%q) enables level below %v", tt.level, tt.want)
		}
	}
}
