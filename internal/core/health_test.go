package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockHealthProbe struct {
	name     string
	checkErr error
	delay    time.Duration
	panics   bool
}

func (m *mockHealthProbe) Name() string { return m.name }

func (m *mockHealthProbe) Check(ctx context.Context) error {
	if m.panics {
		panic("probe exploded")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.checkErr
}

func runHealth(t *testing.T, probes ...HealthProbe) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	srv := newTestServer(t)
	srv.HealthProbes = probes

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

func TestHandleHealth_NoProbes(t *testing.T) {
	rec, resp := runHealth(t)
	if rec.Code != http.StatusOK || resp.Status != "healthy" {
		t.Errorf("got %d %q", rec.Code, resp.Status)
	}
	if resp.Service != "test-service" {
		t.Errorf("service = %q", resp.Service)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	rec, resp := runHealth(t, &mockHealthProbe{name: "database"}, &mockHealthProbe{name: "snapshot"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	for _, name := range []string{"database", "snapshot"} {
		if resp.Components[name].Status != "healthy" {
			t.Errorf("component %q = %+v", name, resp.Components[name])
		}
	}
}

func TestHandleHealth_OneUnhealthy(t *testing.T) {
	rec, resp := runHealth(t,
		&mockHealthProbe{name: "database", checkErr: errors.New("connection refused")},
		&mockHealthProbe{name: "snapshot"},
	)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Components["database"].Message != "connection refused" {
		t.Errorf("database = %+v", resp.Components["database"])
	}
	if resp.Components["snapshot"].Status != "healthy" {
		t.Errorf("snapshot = %+v", resp.Components["snapshot"])
	}
}

func TestHandleHealth_PanickingProbe(t *testing.T) {
	rec, resp := runHealth(t, &mockHealthProbe{name: "ingest", panics: true})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if resp.Components["ingest"].Status != "unhealthy" {
		t.Errorf("ingest = %+v", resp.Components["ingest"])
	}
}

func TestHandleHealth_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the health check timeout")
	}
	rec, resp := runHealth(t, &mockHealthProbe{name: "slow", delay: 5 * time.Second})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if resp.Components["slow"].Status != "unhealthy" {
		t.Errorf("slow = %+v", resp.Components["slow"])
	}
}
