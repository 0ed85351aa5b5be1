// Package core provides the HTTP chassis shared by the envmonitor binaries.
// It creates a chi router usable both as a standard HTTP server and behind
// AWS API Gateway (see LambdaHandler), and applies the cross-cutting concerns
// (panic recovery, request IDs, logging, CORS, metrics) before requests
// reach domain handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// MetricsCollector defines the interface for recording API telemetry.
// Implementations record request latency and count metrics to CloudWatch
// or equivalent backends.
type MetricsCollector interface {
	// RecordRequest records latency and count for one completed request.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server encapsulates the dependencies of one HTTP service so tests can
// inject fakes and each binary can mount its own routes.
type Server struct {
	Service        string
	Logger         *slog.Logger
	Metrics        MetricsCollector
	HealthProbes   []HealthProbe
	AllowedOrigins []string
	RequestTimeout time.Duration

	// RouteRegistrars mount domain handlers on the root router. They are
	// populated by the entry point to avoid import cycles between core and
	// handler packages.
	RouteRegistrars []func(chi.Router)

	// Closers are invoked in order by Shutdown.
	Closers []func(ctx context.Context) error

	router *chi.Mux
}

// NewServer prepares a server for route mounting. The caller mounts routes
// (via MountRoutes) after setting optional fields.
func NewServer(service string, logger *slog.Logger) (*Server, error) {
	if service == "" {
		return nil, fmt.Errorf("service name must not be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Service: service,
		Logger:  logger,
		router:  chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
// Used by http.Server (local) and LambdaHandler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server resources by running the registered closers.
// All closers run; the first error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated", "service", s.Service)

	var firstErr error
	for _, closeFn := range s.Closers {
		if err := closeFn(ctx); err != nil {
			s.Logger.Error("error releasing server resource", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.Logger.Info("server shutdown complete", "service", s.Service)
	return firstErr
}
