// Package external holds the outbound clients of envmonitor: the dashboard's
// fetch client for the ingestion endpoint and the InfluxDB reading mirror.
// HTTP calls go through BaseClient, which applies circuit breaking, request
// ID propagation and error mapping.
package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"envmonitor/internal/types"
)

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings returns the breaker defaults.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, OpenTimeout: 30 * time.Second}
}

// BaseClient wraps an *http.Client and a circuit breaker to enforce consistent
// resilience patterns on all outbound HTTP calls. Each Do is a single
// attempt; callers own their retry schedule.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewBaseClient creates a BaseClient with its own named circuit breaker.
func NewBaseClient(httpClient *http.Client, breakerName string, breaker BreakerSettings, userAgent string) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breaker.FailureThreshold
		},
		// A caller abandoning the request says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
	}
}

// BreakerState reports the current circuit breaker state.
func (c *BaseClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Do executes the HTTP request with:
//  1. X-Request-Id propagation from context
//  2. User-Agent header injection
//  3. Circuit breaker wrapping (429/5xx count as failures)
//  4. Error mapping to types.AppError
//
// Any response other than 429/5xx is returned as-is and the caller closes
// its body.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if reqID := types.GetRequestID(req.Context()); reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})
	if err == nil {
		return resp, nil
	}

	if resp != nil {
		resp.Body.Close()
	}
	return nil, c.mapError(resp, err)
}

// mapError translates HTTP-level failures into FetchFailure AppErrors.
func (c *BaseClient) mapError(resp *http.Response, err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeFetchFailure,
			"upstream unavailable: circuit breaker is open",
			err,
		)
	}

	if resp != nil {
		return types.NewAppError(
			types.ErrCodeFetchFailure,
			fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
			err,
		)
	}

	return types.NewAppError(types.ErrCodeFetchFailure, "upstream request failed", err)
}
