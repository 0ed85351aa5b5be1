package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"envmonitor/internal/types"
)

// maxReadingBodySize caps how much of an ingestion response is read.
const maxReadingBodySize = 64 << 10

// IngestClient fetches freshly persisted readings from the ingestion
// endpoint. Every GET creates a record upstream, so it is never retried.
type IngestClient struct {
	base *BaseClient
	url  string
}

// NewIngestClient creates a client for the GET endpoint at url, polled every
// pollPeriod. The breaker never outlives one poll period, so every tick
// reaches the endpoint: a tripped breaker only marks the upstream unhealthy
// and turns the next tick into its half-open trial.
func NewIngestClient(url string, timeout, pollPeriod time.Duration, userAgent string) *IngestClient {
	base := NewBaseClient(
		&http.Client{Timeout: timeout},
		"ingest-api",
		IngestBreakerSettings(pollPeriod),
		userAgent,
	)
	return &IngestClient{base: base, url: url}
}

// IngestBreakerSettings opens the breaker for half a poll period.
func IngestBreakerSettings(pollPeriod time.Duration) BreakerSettings {
	s := DefaultBreakerSettings()
	if pollPeriod > 0 {
		s.OpenTimeout = pollPeriod / 2
	}
	return s
}

// readingEnvelope detects whether the upstream supplied an id at all, which
// a plain int64 cannot distinguish from zero.
type readingEnvelope struct {
	ID *int64 `json:"id"`
	types.Reading
}

// FetchReading performs one GET. A transport failure or non-2xx status is a
// FetchFailure; a 2xx body that does not decode to a Reading with an id is a
// MalformedResponse.
func (c *IngestClient) FetchReading(ctx context.Context) (types.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return types.Reading{}, types.NewAppError(types.ErrCodeFetchFailure, "invalid ingest URL", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return types.Reading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Reading{}, types.NewAppError(
			types.ErrCodeFetchFailure,
			fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadingBodySize))
	if err != nil {
		return types.Reading{}, types.NewAppError(types.ErrCodeFetchFailure, "failed to read response body", err)
	}

	var env readingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return types.Reading{}, types.NewAppError(types.ErrCodeMalformedResponse, "response is not a reading", err)
	}
	if env.ID == nil {
		return types.Reading{}, types.NewAppError(types.ErrCodeMalformedResponse, "response has no id", nil)
	}

	reading := env.Reading
	reading.ID = *env.ID
	return reading, nil
}

// Check implements core.HealthProbe by reporting the circuit breaker state.
// It never calls upstream, since any GET would create a record.
func (c *IngestClient) Check(context.Context) error {
	if state := c.base.BreakerState(); state == gobreaker.StateOpen {
		return fmt.Errorf("ingest circuit breaker is %s", state)
	}
	return nil
}

// Name implements core.HealthProbe.
func (c *IngestClient) Name() string { return "ingest" }
