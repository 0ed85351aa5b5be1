// Package poller implements the dashboard's poll loop: on a fixed cadence it
// fetches one reading from the ingestion endpoint and merges it into the
// rolling window.
//
// Key behaviors:
//   - One tick runs immediately on Start, then one per period.
//   - Ticks are serialized on a single goroutine. A slow tick delays the
//     cadence and never overlaps the next one.
//   - A failed tick becomes the user-visible error state and the schedule
//     keeps running. A successful tick clears it.
//   - Stop cancels the schedule without waiting for an in-flight tick, and a
//     tick cancelled by Stop records no error.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"envmonitor/internal/telemetry"
	"envmonitor/internal/types"
)

// DefaultPeriod is the poll cadence.
const DefaultPeriod = 5 * time.Second

// Fetcher retrieves one freshly persisted reading from the ingestion
// endpoint.
type Fetcher interface {
	FetchReading(ctx context.Context) (types.Reading, error)
}

// Window is the rolling window the poller writes to.
type Window interface {
	Merge(r types.Reading, now time.Time) error
	Len() int
}

// Config holds the dependencies for creating a Poller.
type Config struct {
	Fetcher Fetcher
	Window  Window
	Clock   Clock
	Metrics telemetry.Recorder
	Period  time.Duration
	Logger  *slog.Logger
}

// Poller drives Fetcher -> Window on a fixed cadence.
type Poller struct {
	fetcher Fetcher
	window  Window
	clock   Clock
	metrics telemetry.Recorder
	period  time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	status Status
}

// Status is the poller's user-visible state.
type Status struct {
	LastError     *TickError `json:"last_error,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	Ticks         int        `json:"ticks"`
	Failures      int        `json:"failures"`
	WindowSize    int        `json:"window_size"`
	Period        string     `json:"period"`
}

// TickError describes the most recent failed tick.
type TickError struct {
	Code    types.ErrorCode `json:"code"`
	Message string          `json:"message"`
	At      time.Time       `json:"at"`
}

// New creates a Poller. Clock defaults to RealClock, Metrics to a no-op
// recorder and Period to DefaultPeriod.
func New(cfg Config) *Poller {
	p := &Poller{
		fetcher: cfg.Fetcher,
		window:  cfg.Window,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		period:  cfg.Period,
		logger:  cfg.Logger,
	}
	if p.clock == nil {
		p.clock = RealClock{}
	}
	if p.metrics == nil {
		p.metrics = telemetry.Noop{}
	}
	if p.period <= 0 {
		p.period = DefaultPeriod
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Tick runs a single fetch-and-merge cycle and returns its error. The error
// is also recorded in Status unless ctx was cancelled.
func (p *Poller) Tick(ctx context.Context) error {
	start := p.clock.Now()

	reading, err := p.fetcher.FetchReading(ctx)
	if err == nil && reading.Timestamp.IsZero() {
		err = types.NewAppError(types.ErrCodeMalformedResponse, "response has no timestamp", nil)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		p.logger.DebugContext(ctx, "tick cancelled", "error", ctxErr)
		return ctxErr
	}

	if err != nil {
		p.recordFailure(ctx, err, start)
		return err
	}

	now := p.clock.Now()
	if mergeErr := p.window.Merge(reading, now); mergeErr != nil {
		// The in-memory window is updated either way; only durability is lost.
		p.logger.WarnContext(ctx, "window snapshot not persisted",
			"reading_id", reading.ID,
			"code", types.CodeOf(mergeErr),
			"error", mergeErr.Error(),
		)
	}

	size := p.window.Len()
	p.mu.Lock()
	p.status.Ticks++
	p.status.LastError = nil
	p.status.LastSuccessAt = &now
	p.mu.Unlock()

	p.metrics.RecordTick(ctx, types.OutcomeSuccess, now.Sub(start), size)
	p.logger.DebugContext(ctx, "tick complete",
		"reading_id", reading.ID,
		"window_size", size,
	)
	return nil
}

func (p *Poller) recordFailure(ctx context.Context, err error, start time.Time) {
	now := p.clock.Now()
	code := types.CodeOf(err)
	message := err.Error()
	if appErr, ok := types.AsAppError(err); ok {
		message = appErr.Message
	}

	p.mu.Lock()
	p.status.Ticks++
	p.status.Failures++
	p.status.LastError = &TickError{Code: code, Message: message, At: now}
	p.mu.Unlock()

	outcome := types.OutcomeFailure
	if code == types.ErrCodeMalformedResponse {
		outcome = types.OutcomeMalformed
	}
	p.metrics.RecordTick(ctx, outcome, now.Sub(start), p.window.Len())

	p.logger.ErrorContext(ctx, "error fetching data",
		"code", code,
		"error", err.Error(),
	)
}

// Status returns a copy of the current state.
func (p *Poller) Status() Status {
	p.mu.RLock()
	st := p.status
	p.mu.RUnlock()

	if st.LastError != nil {
		e := *st.LastError
		st.LastError = &e
	}
	if st.LastSuccessAt != nil {
		t := *st.LastSuccessAt
		st.LastSuccessAt = &t
	}
	st.WindowSize = p.window.Len()
	st.Period = p.period.String()
	return st
}

// Period returns the poll cadence.
func (p *Poller) Period() time.Duration {
	return p.period
}

// Handle controls a running schedule.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the schedule. No further ticks are dispatched and an in-flight
// tick is cancelled but not awaited. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
}

// Done is closed once the loop goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start runs the schedule until ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	ticker := p.clock.NewTicker(p.period)
	go func() {
		defer close(h.done)
		defer ticker.Stop()

		p.logger.InfoContext(ctx, "poll loop started", "period", p.period.String())
		p.runTick(ctx)
		for {
			select {
			case <-ctx.Done():
				p.logger.InfoContext(context.WithoutCancel(ctx), "poll loop stopped")
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					continue
				}
				p.runTick(ctx)
			}
		}
	}()
	return h
}

// Run blocks until ctx is cancelled. It is the errgroup-friendly form of
// Start.
func (p *Poller) Run(ctx context.Context) error {
	h := p.Start(ctx)
	<-h.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

func (p *Poller) runTick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "tick panicked", "panic", rec)
		}
	}()
	_ = p.Tick(ctx)
}
