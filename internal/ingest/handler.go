// Package ingest implements GET /api/data: synthesize one reading, persist it
// and return the stored record.
package ingest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"envmonitor/internal/core"
	"envmonitor/internal/types"
)

// errorSummary is the fixed "error" field of every failed ingestion.
const errorSummary = "Failed to process environmental data"

// ReadingGenerator produces one candidate reading per call.
type ReadingGenerator interface {
	Generate() types.ReadingInput
}

// Mirror receives a copy of every persisted reading. Failures never fail
// the request.
type Mirror interface {
	MirrorReading(ctx context.Context, r types.Reading) error
}

// Handler serves the ingestion endpoint.
type Handler struct {
	store     types.ReadingStore
	generator ReadingGenerator
	validator *core.Validator
	mirror    Mirror
	logger    *slog.Logger
}

// NewHandler wires the endpoint. mirror may be nil.
func NewHandler(store types.ReadingStore, gen ReadingGenerator, v *core.Validator, mirror Mirror, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		generator: gen,
		validator: v,
		mirror:    mirror,
		logger:    logger,
	}
}

// RegisterRoutes mounts GET /api/data.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/data", h.HandleGetData)
}

// HandleGetData runs one ingestion and writes the persisted reading, or a
// 500 with the structured error body.
func (h *Handler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	reading, err := h.Ingest(r.Context())
	if err != nil {
		logger := types.LoggerFromContext(r.Context(), h.logger)
		logger.ErrorContext(r.Context(), "ingestion failed",
			"code", types.CodeOf(err),
			"error", err.Error(),
		)
		core.ErrorWithSummary(w, r, http.StatusInternalServerError, errorSummary, err)
		return
	}

	core.JSON(w, r, http.StatusOK, reading)
}

// Ingest performs one acquire, ping, generate, validate, create cycle. The
// store session is released on every path. Failures are *types.AppError
// with StoreUnavailable, InvalidPayload or PersistenceFailure codes; nothing
// is retried.
func (h *Handler) Ingest(ctx context.Context) (*types.Reading, error) {
	sess, err := h.store.Acquire(ctx)
	if err != nil {
		return nil, asStoreUnavailable(err)
	}
	defer sess.Release()

	if err := sess.Ping(ctx); err != nil {
		return nil, asStoreUnavailable(err)
	}

	candidate := h.generator.Generate()

	if err := h.validator.ValidateStruct(candidate, types.ErrCodeInvalidPayload, "Invalid mock data structure"); err != nil {
		return nil, err
	}

	reading, err := sess.CreateReading(ctx, candidate)
	if err != nil {
		if _, ok := types.AsAppError(err); ok {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrCodePersistenceFailure, "Failed to create environmental data record", err)
	}

	h.mirrorBestEffort(ctx, *reading)
	return reading, nil
}

func (h *Handler) mirrorBestEffort(ctx context.Context, r types.Reading) {
	if h.mirror == nil {
		return
	}
	if err := h.mirror.MirrorReading(ctx, r); err != nil {
		types.LoggerFromContext(ctx, h.logger).WarnContext(ctx, "reading mirror failed",
			"reading_id", r.ID,
			"error", err.Error(),
		)
	}
}

func asStoreUnavailable(err error) error {
	if appErr, ok := types.AsAppError(err); ok && appErr.Code == types.ErrCodeStoreUnavailable {
		return err
	}
	return types.NewAppError(types.ErrCodeStoreUnavailable, "Failed to connect to the database", err)
}
