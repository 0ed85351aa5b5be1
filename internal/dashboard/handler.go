// Package dashboard serves the read-only projection API over the rolling
// window under /v1/dashboard.
package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"envmonitor/internal/core"
	"envmonitor/internal/poller"
	"envmonitor/internal/projection"
	"envmonitor/internal/types"
)

// WindowReader is the read side of the rolling window.
type WindowReader interface {
	Snapshot() []types.Reading
	Horizon() time.Duration
}

// StatusSource reports the poll loop state.
type StatusSource interface {
	Status() poller.Status
}

// Handler serves the dashboard endpoints.
type Handler struct {
	window WindowReader
	status StatusSource
	now    func() time.Time
	logger *slog.Logger
}

// NewHandler wires the dashboard API. now defaults to time.Now when nil.
func NewHandler(window WindowReader, status StatusSource, now func() time.Time, logger *slog.Logger) *Handler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{window: window, status: status, now: now, logger: logger}
}

// RegisterRoutes mounts the /v1/dashboard routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1/dashboard", func(r chi.Router) {
		r.Get("/window", h.HandleWindow)
		r.Get("/series", h.HandleSeries)
		r.Get("/charts", h.HandleChartList)
		r.Get("/charts/{group}", h.HandleChart)
		r.Get("/latest", h.HandleLatest)
		r.Get("/marker", h.HandleMarker)
		r.Get("/display", h.HandleDisplay)
		r.Get("/status", h.HandleStatus)
	})
}

// WindowResponse is the full window plus its visible time range.
type WindowResponse struct {
	Readings []types.Reading `json:"readings"`
	Count    int             `json:"count"`
	Axis     projection.Axis `json:"axis"`
}

// HandleWindow returns every reading in the window.
func (h *Handler) HandleWindow(w http.ResponseWriter, r *http.Request) {
	snap := h.window.Snapshot()
	if snap == nil {
		snap = []types.Reading{}
	}
	core.JSON(w, r, http.StatusOK, WindowResponse{
		Readings: snap,
		Count:    len(snap),
		Axis:     projection.TimeAxis(h.now(), h.window.Horizon()),
	})
}

// SeriesResponse wraps the requested series.
type SeriesResponse struct {
	Series []projection.Series `json:"series"`
	Axis   projection.Axis     `json:"axis"`
}

// HandleSeries returns one series per field in ?fields=a,b. Without the
// parameter every measurement field is returned.
func (h *Handler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	fields, err := parseFields(r.URL.Query().Get("fields"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	series, err := projection.SeriesFor(h.window.Snapshot(), fields...)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, SeriesResponse{
		Series: series,
		Axis:   projection.TimeAxis(h.now(), h.window.Horizon()),
	})
}

func parseFields(raw string) ([]types.Field, error) {
	if strings.TrimSpace(raw) == "" {
		return types.MeasurementFields, nil
	}

	var fields []types.Field
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		f, ok := types.ParseField(name)
		if !ok {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidField, "unknown field: "+name, nil)
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return types.MeasurementFields, nil
	}
	return fields, nil
}

// HandleChartList returns the available chart group names.
func (h *Handler) HandleChartList(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, map[string]any{"groups": projection.ChartGroups()})
}

// ChartResponse is a chart plus its visible time range.
type ChartResponse struct {
	projection.Chart
	Axis projection.Axis `json:"axis"`
}

// HandleChart returns the chart for {group}.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	group := projection.ChartGroup(chi.URLParam(r, "group"))

	chart, err := projection.ChartFor(h.window.Snapshot(), group)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, ChartResponse{
		Chart: chart,
		Axis:  projection.TimeAxis(h.now(), h.window.Horizon()),
	})
}

// HandleLatest returns the newest reading, or 404 while the window is empty.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	view, ok := projection.Latest(h.window.Snapshot())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundReading, "no data", nil))
		return
	}
	core.JSON(w, r, http.StatusOK, view)
}

// HandleMarker returns the sensor map marker, or 404 while the window is
// empty.
func (h *Handler) HandleMarker(w http.ResponseWriter, r *http.Request) {
	marker, ok := projection.Marker(h.window.Snapshot())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundReading, "no data", nil))
		return
	}
	core.JSON(w, r, http.StatusOK, marker)
}

// HandleDisplay returns chart parameters for ?width=N.
func (h *Handler) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("width")
	width, err := strconv.Atoi(raw)
	if err != nil || width < 0 {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidWidth,
			"width must be a non-negative integer",
			err,
		))
		return
	}
	core.JSON(w, r, http.StatusOK, projection.DisplayParams(width))
}

// StatusResponse combines the poll loop state with the window horizon.
type StatusResponse struct {
	poller.Status
	Horizon string `json:"horizon"`
}

// HandleStatus returns the poll loop state. LastError is what the page shows
// as its error banner.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, StatusResponse{
		Status:  h.status.Status(),
		Horizon: h.window.Horizon().String(),
	})
}
