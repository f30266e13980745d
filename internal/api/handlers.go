package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

// Engine is the reporting surface the handlers expose.
type Engine interface {
	CurrentIOB(ctx context.Context, at time.Time) (*models.IOBResult, error)
	DeliveryStatistics(ctx context.Context, start, end time.Time) (*models.DeliveryStatistics, error)
	DailyRatios(ctx context.Context, start, end time.Time) (*models.DailyRatioReport, error)
	BasalAnalysis(ctx context.Context, start, end time.Time) (*models.BasalAnalysis, error)
}

// Handlers adapts the engine to HTTP.
type Handlers struct {
	engine Engine
	logger *slog.Logger

	// now is the clock used for default query times; tests override it.
	now func() time.Time
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(engine Engine, logger *slog.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// CurrentIOB serves GET /api/v1/iob?at=<RFC3339|unix-millis>, defaulting
// to the current time.
func (h *Handlers) CurrentIOB(w http.ResponseWriter, r *http.Request) {
	at, err := parseTimeParam(r, "at", h.now())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.engine.CurrentIOB(r.Context(), at)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.writeJSON(w, result)
}

// DeliveryStatistics serves GET /api/v1/statistics/delivery with
// start/end window parameters, defaulting to the last 24 hours.
func (h *Handlers) DeliveryStatistics(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseWindow(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	stats, err := h.engine.DeliveryStatistics(r.Context(), start, end)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.writeJSON(w, stats)
}

// DailyRatios serves GET /api/v1/statistics/daily.
func (h *Handlers) DailyRatios(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseWindow(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.engine.DailyRatios(r.Context(), start, end)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.writeJSON(w, report)
}

// BasalAnalysis serves GET /api/v1/statistics/basal.
func (h *Handlers) BasalAnalysis(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseWindow(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	analysis, err := h.engine.BasalAnalysis(r.Context(), start, end)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.writeJSON(w, analysis)
}

func (h *Handlers) parseWindow(r *http.Request) (start, end time.Time, err error) {
	now := h.now()
	end, err = parseTimeParam(r, "end", now)
	if err != nil {
		return
	}
	start, err = parseTimeParam(r, "start", end.Add(-24*time.Hour))
	return
}

// parseTimeParam reads a query parameter as RFC3339 or Unix
// milliseconds, falling back to the given default when absent.
func parseTimeParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(millis), nil
	}
	return time.Time{}, &badParamError{name: name, value: raw}
}

type badParamError struct {
	name  string
	value string
}

func (e *badParamError) Error() string {
	return "invalid " + e.name + " parameter: " + e.value
}

func (h *Handlers) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encoding response", slog.Any("error", err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, code int, err error) {
	h.logger.Warn("request failed", slog.Int("status", code), slog.Any("error", err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
