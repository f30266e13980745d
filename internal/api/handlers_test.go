package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

type fakeEngine struct {
	iob      *models.IOBResult
	stats    *models.DeliveryStatistics
	report   *models.DailyRatioReport
	analysis *models.BasalAnalysis
	err      error

	gotAt    time.Time
	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeEngine) CurrentIOB(_ context.Context, at time.Time) (*models.IOBResult, error) {
	f.gotAt = at
	return f.iob, f.err
}

func (f *fakeEngine) DeliveryStatistics(_ context.Context, start, end time.Time) (*models.DeliveryStatistics, error) {
	f.gotStart, f.gotEnd = start, end
	return f.stats, f.err
}

func (f *fakeEngine) DailyRatios(_ context.Context, start, end time.Time) (*models.DailyRatioReport, error) {
	f.gotStart, f.gotEnd = start, end
	return f.report, f.err
}

func (f *fakeEngine) BasalAnalysis(_ context.Context, start, end time.Time) (*models.BasalAnalysis, error) {
	f.gotStart, f.gotEnd = start, end
	return f.analysis, f.err
}

func testHandlers(engine Engine) *Handlers {
	h := NewHandlers(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func TestHealth(t *testing.T) {
	router := NewRouter(testHandlers(&fakeEngine{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCurrentIOB(t *testing.T) {
	engine := &fakeEngine{iob: &models.IOBResult{IOB: 1.25, Source: "loop://iPhone"}}
	router := NewRouter(testHandlers(engine))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/iob?at=2024-03-15T10:00:00Z", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result models.IOBResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.IOB != 1.25 || result.Source != "loop://iPhone" {
		t.Errorf("result = %+v", result)
	}
	if !engine.gotAt.Equal(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("at = %v, want parsed query time", engine.gotAt)
	}
}

func TestCurrentIOB_MillisParam(t *testing.T) {
	engine := &fakeEngine{iob: &models.IOBResult{}}
	router := NewRouter(testHandlers(engine))

	at := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	rec := httptest.NewRecorder()
	url := "/api/v1/iob?at=" + strconv.FormatInt(at.UnixMilli(), 10)
	router.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !engine.gotAt.Equal(at) {
		t.Errorf("at = %v, want %v", engine.gotAt, at)
	}
}

func TestCurrentIOB_DefaultsToNow(t *testing.T) {
	engine := &fakeEngine{iob: &models.IOBResult{}}
	router := NewRouter(testHandlers(engine))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/iob", nil))

	if !engine.gotAt.Equal(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("at = %v, want handler clock", engine.gotAt)
	}
}

func TestCurrentIOB_BadParam(t *testing.T) {
	router := NewRouter(testHandlers(&fakeEngine{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/iob?at=yesterday", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCurrentIOB_EngineError(t *testing.T) {
	router := NewRouter(testHandlers(&fakeEngine{err: errors.New("portal down")}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/iob", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestDeliveryStatistics_DefaultWindow(t *testing.T) {
	engine := &fakeEngine{stats: &models.DeliveryStatistics{TotalBasal: 24, TDD: 24}}
	router := NewRouter(testHandlers(engine))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/statistics/delivery", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if engine.gotEnd.Sub(engine.gotStart) != 24*time.Hour {
		t.Errorf("default window = %v, want 24h", engine.gotEnd.Sub(engine.gotStart))
	}

	var stats models.DeliveryStatistics
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats.TDD != 24 {
		t.Errorf("TDD = %f, want 24", stats.TDD)
	}
}

func TestDailyRatios(t *testing.T) {
	engine := &fakeEngine{report: &models.DailyRatioReport{
		Days:       []models.DailyRatio{{Date: "2024-03-15", Total: 30}},
		AverageTDD: 30,
	}}
	router := NewRouter(testHandlers(engine))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/statistics/daily?start=2024-03-15T00:00:00Z&end=2024-03-16T00:00:00Z", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report models.DailyRatioReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(report.Days) != 1 || report.AverageTDD != 30 {
		t.Errorf("report = %+v", report)
	}
}

func TestBasalAnalysis(t *testing.T) {
	engine := &fakeEngine{analysis: &models.BasalAnalysis{
		TempBasals: models.TempBasalInfo{Total: 2, HighTemps: 1, LowTemps: 1},
	}}
	router := NewRouter(testHandlers(engine))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/statistics/basal", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var analysis models.BasalAnalysis
	if err := json.NewDecoder(rec.Body).Decode(&analysis); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if analysis.TempBasals.Total != 2 {
		t.Errorf("TempBasals.Total = %d, want 2", analysis.TempBasals.Total)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := NewRouter(testHandlers(&fakeEngine{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want caller-supplied id kept", got)
	}
}
