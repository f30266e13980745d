// Package service orchestrates care portal fetches and the kinetics and
// delivery computations behind each reporting request.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/delivery"
	"github.com/nocturne-care/insulin-engine/internal/kinetics"
	"github.com/nocturne-care/insulin-engine/internal/metrics"
	"github.com/nocturne-care/insulin-engine/internal/models"
	"github.com/nocturne-care/insulin-engine/internal/profile"
)

// DataSource feeds the engine with recorded treatments, the basal
// timeline and device status snapshots.
type DataSource interface {
	GetTreatments(ctx context.Context, from, to time.Time) ([]models.DoseEvent, error)
	GetBasalIntervals(ctx context.Context, from, to time.Time) ([]models.BasalInterval, error)
	GetDeviceStatuses(ctx context.Context, since time.Time) ([]models.DeviceStatus, error)
}

// Engine wires the pure kinetics/delivery core to a data source.
type Engine struct {
	logger       *slog.Logger
	source       DataSource
	profiles     *profile.Resolver
	staleMinutes float64
}

// NewEngine constructs the reporting engine.
func NewEngine(logger *slog.Logger, source DataSource, profiles *profile.Resolver, staleMinutes float64) *Engine {
	if staleMinutes <= 0 {
		staleMinutes = kinetics.DefaultStaleMinutes
	}
	return &Engine{
		logger:       logger,
		source:       source,
		profiles:     profiles,
		staleMinutes: staleMinutes,
	}
}

// CurrentIOB computes the authoritative insulin-on-board at the query
// time, reconciling device reports with the treatment record.
func (e *Engine) CurrentIOB(ctx context.Context, at time.Time) (*models.IOBResult, error) {
	started := time.Now()

	prof := e.profiles.Resolve(at)
	lookback := at.Add(-time.Duration(prof.DIA * float64(time.Hour)))

	doses, err := e.source.GetTreatments(ctx, lookback, at)
	if err != nil {
		return nil, e.fail("iob", started, fmt.Errorf("fetch treatments: %w", err))
	}
	basals, err := e.source.GetBasalIntervals(ctx, lookback, at)
	if err != nil {
		return nil, e.fail("iob", started, fmt.Errorf("fetch basal intervals: %w", err))
	}
	statuses, err := e.source.GetDeviceStatuses(ctx, at.Add(-time.Duration(e.staleMinutes*float64(time.Minute))))
	if err != nil {
		return nil, e.fail("iob", started, fmt.Errorf("fetch device statuses: %w", err))
	}

	result := kinetics.CalculateTotal(doses, basals, statuses, prof, at.UnixMilli(), e.staleMinutes)

	metrics.ObserveComputation("iob", time.Since(started), metrics.OutcomeSuccess)
	e.logger.Debug("computed IOB",
		slog.Float64("iob", result.IOB),
		slog.String("source", result.Source),
		slog.Int("doses", len(doses)),
		slog.Int("intervals", len(basals)),
	)
	return &result, nil
}

// DeliveryStatistics computes windowed delivery totals and the TDD.
func (e *Engine) DeliveryStatistics(ctx context.Context, start, end time.Time) (*models.DeliveryStatistics, error) {
	started := time.Now()

	doses, basals, err := e.fetchWindow(ctx, start, end)
	if err != nil {
		return nil, e.fail("delivery_statistics", started, err)
	}

	stats := delivery.Statistics(doses, basals, start.UnixMilli(), end.UnixMilli())

	metrics.ObserveComputation("delivery_statistics", time.Since(started), metrics.OutcomeSuccess)
	return &stats, nil
}

// DailyRatios computes the per-day basal/bolus breakdown for the window.
func (e *Engine) DailyRatios(ctx context.Context, start, end time.Time) (*models.DailyRatioReport, error) {
	started := time.Now()

	doses, basals, err := e.fetchWindow(ctx, start, end)
	if err != nil {
		return nil, e.fail("daily_ratios", started, err)
	}

	report := delivery.DailyRatios(doses, basals)

	metrics.ObserveComputation("daily_ratios", time.Since(started), metrics.OutcomeSuccess)
	return &report, nil
}

// BasalAnalysis computes basal-rate distribution analytics for the window.
func (e *Engine) BasalAnalysis(ctx context.Context, start, end time.Time) (*models.BasalAnalysis, error) {
	started := time.Now()

	basals, err := e.source.GetBasalIntervals(ctx, start, end)
	if err != nil {
		metrics.CarePortalError()
		return nil, e.fail("basal_analysis", started, fmt.Errorf("fetch basal intervals: %w", err))
	}

	analysis := delivery.BasalAnalysis(basals, start.UnixMilli(), end.UnixMilli())

	metrics.ObserveComputation("basal_analysis", time.Since(started), metrics.OutcomeSuccess)
	return &analysis, nil
}

func (e *Engine) fetchWindow(ctx context.Context, start, end time.Time) ([]models.DoseEvent, []models.BasalInterval, error) {
	doses, err := e.source.GetTreatments(ctx, start, end)
	if err != nil {
		metrics.CarePortalError()
		return nil, nil, fmt.Errorf("fetch treatments: %w", err)
	}
	basals, err := e.source.GetBasalIntervals(ctx, start, end)
	if err != nil {
		metrics.CarePortalError()
		return nil, nil, fmt.Errorf("fetch basal intervals: %w", err)
	}
	return doses, basals, nil
}

func (e *Engine) fail(operation string, started time.Time, err error) error {
	metrics.ObserveComputation(operation, time.Since(started), metrics.OutcomeError)
	e.logger.Error("computation failed", slog.String("operation", operation), slog.Any("error", err))
	return err
}
