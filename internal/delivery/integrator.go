// Package delivery computes insulin delivery totals and statistics over
// reporting windows built from basal intervals and discrete dose events.
package delivery

import (
	"math"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

const dayMillis = 24 * 60 * 60 * 1000

// WindowTotals is the raw integration result for one window.
type WindowTotals struct {
	TotalBasal float64
	TotalBolus float64
	BolusCount int
}

// Integrate sums insulin delivered in [startMillis, endMillis): every
// dose event timestamped inside the window plus each basal interval's
// rate x overlap-duration, clipped to the window. Interval origin is
// irrelevant here; the upstream producer guarantees that intervals do
// not double-cover any instant of the effective program.
func Integrate(
	doses []models.DoseEvent,
	basals []models.BasalInterval,
	startMillis, endMillis int64,
) WindowTotals {
	var totals WindowTotals

	for i := range doses {
		dose := &doses[i]
		if dose.Date >= startMillis && dose.Date < endMillis {
			totals.TotalBolus += dose.Units
			totals.BolusCount++
		}
	}

	for i := range basals {
		totals.TotalBasal += overlapAmount(&basals[i], startMillis, endMillis)
	}

	return totals
}

// overlapAmount returns the units an interval delivers inside the
// window. Disjoint or malformed intervals contribute zero.
func overlapAmount(interval *models.BasalInterval, startMillis, endMillis int64) float64 {
	overlapStart := max(interval.StartDate, startMillis)
	overlapEnd := min(interval.EndDate, endMillis)
	if overlapEnd <= overlapStart {
		return 0
	}
	overlapMinutes := float64(overlapEnd-overlapStart) / 60000.0
	return interval.Rate * overlapMinutes / 60.0
}

// windowDayCount returns the number of (partial) days the window spans,
// never less than one.
func windowDayCount(startMillis, endMillis int64) int {
	if endMillis <= startMillis {
		return 1
	}
	days := int(math.Ceil(float64(endMillis-startMillis) / dayMillis))
	if days < 1 {
		days = 1
	}
	return days
}

// splitPercent derives the basal/bolus percentage split. An empty window
// yields 0/0 rather than dividing by zero.
func splitPercent(basal, bolus, total float64) (basalPct, bolusPct float64) {
	if total <= 0 {
		return 0, 0
	}
	return basal / total * 100, bolus / total * 100
}

// RoundTo rounds a value to the given number of decimal places. Internal
// statistics are never rounded; this is the one sanctioned step for
// display formatting.
func RoundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
