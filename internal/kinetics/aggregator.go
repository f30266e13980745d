package kinetics

import (
	"math"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

// basalStepMinutes is the sub-interval width used when folding a
// constant-rate basal segment through the decay curve. Each sub-step's
// delivered micro-dose is treated as an instant dose at the sub-step
// midpoint. Halving the step moves totals by well under 0.001 U at
// clinically plausible rates; widen it only if profiling demands.
const basalStepMinutes = 1.0

// FromTreatments folds recorded dose events and basal intervals through
// the decay curve to produce the combined IOB picture at queryMillis.
// Future-dated doses and the not-yet-elapsed tail of running intervals
// are excluded.
func FromTreatments(
	doses []models.DoseEvent,
	basals []models.BasalInterval,
	profile models.InsulinProfile,
	queryMillis int64,
) models.IOBResult {
	var bolusIOB, activity float64

	for i := range doses {
		dose := &doses[i]
		if dose.Date > queryMillis {
			continue
		}
		contrib := Contribution(dose.Units, dose.MinutesBefore(queryMillis), profile)
		bolusIOB += contrib.IOB
		activity += contrib.Activity
	}

	var basalIOB float64
	for i := range basals {
		iob, act := basalIntervalContribution(&basals[i], profile, queryMillis, basalStepMinutes)
		basalIOB += iob
		activity += act
	}

	total := bolusIOB + basalIOB
	return models.IOBResult{
		IOB:      total,
		Activity: &activity,
		BasalIOB: &basalIOB,
		Source:   models.SourceCarePortal,
	}
}

// basalIntervalContribution integrates one constant-rate segment by
// midpoint sub-stepping between its start and min(end, query time).
func basalIntervalContribution(
	interval *models.BasalInterval,
	profile models.InsulinProfile,
	queryMillis int64,
	stepMinutes float64,
) (iob, activity float64) {
	start := interval.StartDate
	end := interval.EndDate
	if end > queryMillis {
		end = queryMillis
	}
	if end <= start || interval.Rate == 0 {
		return 0, 0
	}

	totalMinutes := float64(end-start) / 60000.0
	steps := int(math.Ceil(totalMinutes / stepMinutes))

	for step := 0; step < steps; step++ {
		stepStart := float64(step) * stepMinutes
		width := stepMinutes
		if remaining := totalMinutes - stepStart; remaining < width {
			width = remaining
		}

		microDose := interval.Rate * width / 60.0
		midpointMillis := start + int64((stepStart+width/2)*60000)

		contrib := Contribution(microDose, float64(queryMillis-midpointMillis)/60000.0, profile)
		iob += contrib.IOB
		activity += contrib.Activity
	}

	return iob, activity
}
