// Package kinetics implements the insulin pharmacokinetic model: the
// per-dose decay curve, treatment-based IOB aggregation, and the
// reconciliation of IOB reports from autonomous dosing systems.
package kinetics

import (
	"github.com/nocturne-care/insulin-engine/internal/models"
)

// Coefficients of the legacy biphasic activity curve. They are an
// empirical fit for a 3-hour action duration peaking at 75 minutes, and
// historical results depend on these exact values. Keep verbatim.
const (
	risingCurveCoeff  = 0.001852
	fallingQuadCoeff  = 0.001323
	fallingLinCoeff   = 0.054233
	fallingConstCoeff = 0.55556

	referenceDurationMinutes = models.ReferenceDIAHours * 60
)

// Contribution evaluates the decay curve for a single dose: the units
// still on board and the instantaneous activity, elapsedMinutes after
// delivery. Elapsed time is scaled by DIA/3h before curve evaluation so
// the same polynomial serves every action duration.
//
// The function is total: a not-yet-active dose contributes its full
// units with zero activity, and anything at or past the action duration
// contributes nothing.
func Contribution(units, elapsedMinutes float64, profile models.InsulinProfile) models.DoseContribution {
	if elapsedMinutes <= 0 {
		return models.DoseContribution{IOB: units}
	}
	if elapsedMinutes >= profile.DurationMinutes() {
		return models.DoseContribution{}
	}

	// Scale onto the 3-hour reference curve.
	m := elapsedMinutes * models.ReferenceDIAHours / profile.DIA

	var iob, activity float64
	if m < models.ReferencePeakMinutes {
		x1 := m/5 + 1
		iob = units * (1 - risingCurveCoeff*x1*x1 + risingCurveCoeff*x1)
		activity = profile.Sensitivity * units * (2 / profile.DIA / 60 / models.ReferencePeakMinutes) * m
	} else {
		x2 := (m - models.ReferencePeakMinutes) / 5
		iob = units * (fallingQuadCoeff*x2*x2 - fallingLinCoeff*x2 + fallingConstCoeff)
		activity = profile.Sensitivity * units *
			(2/profile.DIA/60 - (m-models.ReferencePeakMinutes)*2/profile.DIA/60/(referenceDurationMinutes-models.ReferencePeakMinutes))
	}

	// The falling branch dips fractionally below zero right before the
	// tail cutoff. Clamp rather than report negative insulin.
	if iob < 0 {
		iob = 0
	}

	return models.DoseContribution{IOB: iob, Activity: activity}
}
