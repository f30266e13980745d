// Package profile resolves the insulin action-duration parameters
// supplied to the kinetics core.
package profile

import (
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

const defaultSensitivity = 50.0

// Resolver produces the InsulinProfile in effect at a query time.
// Profiles currently come from configuration; the query time parameter
// keeps call sites deterministic and leaves room for time-varying
// profiles later.
type Resolver struct {
	base models.InsulinProfile
}

// NewResolver builds a resolver around the configured base profile,
// filling in reference defaults for unset fields. The activity peak
// scales with DIA so a 6-hour insulin peaks at 150 minutes.
func NewResolver(base models.InsulinProfile) *Resolver {
	if base.DIA <= 0 {
		base.DIA = models.ReferenceDIAHours
	}
	if base.Sensitivity <= 0 {
		base.Sensitivity = defaultSensitivity
	}
	if base.PeakMinutes <= 0 {
		base.PeakMinutes = models.ReferencePeakMinutes * base.DIA / models.ReferenceDIAHours
	}
	return &Resolver{base: base}
}

// Resolve returns the profile in effect at the given time.
func (r *Resolver) Resolve(_ time.Time) models.InsulinProfile {
	return r.base
}
