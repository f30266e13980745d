package models

import "time"

// BasalOrigin identifies what produced a basal interval.
type BasalOrigin string

// Basal interval origins. Scheduled intervals come from the pump's
// programmed basal profile; Algorithm intervals are temporary overrides
// issued by an automated dosing system; Suspended intervals record a
// zero-delivery suspension.
const (
	OriginScheduled BasalOrigin = "scheduled"
	OriginAlgorithm BasalOrigin = "algorithm"
	OriginSuspended BasalOrigin = "suspended"
)

// IsOverride reports whether this origin supersedes a scheduled program
// for its duration.
func (o BasalOrigin) IsOverride() bool {
	return o == OriginAlgorithm || o == OriginSuspended
}

// BasalInterval represents a constant-rate insulin delivery segment.
//
// The source system presents intervals already de-overlapped: for any
// instant in a requested range, exactly one interval of the effective
// delivery program covers it. Delivered amount is therefore always
// rate x clipped duration, regardless of origin.
type BasalInterval struct {
	ID        string      `json:"_id"`
	Category  string      `json:"category"` // e.g. "basal", "temp basal", "suspend"
	StartDate int64       `json:"startDate"` // Unix timestamp in milliseconds
	EndDate   int64       `json:"endDate"`   // Unix timestamp in milliseconds, >= StartDate
	Rate      float64     `json:"rate"`      // Units per hour
	Origin    BasalOrigin `json:"origin"`

	// ScheduledRate records what the unoverridden program would have
	// delivered during this span. Used for temp-basal classification
	// only, never for amount computation.
	ScheduledRate *float64 `json:"scheduledRate,omitempty"`
}

// StartTime returns the interval start time
func (b *BasalInterval) StartTime() time.Time {
	return time.UnixMilli(b.StartDate)
}

// EndTime returns the interval end time
func (b *BasalInterval) EndTime() time.Time {
	return time.UnixMilli(b.EndDate)
}

// DurationMinutes returns the interval length in minutes. Malformed
// intervals with EndDate before StartDate count as zero duration.
func (b *BasalInterval) DurationMinutes() float64 {
	if b.EndDate <= b.StartDate {
		return 0
	}
	return float64(b.EndDate-b.StartDate) / 60000.0
}

// Amount returns the insulin delivered over the whole interval in units.
func (b *BasalInterval) Amount() float64 {
	return b.Rate * b.DurationMinutes() / 60.0
}
