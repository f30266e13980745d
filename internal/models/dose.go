// Package models contains data structures shared across the engine
package models

import "time"

// DoseEvent represents a discrete insulin administration recorded by the
// care portal: a manual bolus or an algorithm-issued micro-bolus.
type DoseEvent struct {
	ID          string  `json:"_id"`
	Date        int64   `json:"date"`        // Unix timestamp in milliseconds
	Units       float64 `json:"insulin"`     // Units of insulin
	IsAutomatic bool    `json:"isAutomatic"` // True for automated micro-boluses (SMB)
	EnteredBy   string  `json:"enteredBy"`
}

// Time returns the time of the dose event
func (d *DoseEvent) Time() time.Time {
	return time.UnixMilli(d.Date)
}

// MinutesBefore returns how many minutes before the reference time this
// dose was delivered. Negative for future-dated events.
func (d *DoseEvent) MinutesBefore(refMillis int64) float64 {
	return float64(refMillis-d.Date) / 60000.0
}
