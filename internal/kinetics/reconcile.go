package kinetics

import (
	"github.com/nocturne-care/insulin-engine/internal/models"
)

// DefaultStaleMinutes is the age past which a device-reported IOB
// snapshot is no longer trusted.
const DefaultStaleMinutes = 30.0

// LastReport selects the single most trustworthy fresh IOB snapshot
// from the reported device statuses. Snapshots older than staleMinutes
// relative to queryMillis are discarded outright. Among the survivors,
// source priority decides first and recency breaks ties: a closed-loop
// report still inside the freshness bound beats a newer pump-connect
// upload.
//
// With nothing fresh to choose from, the result is zero IOB with an
// empty source.
func LastReport(statuses []models.DeviceStatus, queryMillis int64, staleMinutes float64) models.IOBResult {
	if staleMinutes <= 0 {
		staleMinutes = DefaultStaleMinutes
	}

	var best *models.DeviceStatus
	for i := range statuses {
		status := &statuses[i]
		if status.AgeMinutes(queryMillis) > staleMinutes {
			continue
		}
		if best == nil || betterReport(status, best) {
			best = status
		}
	}

	if best == nil {
		return models.IOBResult{}
	}

	return models.IOBResult{
		IOB:      best.IOB,
		Activity: best.Activity,
		BasalIOB: best.BasalIOB,
		Source:   best.Device,
	}
}

// betterReport reports whether candidate should replace current.
func betterReport(candidate, current *models.DeviceStatus) bool {
	cs, bs := candidate.Source(), current.Source()
	if cs != bs {
		return cs < bs
	}
	return candidate.Date > current.Date
}
