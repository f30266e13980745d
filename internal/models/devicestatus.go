package models

import (
	"strings"
	"time"
)

// DeviceSource ranks the autonomous systems that report IOB snapshots.
// Lower values win: a closed-loop controller knows about doses the care
// portal never sees, so its report beats a fresher pump-connect upload.
type DeviceSource int

// Device source tiers, highest priority first.
const (
	SourceClosedLoop DeviceSource = iota
	SourceOpenSource
	SourcePumpConnect
	SourceOther
)

// String returns a human-readable tier name
func (s DeviceSource) String() string {
	switch s {
	case SourceClosedLoop:
		return "closed-loop"
	case SourceOpenSource:
		return "open-source"
	case SourcePumpConnect:
		return "pump-connect"
	default:
		return "other"
	}
}

// ParseDeviceSource maps a raw devicestatus device tag onto a priority
// tier. Tags are free-form uploader identifiers ("loop://iPhone",
// "openaps://rig", "tconnectsync"), so matching is substring-based.
func ParseDeviceSource(tag string) DeviceSource {
	lower := strings.ToLower(tag)
	switch {
	case strings.Contains(lower, "loop"):
		return SourceClosedLoop
	case strings.Contains(lower, "openaps"):
		return SourceOpenSource
	case strings.Contains(lower, "connect"):
		return SourcePumpConnect
	default:
		return SourceOther
	}
}

// DeviceStatus is one IOB snapshot reported by an autonomous dosing
// system, one per system per poll.
type DeviceStatus struct {
	ID       string   `json:"_id"`
	Date     int64    `json:"date"` // Unix timestamp in milliseconds
	Device   string   `json:"device"`
	IOB      float64  `json:"iob"`
	Activity *float64 `json:"activity,omitempty"`
	BasalIOB *float64 `json:"basaliob,omitempty"`
}

// Time returns the time of the snapshot
func (d *DeviceStatus) Time() time.Time {
	return time.UnixMilli(d.Date)
}

// AgeMinutes returns the snapshot age relative to the reference time.
func (d *DeviceStatus) AgeMinutes(refMillis int64) float64 {
	return float64(refMillis-d.Date) / 60000.0
}

// Source returns the priority tier for this snapshot's device tag.
func (d *DeviceStatus) Source() DeviceSource {
	return ParseDeviceSource(d.Device)
}
