package models

// DoseContribution is the decay-model output for a single dose at a
// query instant.
type DoseContribution struct {
	IOB      float64 `json:"iobContrib"` // Remaining active units, never negative
	Activity float64 `json:"activityContrib"`
}

// SourceCarePortal labels IOB results computed from recorded treatments
// rather than reported by a device.
const SourceCarePortal = "Care Portal"

// IOBResult is a combined insulin-on-board figure with its provenance.
type IOBResult struct {
	IOB      float64  `json:"iob"`
	Activity *float64 `json:"activity,omitempty"`
	BasalIOB *float64 `json:"basaliob,omitempty"`

	// TreatmentIOB carries the treatment-derived figure alongside a
	// device-reported one for diagnostics. Never silently dropped.
	TreatmentIOB *float64 `json:"treatmentIob,omitempty"`

	// Source is empty only for the zero-valued no-data fallback.
	Source string `json:"source"`
}

// DeliveryStatistics summarises insulin delivery over a reporting window.
type DeliveryStatistics struct {
	TotalBasal   float64 `json:"totalBasal"`
	TotalBolus   float64 `json:"totalBolus"`
	TotalInsulin float64 `json:"totalInsulin"`
	TDD          float64 `json:"tdd"` // TotalInsulin normalised per day
	BasalPercent float64 `json:"basalPercent"`
	BolusPercent float64 `json:"bolusPercent"`
	BolusCount   int     `json:"bolusCount"`
	DayCount     int     `json:"dayCount"`
}

// DailyRatio is one calendar day's basal/bolus breakdown.
type DailyRatio struct {
	Date         string  `json:"date"` // YYYY-MM-DD, UTC
	Basal        float64 `json:"basal"`
	Bolus        float64 `json:"bolus"`
	Total        float64 `json:"total"`
	BasalPercent float64 `json:"basalPercent"`
	BolusPercent float64 `json:"bolusPercent"`
}

// DailyRatioReport is the ordered per-day breakdown over the span of the
// input data.
type DailyRatioReport struct {
	Days       []DailyRatio `json:"dailyData"`
	AverageTDD float64      `json:"averageTdd"`
}

// BasalRateStats describes the distribution of basal rates in a window.
type BasalRateStats struct {
	Count          int     `json:"count"`
	MinRate        float64 `json:"minRate"`
	MaxRate        float64 `json:"maxRate"`
	AvgRate        float64 `json:"avgRate"`
	TotalDelivered float64 `json:"totalDelivered"`
}

// TempBasalInfo classifies override intervals against their scheduled
// rates. A zero-rate override with a positive scheduled rate counts as
// both low and zero.
type TempBasalInfo struct {
	Total     int `json:"total"`
	HighTemps int `json:"highTemps"`
	LowTemps  int `json:"lowTemps"`
	ZeroTemps int `json:"zeroTemps"`
}

// BasalAnalysis is the combined basal-rate report for a window.
type BasalAnalysis struct {
	Stats      BasalRateStats `json:"stats"`
	TempBasals TempBasalInfo  `json:"tempBasalInfo"`
}
