package models

// Reference parameters of the legacy activity curve family: fitted for a
// 3-hour action duration peaking at 75 minutes.
const (
	ReferenceDIAHours    = 3.0
	ReferencePeakMinutes = 75.0
)

// InsulinProfile carries the action-duration parameters for one query.
// Profiles are resolved by the caller and passed opaquely into the
// kinetics core.
type InsulinProfile struct {
	DIA         float64 `json:"dia" yaml:"dia"`                 // Duration of insulin action in hours
	PeakMinutes float64 `json:"peakMinutes" yaml:"peakMinutes"` // Activity peak in (unscaled) minutes
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity"` // ISF, mg/dL per unit
}

// DefaultInsulinProfile returns the reference 3-hour profile.
func DefaultInsulinProfile() InsulinProfile {
	return InsulinProfile{
		DIA:         ReferenceDIAHours,
		PeakMinutes: ReferencePeakMinutes,
		Sensitivity: 50.0,
	}
}

// DurationMinutes returns the total action duration in minutes.
func (p InsulinProfile) DurationMinutes() float64 {
	return p.DIA * 60.0
}
