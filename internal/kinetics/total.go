package kinetics

import (
	"github.com/nocturne-care/insulin-engine/internal/models"
)

// CalculateTotal produces the authoritative IOB at queryMillis by
// combining device-reported and treatment-derived figures. A fresh
// device report wins because the reporting system saw doses the care
// portal may not have; the treatment-derived value rides along as
// TreatmentIOB for diagnostics. Without a usable report, the treatment
// computation stands on its own.
func CalculateTotal(
	doses []models.DoseEvent,
	basals []models.BasalInterval,
	statuses []models.DeviceStatus,
	profile models.InsulinProfile,
	queryMillis int64,
	staleMinutes float64,
) models.IOBResult {
	treatment := FromTreatments(doses, basals, profile, queryMillis)

	device := LastReport(statuses, queryMillis, staleMinutes)
	if device.Source == "" {
		return treatment
	}

	treatmentIOB := treatment.IOB
	device.TreatmentIOB = &treatmentIOB
	return device
}
