package kinetics

import (
	"math"
	"testing"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

var totalNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC).UnixMilli()

func TestCalculateTotal_DeviceReportAuthoritative(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: totalNow - 1, Units: 1.0},
	}
	statuses := []models.DeviceStatus{
		{ID: "s1", Date: totalNow - 5*60000, Device: "loop://iPhone", IOB: 2.75},
	}

	result := CalculateTotal(doses, nil, statuses, defaultProfile(), totalNow, DefaultStaleMinutes)

	if result.Source != "loop://iPhone" {
		t.Errorf("Source = %q, want device report", result.Source)
	}
	if result.IOB != 2.75 {
		t.Errorf("IOB = %f, want reported 2.75", result.IOB)
	}
	if result.TreatmentIOB == nil {
		t.Fatal("TreatmentIOB must be preserved alongside a device report")
	}
	if math.Abs(*result.TreatmentIOB-1.0) > 0.01 {
		t.Errorf("TreatmentIOB = %f, want ~1.00", *result.TreatmentIOB)
	}
}

func TestCalculateTotal_FallsBackToTreatments(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: totalNow - 1, Units: 1.0},
	}
	statuses := []models.DeviceStatus{
		{ID: "s1", Date: totalNow - 90*60000, Device: "loop://iPhone", IOB: 2.75},
	}

	result := CalculateTotal(doses, nil, statuses, defaultProfile(), totalNow, DefaultStaleMinutes)

	if result.Source != models.SourceCarePortal {
		t.Errorf("Source = %q, want %q", result.Source, models.SourceCarePortal)
	}
	if math.Abs(result.IOB-1.0) > 0.01 {
		t.Errorf("IOB = %f, want ~1.00 from treatments", result.IOB)
	}
}

func TestCalculateTotal_NoDataAtAll(t *testing.T) {
	result := CalculateTotal(nil, nil, nil, defaultProfile(), totalNow, DefaultStaleMinutes)

	if result.IOB != 0 {
		t.Errorf("IOB = %f, want 0", result.IOB)
	}
	if result.Source != models.SourceCarePortal {
		t.Errorf("Source = %q, want %q fallback", result.Source, models.SourceCarePortal)
	}
}
