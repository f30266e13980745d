package kinetics

import (
	"math"
	"testing"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

var aggregatorNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC).UnixMilli()

func TestFromTreatments_SingleFreshBolus(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: aggregatorNow - 1, Units: 1.0},
	}

	result := FromTreatments(doses, nil, defaultProfile(), aggregatorNow)

	if math.Abs(result.IOB-1.0) > 0.01 {
		t.Errorf("IOB = %f, want ~1.00", result.IOB)
	}
	if result.Source != models.SourceCarePortal {
		t.Errorf("Source = %q, want %q", result.Source, models.SourceCarePortal)
	}
}

func TestFromTreatments_ExpiredBolus(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: aggregatorNow - 3*60*60*1000, Units: 1.0},
	}

	result := FromTreatments(doses, nil, defaultProfile(), aggregatorNow)

	if math.Abs(result.IOB) > 0.001 {
		t.Errorf("IOB at DIA boundary = %f, want ~0.000", result.IOB)
	}
}

func TestFromTreatments_IgnoresFutureDoses(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: aggregatorNow + 60000, Units: 5.0},
	}

	result := FromTreatments(doses, nil, defaultProfile(), aggregatorNow)

	if result.IOB != 0 {
		t.Errorf("IOB with only a future dose = %f, want 0", result.IOB)
	}
}

func TestFromTreatments_BasalIntervalContributes(t *testing.T) {
	basals := []models.BasalInterval{
		{
			ID:        "b1",
			StartDate: aggregatorNow - 60*60*1000,
			EndDate:   aggregatorNow,
			Rate:      1.0,
			Origin:    models.OriginScheduled,
		},
	}

	result := FromTreatments(nil, basals, defaultProfile(), aggregatorNow)

	if result.BasalIOB == nil {
		t.Fatal("BasalIOB missing from result")
	}
	// One unit was delivered over the last hour; some has decayed but
	// most is still on board.
	if *result.BasalIOB <= 0.5 || *result.BasalIOB > 1.0 {
		t.Errorf("BasalIOB = %f, want in (0.5, 1.0]", *result.BasalIOB)
	}
	if result.IOB != *result.BasalIOB {
		t.Errorf("IOB = %f, want equal to BasalIOB %f with no doses", result.IOB, *result.BasalIOB)
	}
}

func TestFromTreatments_CombinesDosesAndBasal(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: aggregatorNow - 30*60*1000, Units: 2.0},
	}
	basals := []models.BasalInterval{
		{ID: "b1", StartDate: aggregatorNow - 60*60*1000, EndDate: aggregatorNow, Rate: 0.8, Origin: models.OriginScheduled},
	}

	combined := FromTreatments(doses, basals, defaultProfile(), aggregatorNow)
	dosesOnly := FromTreatments(doses, nil, defaultProfile(), aggregatorNow)
	basalOnly := FromTreatments(nil, basals, defaultProfile(), aggregatorNow)

	if diff := math.Abs(combined.IOB - dosesOnly.IOB - basalOnly.IOB); diff > 1e-9 {
		t.Errorf("combined IOB %f != doses %f + basal %f", combined.IOB, dosesOnly.IOB, basalOnly.IOB)
	}
}

func TestFromTreatments_ClipsRunningInterval(t *testing.T) {
	// Interval still running past the query time: only the delivered
	// portion counts.
	basals := []models.BasalInterval{
		{ID: "b1", StartDate: aggregatorNow - 30*60*1000, EndDate: aggregatorNow + 30*60*1000, Rate: 2.0, Origin: models.OriginAlgorithm},
	}

	result := FromTreatments(nil, basals, defaultProfile(), aggregatorNow)

	// 1.0 U delivered so far, minus decay.
	if result.IOB <= 0 || result.IOB > 1.0 {
		t.Errorf("IOB = %f, want in (0, 1.0]", result.IOB)
	}
}

func TestFromTreatments_NeverNegative(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: aggregatorNow - 179*60*1000, Units: 0.05},
		{ID: "d2", Date: aggregatorNow - 178*60*1000, Units: 0.05},
	}
	basals := []models.BasalInterval{
		{ID: "b1", StartDate: aggregatorNow - 200*60*1000, EndDate: aggregatorNow - 175*60*1000, Rate: 0.5, Origin: models.OriginScheduled},
	}

	result := FromTreatments(doses, basals, defaultProfile(), aggregatorNow)

	if result.IOB < 0 {
		t.Errorf("IOB = %f, must never be negative", result.IOB)
	}
}

func TestBasalIntervalContribution_StepHalvingStable(t *testing.T) {
	interval := &models.BasalInterval{
		ID:        "b1",
		StartDate: aggregatorNow - 2*60*60*1000,
		EndDate:   aggregatorNow - 10*60*1000,
		Rate:      1.5,
		Origin:    models.OriginScheduled,
	}

	coarse, _ := basalIntervalContribution(interval, defaultProfile(), aggregatorNow, basalStepMinutes)
	fine, _ := basalIntervalContribution(interval, defaultProfile(), aggregatorNow, basalStepMinutes/2)

	if diff := math.Abs(coarse - fine); diff >= 0.001 {
		t.Errorf("halving the sub-step moved the total by %f, want < 0.001", diff)
	}
}

func TestFromTreatments_Idempotent(t *testing.T) {
	doses := []models.DoseEvent{
		{ID: "d1", Date: aggregatorNow - 45*60*1000, Units: 1.5},
	}
	basals := []models.BasalInterval{
		{ID: "b1", StartDate: aggregatorNow - 90*60*1000, EndDate: aggregatorNow, Rate: 1.0, Origin: models.OriginScheduled},
	}

	first := FromTreatments(doses, basals, defaultProfile(), aggregatorNow)
	second := FromTreatments(doses, basals, defaultProfile(), aggregatorNow)

	if first.IOB != second.IOB || *first.BasalIOB != *second.BasalIOB || *first.Activity != *second.Activity {
		t.Errorf("re-running on identical inputs changed the result: %+v vs %+v", first, second)
	}
}
