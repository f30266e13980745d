package delivery

import (
	"sort"
	"time"

	"github.com/nocturne-care/insulin-engine/internal/models"
)

// Statistics integrates delivery over [startMillis, endMillis) and
// derives the TDD and basal/bolus split. TDD is total insulin divided by
// the number of days the window spans.
func Statistics(
	doses []models.DoseEvent,
	basals []models.BasalInterval,
	startMillis, endMillis int64,
) models.DeliveryStatistics {
	totals := Integrate(doses, basals, startMillis, endMillis)
	totalInsulin := totals.TotalBasal + totals.TotalBolus
	days := windowDayCount(startMillis, endMillis)
	basalPct, bolusPct := splitPercent(totals.TotalBasal, totals.TotalBolus, totalInsulin)

	return models.DeliveryStatistics{
		TotalBasal:   totals.TotalBasal,
		TotalBolus:   totals.TotalBolus,
		TotalInsulin: totalInsulin,
		TDD:          totalInsulin / float64(days),
		BasalPercent: basalPct,
		BolusPercent: bolusPct,
		BolusCount:   totals.BolusCount,
		DayCount:     days,
	}
}

// DailyRatios partitions the full span of the input data into UTC
// calendar-day buckets and integrates each day separately. Only days
// touched by at least one record appear; AverageTDD is the mean total
// across those days.
func DailyRatios(doses []models.DoseEvent, basals []models.BasalInterval) models.DailyRatioReport {
	dayStarts := touchedDays(doses, basals)
	if len(dayStarts) == 0 {
		return models.DailyRatioReport{}
	}

	report := models.DailyRatioReport{
		Days: make([]models.DailyRatio, 0, len(dayStarts)),
	}

	var sum float64
	for _, dayStart := range dayStarts {
		totals := Integrate(doses, basals, dayStart, dayStart+dayMillis)
		total := totals.TotalBasal + totals.TotalBolus
		basalPct, bolusPct := splitPercent(totals.TotalBasal, totals.TotalBolus, total)

		report.Days = append(report.Days, models.DailyRatio{
			Date:         time.UnixMilli(dayStart).UTC().Format("2006-01-02"),
			Basal:        totals.TotalBasal,
			Bolus:        totals.TotalBolus,
			Total:        total,
			BasalPercent: basalPct,
			BolusPercent: bolusPct,
		})
		sum += total
	}

	report.AverageTDD = sum / float64(len(report.Days))
	return report
}

// touchedDays returns the sorted UTC-midnight timestamps of every
// calendar day touched by a dose or basal interval.
func touchedDays(doses []models.DoseEvent, basals []models.BasalInterval) []int64 {
	seen := make(map[int64]struct{})

	for i := range doses {
		seen[utcMidnight(doses[i].Date)] = struct{}{}
	}
	for i := range basals {
		interval := &basals[i]
		last := interval.EndDate
		if last > interval.StartDate {
			// An interval ending exactly at midnight does not touch
			// the following day.
			last--
		}
		for day := utcMidnight(interval.StartDate); day <= utcMidnight(last); day += dayMillis {
			seen[day] = struct{}{}
		}
	}

	days := make([]int64, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func utcMidnight(millis int64) int64 {
	if millis >= 0 {
		return millis - millis%dayMillis
	}
	return millis - (dayMillis+millis%dayMillis)%dayMillis
}

// BasalAnalysis reports the basal-rate distribution of the intervals
// intersecting [startMillis, endMillis), plus a classification of the
// override intervals against their scheduled rates.
func BasalAnalysis(
	basals []models.BasalInterval,
	startMillis, endMillis int64,
) models.BasalAnalysis {
	var analysis models.BasalAnalysis
	var rateSum float64

	for i := range basals {
		interval := &basals[i]
		if interval.EndDate <= startMillis || interval.StartDate >= endMillis {
			continue
		}

		stats := &analysis.Stats
		if stats.Count == 0 || interval.Rate < stats.MinRate {
			stats.MinRate = interval.Rate
		}
		if stats.Count == 0 || interval.Rate > stats.MaxRate {
			stats.MaxRate = interval.Rate
		}
		stats.Count++
		rateSum += interval.Rate
		stats.TotalDelivered += overlapAmount(interval, startMillis, endMillis)

		classifyTempBasal(interval, &analysis.TempBasals)
	}

	if analysis.Stats.Count > 0 {
		analysis.Stats.AvgRate = rateSum / float64(analysis.Stats.Count)
	}
	return analysis
}

// classifyTempBasal buckets an override interval relative to the rate
// the unoverridden program would have run. A zero-rate override with a
// positive scheduled rate is low and additionally zero.
func classifyTempBasal(interval *models.BasalInterval, info *models.TempBasalInfo) {
	if !interval.Origin.IsOverride() || interval.ScheduledRate == nil {
		return
	}

	info.Total++
	switch {
	case interval.Rate > *interval.ScheduledRate:
		info.HighTemps++
	case interval.Rate < *interval.ScheduledRate:
		info.LowTemps++
	}
	if interval.Rate == 0 && *interval.ScheduledRate > 0 {
		info.ZeroTemps++
	}
}
