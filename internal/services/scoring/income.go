package scoring

import (
	"math"
	"sort"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/pkg/util"
)

// expectedWorkDays is the number of income days a full-time month is measured against.
const expectedWorkDays = 22

func monthlyIncomeTotals(txns []models.Transaction) []float64 {
	months := groupByMonth(txns, true)
	totals := make([]float64, len(months))
	for i, m := range months {
		totals[i] = m.credits
	}
	return totals
}

// AvgMonthlyIncomeMetric averages income over the months that had any.
func AvgMonthlyIncomeMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	totals := monthlyIncomeTotals(txns)
	if len(totals) == 0 {
		return fixed(0, "No Income Data", now)
	}
	avg := mean(totals)
	return result(math.Round(avg), IncomeMetrics[AvgMonthlyIncome], avg, now)
}

// IncomeVolatilityMetric is the coefficient of variation of monthly income.
func IncomeVolatilityMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	totals := monthlyIncomeTotals(txns)
	if len(totals) < 2 {
		return fixed(50, "Insufficient Data", now)
	}
	m := mean(totals)
	var variance float64
	for _, v := range totals {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(totals))
	cv := 0.0
	if m > 0 {
		cv = math.Sqrt(variance) / m
	}
	return result(roundTo(cv, 3), IncomeMetrics[IncomeVolatility], cv, now)
}

// IncomeConsistencyMetric is the geometric mean of monthly presence and daily
// regularity, as a percentage capped at 100.
func IncomeConsistencyMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	if len(txns) == 0 {
		return fixed(0, "No Data", now)
	}
	first, last := txns[0].Date, txns[0].Date
	for _, t := range txns {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	elapsed := util.MonthsSpanned(first, last)

	months := groupByMonth(txns, true)
	presence := math.Min(1, float64(len(months))/float64(elapsed))

	days := make([]float64, len(months))
	for i, m := range months {
		days[i] = float64(uniqueDays(m.txns))
	}
	regularity := math.Min(1, mean(days)/expectedWorkDays)

	rate := math.Min(100, roundTo(math.Sqrt(presence*regularity)*100, 2))
	return result(rate, IncomeMetrics[IncomeConsistency], rate, now)
}

// IncomeTrendMetric is the average month-over-month growth in percent,
// skipping pairs whose earlier month had no income.
func IncomeTrendMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	totals := monthlyIncomeTotals(txns)
	if len(totals) < 3 {
		return fixed(60, "Insufficient History", now)
	}
	var sum float64
	var n int
	for i := 1; i < len(totals); i++ {
		if totals[i-1] > 0 {
			sum += (totals[i] - totals[i-1]) / totals[i-1] * 100
			n++
		}
	}
	growth := 0.0
	if n > 0 {
		growth = sum / float64(n)
	}
	return result(roundTo(growth, 2), IncomeMetrics[IncomeTrend], growth, now)
}

// ActiveWorkDaysMetric is the average count of distinct income days per month.
func ActiveWorkDaysMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	months := groupByMonth(txns, true)
	if len(months) == 0 {
		return fixed(0, "No Income Transactions", now)
	}
	days := make([]float64, len(months))
	for i, m := range months {
		days[i] = float64(uniqueDays(m.txns))
	}
	avg := mean(days)
	return result(roundTo(avg, 1), IncomeMetrics[ActiveWorkDays], avg, now)
}

// IncomeDiversificationMetric counts distinct income streams, identified by
// category, falling back to source.
func IncomeDiversificationMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	credits := models.Credits(txns)
	if len(credits) == 0 {
		return fixed(0, "No Income Data", now)
	}
	sources := make(map[string]struct{})
	for _, t := range credits {
		sources[util.FirstNonEmpty(t.Category, t.Source, "unknown")] = struct{}{}
	}
	n := float64(len(sources))
	return result(n, IncomeMetrics[IncomeDiversification], n, now)
}

// WorkStabilityMetric is the longest gap in whole days between consecutive income entries.
func WorkStabilityMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	credits := models.Credits(txns)
	if len(credits) < 2 {
		return models.MetricResult{Score: 20, Status: "Insufficient Data", LastUpdated: now}
	}
	sort.SliceStable(credits, func(i, j int) bool { return credits[i].Date.Before(credits[j].Date) })
	var maxGap float64
	for i := 1; i < len(credits); i++ {
		gap := math.Floor(credits[i].Date.Sub(credits[i-1].Date).Hours() / 24)
		maxGap = math.Max(maxGap, gap)
	}
	return result(maxGap, IncomeMetrics[WorkStability], maxGap, now)
}

// IncomeCategoryMetrics computes every income-quality metric.
func IncomeCategoryMetrics(txns []models.Transaction, now time.Time) map[string]models.MetricResult {
	return map[string]models.MetricResult{
		AvgMonthlyIncome:      AvgMonthlyIncomeMetric(txns, now),
		IncomeVolatility:      IncomeVolatilityMetric(txns, now),
		IncomeConsistency:     IncomeConsistencyMetric(txns, now),
		IncomeTrend:           IncomeTrendMetric(txns, now),
		ActiveWorkDays:        ActiveWorkDaysMetric(txns, now),
		IncomeDiversification: IncomeDiversificationMetric(txns, now),
		WorkStability:         WorkStabilityMetric(txns, now),
	}
}
