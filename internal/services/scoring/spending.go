package scoring

import (
	"math"
	"sort"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/pkg/util"
)

// ObligationBucket is the rounding step used to match recurring debits.
// It is a heuristic; tune freely.
const ObligationBucket = 100.0

// shockFactor flags a month whose debits exceed this multiple of the monthly average.
const shockFactor = 1.5

// NetCashFlowMetric averages (credits-debits)/credits over months with income.
func NetCashFlowMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	months := groupByMonth(txns, false)
	if len(months) == 0 {
		return fixed(0, "No Transaction Data", now)
	}
	var sum float64
	var n int
	for _, m := range months {
		if m.credits > 0 {
			sum += (m.credits - m.debits) / m.credits
			n++
		}
	}
	ratio := 0.0
	if n > 0 {
		ratio = sum / float64(n)
	}
	return result(roundTo(ratio, 3), SpendingMetrics[NetCashFlowRatio], ratio, now)
}

// SavingsBehaviorMetric is the percentage of months where credits exceeded debits.
func SavingsBehaviorMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	months := groupByMonth(txns, false)
	if len(months) == 0 {
		return fixed(0, "No Transaction Data", now)
	}
	var saved int
	for _, m := range months {
		if m.credits > m.debits {
			saved++
		}
	}
	rate := float64(saved) / float64(len(months)) * 100
	return result(roundTo(rate, 2), SpendingMetrics[SavingsBehavior], rate, now)
}

// ExpenseShocksMetric counts months whose debits exceed 150% of the monthly average.
func ExpenseShocksMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	months := groupByMonth(txns, false)
	if len(months) < 2 {
		return fixed(100, "Insufficient Data", now)
	}
	debits := make([]float64, len(months))
	for i, m := range months {
		debits[i] = m.debits
	}
	threshold := mean(debits) * shockFactor
	var shocks float64
	for _, d := range debits {
		if d > threshold {
			shocks++
		}
	}
	return result(shocks, SpendingMetrics[ExpenseShocks], shocks, now)
}

// FixedObligationMetric sums the median bucketed amount of every recurring debit
// key and divides it by average monthly income. A key is recurring when it occurs
// at least ceil(months/2) times.
func FixedObligationMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	months := groupByMonth(txns, false)
	if len(months) < 2 {
		return fixed(100, "Insufficient Data", now)
	}
	patterns := make(map[string][]float64)
	var income float64
	for _, m := range months {
		income += m.credits
		for _, t := range m.txns {
			if !t.IsDebit() {
				continue
			}
			key := util.FirstNonEmpty(t.Category, t.Description, "uncategorized")
			patterns[key] = append(patterns[key], math.Round(t.Amount/ObligationBucket)*ObligationBucket)
		}
	}
	minOccurrences := int(math.Ceil(float64(len(months)) * 0.5))
	var recurring float64
	for _, amounts := range patterns {
		if len(amounts) < minOccurrences {
			continue
		}
		sort.Float64s(amounts)
		recurring += amounts[len(amounts)/2]
	}
	avgIncome := income / float64(len(months))
	ratio := 0.0
	if avgIncome > 0 {
		ratio = recurring / avgIncome
	}
	return result(roundTo(ratio, 3), SpendingMetrics[FixedObligationRatio], ratio, now)
}

// SpendingCategoryMetrics computes every spending-behavior metric.
func SpendingCategoryMetrics(txns []models.Transaction, now time.Time) map[string]models.MetricResult {
	return map[string]models.MetricResult{
		NetCashFlowRatio:     NetCashFlowMetric(txns, now),
		SavingsBehavior:      SavingsBehaviorMetric(txns, now),
		ExpenseShocks:        ExpenseShocksMetric(txns, now),
		FixedObligationRatio: FixedObligationMetric(txns, now),
	}
}
