package scoring

import (
	"math"
	"sort"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/pkg/util"
)

// minLowBalance is the floor of the low-balance threshold.
const minLowBalance = 1000.0

// DailyBalances replays the ledger from a zero opening balance and returns the
// end-of-day balance for every UTC day between the first and last entry.
// Days without entries carry the previous balance forward.
func DailyBalances(txns []models.Transaction) []float64 {
	if len(txns) == 0 {
		return nil
	}
	sorted := append([]models.Transaction(nil), txns...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	closing := make(map[string]float64)
	var running float64
	for _, t := range sorted {
		if t.IsCredit() {
			running += t.Amount
		} else {
			running -= t.Amount
		}
		closing[util.DayKey(t.Date)] = running
	}

	start := util.StartOfDay(sorted[0].Date)
	end := util.StartOfDay(sorted[len(sorted)-1].Date)
	var out []float64
	var last float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if b, ok := closing[util.DayKey(d)]; ok {
			last = b
		}
		out = append(out, last)
	}
	return out
}

// AvgDailyBalanceMetric is the mean reconstructed daily balance.
func AvgDailyBalanceMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	balances := DailyBalances(txns)
	if len(balances) == 0 {
		return fixed(0, "No Transaction Data", now)
	}
	avg := mean(balances)
	return result(math.Round(avg), LiquidityMetrics[AvgDailyBalance], avg, now)
}

// NegativeBalanceRiskMetric is the percentage of days below max(10% of the
// average balance, 1000).
func NegativeBalanceRiskMetric(txns []models.Transaction, now time.Time) models.MetricResult {
	balances := DailyBalances(txns)
	if len(balances) == 0 {
		return fixed(0, "No Transaction Data", now)
	}
	threshold := math.Max(mean(balances)*0.1, minLowBalance)
	var low int
	for _, b := range balances {
		if b < threshold {
			low++
		}
	}
	pct := float64(low) / float64(len(balances)) * 100
	return result(roundTo(pct, 2), LiquidityMetrics[NegativeBalanceRisk], pct, now)
}

// LiquidityCategoryMetrics computes every liquidity metric.
func LiquidityCategoryMetrics(txns []models.Transaction, now time.Time) map[string]models.MetricResult {
	return map[string]models.MetricResult{
		AvgDailyBalance:     AvgDailyBalanceMetric(txns, now),
		NegativeBalanceRisk: NegativeBalanceRiskMetric(txns, now),
	}
}
