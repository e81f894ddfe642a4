package scoring

import (
	"math"
	"sort"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/pkg/util"
)

type monthBucket struct {
	key     string
	credits float64
	debits  float64
	txns    []models.Transaction
}

// groupByMonth buckets transactions by UTC calendar month, ordered by month.
// creditsOnly restricts both the buckets and their transactions to income.
func groupByMonth(txns []models.Transaction, creditsOnly bool) []*monthBucket {
	byKey := make(map[string]*monthBucket)
	for _, t := range txns {
		if creditsOnly && !t.IsCredit() {
			continue
		}
		k := util.MonthKey(t.Date)
		b, ok := byKey[k]
		if !ok {
			b = &monthBucket{key: k}
			byKey[k] = b
		}
		if t.IsCredit() {
			b.credits += t.Amount
		} else {
			b.debits += t.Amount
		}
		b.txns = append(b.txns, t)
	}
	out := make([]*monthBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func uniqueDays(txns []models.Transaction) int {
	days := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		days[util.DayKey(t.Date)] = struct{}{}
	}
	return len(days)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// roundTo rounds half away from zero to n decimals.
func roundTo(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func result(value float64, def MetricDef, raw float64, now time.Time) models.MetricResult {
	score, status := Lookup(raw, def.Bands)
	return models.MetricResult{Value: value, Score: score, Status: status, LastUpdated: now}
}

func fixed(score float64, status string, now time.Time) models.MetricResult {
	return models.MetricResult{Value: 0, Score: score, Status: status, LastUpdated: now}
}
