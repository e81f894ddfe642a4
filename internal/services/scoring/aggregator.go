package scoring

import (
	"math"

	"GigCredit/internal/domain/models"
)

// neutralScore stands in for any category or metric that produced no usable number.
const neutralScore = 50.0

// CategoryScore is the weighted mean of the metrics that have a definition in
// defs. Non-finite scores are skipped; with nothing left the result is neutral.
func CategoryScore(metrics map[string]models.MetricResult, defs map[string]MetricDef) float64 {
	var weighted, total float64
	for name, m := range metrics {
		def, ok := defs[name]
		if !ok || !finite(m.Score) {
			continue
		}
		weighted += m.Score * def.Weight
		total += def.Weight
	}
	if total == 0 {
		return neutralScore
	}
	if s := weighted / total; finite(s) {
		return s
	}
	return neutralScore
}

// Breakdown rounds each category score to an integer.
func Breakdown(income, spending, liquidity map[string]models.MetricResult, gig models.MetricResult) models.ScoreBreakdown {
	gigScore := gig.Score
	if !finite(gigScore) || gigScore == 0 {
		gigScore = neutralScore
	}
	return models.ScoreBreakdown{
		IncomeQuality:    int(math.Round(CategoryScore(income, IncomeMetrics))),
		SpendingBehavior: int(math.Round(CategoryScore(spending, SpendingMetrics))),
		Liquidity:        int(math.Round(CategoryScore(liquidity, LiquidityMetrics))),
		GigStability:     int(math.Round(gigScore)),
	}
}

// FinalScore combines the category scores with CategoryWeights and scales the
// 0-100 composite onto [ScoreMin, ScoreMax].
func FinalScore(b models.ScoreBreakdown) int {
	composite := (float64(b.IncomeQuality)*CategoryWeights[IncomeQuality] +
		float64(b.SpendingBehavior)*CategoryWeights[SpendingBehavior] +
		float64(b.Liquidity)*CategoryWeights[Liquidity] +
		float64(b.GigStability)*CategoryWeights[GigStabilityCat]) / 100

	scaled := math.Round(ScoreMin + composite/100*(ScoreMax-ScoreMin))
	return int(math.Max(ScoreMin, math.Min(ScoreMax, scaled)))
}
