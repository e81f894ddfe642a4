package scoring

import (
	"math"

	"GigCredit/internal/domain/models"
)

// Score range of the final credit score.
const (
	ScoreMin = 0
	ScoreMax = 1000
)

// Metric names as they appear in a profile's metrics map.
const (
	AvgMonthlyIncome      = "avgMonthlyIncome"
	IncomeVolatility      = "incomeVolatility"
	IncomeConsistency     = "incomeConsistency"
	IncomeTrend           = "incomeTrend"
	ActiveWorkDays        = "activeWorkDays"
	IncomeDiversification = "incomeDiversification"
	WorkStability         = "workStability"

	NetCashFlowRatio     = "netCashFlowRatio"
	SavingsBehavior      = "savingsBehavior"
	ExpenseShocks        = "expenseShocks"
	FixedObligationRatio = "fixedObligationRatio"

	AvgDailyBalance     = "avgDailyBalance"
	NegativeBalanceRisk = "negativeBalanceRisk"

	GigStability = "gigStabilityScore"
)

// Category identifies one of the four score pillars.
type Category string

const (
	IncomeQuality    Category = "incomeQuality"
	SpendingBehavior Category = "spendingBehavior"
	Liquidity        Category = "liquidity"
	GigStabilityCat  Category = "gigStability"
)

// CategoryWeights sum to 100.
var CategoryWeights = map[Category]float64{
	IncomeQuality:    35,
	SpendingBehavior: 30,
	Liquidity:        20,
	GigStabilityCat:  15,
}

// Band maps an inclusive value range to a discrete score.
type Band struct {
	Min, Max float64
	Score    float64
	Status   string
}

// MetricDef is a metric's weight within its category and its band table.
type MetricDef struct {
	Weight float64
	Bands  []Band
}

// UnknownStatus is what a value falling outside every band resolves to.
const UnknownStatus = "Unknown"

var inf = math.Inf(1)

// IncomeMetrics weights sum to 100.
var IncomeMetrics = map[string]MetricDef{
	AvgMonthlyIncome: {Weight: 20, Bands: []Band{
		{0, 10000, 20, "Very Low Income"},
		{10001, 20000, 40, "Low Income"},
		{20001, 35000, 60, "Moderate Income"},
		{35001, 50000, 80, "Good Income"},
		{50001, inf, 100, "Excellent Income"},
	}},
	IncomeVolatility: {Weight: 15, Bands: []Band{
		{0, 0.15, 100, "Very Stable"},
		{0.16, 0.30, 80, "Stable"},
		{0.31, 0.50, 60, "Moderate Volatility"},
		{0.51, 0.75, 40, "High Volatility"},
		{0.76, inf, 20, "Very High Volatility"},
	}},
	IncomeConsistency: {Weight: 15, Bands: []Band{
		{0, 40, 20, "Very Inconsistent"},
		{41, 60, 40, "Inconsistent"},
		{61, 75, 60, "Moderately Consistent"},
		{76, 90, 80, "Consistent"},
		{91, 100, 100, "Highly Consistent"},
	}},
	IncomeTrend: {Weight: 15, Bands: []Band{
		{-inf, -10, 20, "Declining"},
		{-9.99, -5, 40, "Slightly Declining"},
		{-4.99, 5, 60, "Stable"},
		{5.01, 15, 80, "Growing"},
		{15.01, inf, 100, "Rapidly Growing"},
	}},
	ActiveWorkDays: {Weight: 10, Bands: []Band{
		{0, 5, 20, "Very Low Activity"},
		{6, 10, 40, "Low Activity"},
		{11, 15, 60, "Moderate Activity"},
		{16, 22, 80, "High Activity"},
		{23, inf, 100, "Very High Activity"},
	}},
	IncomeDiversification: {Weight: 15, Bands: []Band{
		{0, 1, 20, "Single Source"},
		{2, 2, 50, "Two Sources"},
		{3, 3, 75, "Multiple Sources"},
		{4, inf, 100, "Highly Diversified"},
	}},
	WorkStability: {Weight: 10, Bands: []Band{
		{0, 3, 100, "Excellent Stability"},
		{4, 7, 80, "Good Stability"},
		{8, 14, 60, "Moderate Gaps"},
		{15, 30, 40, "Significant Gaps"},
		{31, inf, 20, "Extended Gaps"},
	}},
}

// SpendingMetrics weights sum to 100.
var SpendingMetrics = map[string]MetricDef{
	NetCashFlowRatio: {Weight: 30, Bands: []Band{
		{-inf, 0, 0, "Negative Cash Flow"},
		{0.01, 0.10, 30, "Minimal Savings"},
		{0.11, 0.20, 60, "Moderate Savings"},
		{0.21, 0.35, 80, "Good Savings"},
		{0.36, inf, 100, "Excellent Savings"},
	}},
	SavingsBehavior: {Weight: 30, Bands: []Band{
		{0, 30, 20, "Rarely Saves"},
		{31, 50, 40, "Occasionally Saves"},
		{51, 70, 60, "Frequently Saves"},
		{71, 85, 80, "Consistently Saves"},
		{86, 100, 100, "Always Saves"},
	}},
	ExpenseShocks: {Weight: 20, Bands: []Band{
		{0, 0, 100, "No Shocks"},
		{1, 1, 80, "Rare Shocks"},
		{2, 2, 60, "Occasional Shocks"},
		{3, 3, 40, "Frequent Shocks"},
		{4, inf, 20, "Very Frequent Shocks"},
	}},
	FixedObligationRatio: {Weight: 20, Bands: []Band{
		{0, 0.20, 100, "Very Low Obligations"},
		{0.21, 0.35, 80, "Low Obligations"},
		{0.36, 0.50, 60, "Moderate Obligations"},
		{0.51, 0.70, 40, "High Obligations"},
		{0.71, inf, 20, "Very High Obligations"},
	}},
}

// LiquidityMetrics weights sum to 100.
var LiquidityMetrics = map[string]MetricDef{
	AvgDailyBalance: {Weight: 60, Bands: []Band{
		{0, 1000, 20, "Very Low Liquidity"},
		{1001, 3000, 40, "Low Liquidity"},
		{3001, 7000, 60, "Moderate Liquidity"},
		{7001, 15000, 80, "Good Liquidity"},
		{15001, inf, 100, "Excellent Liquidity"},
	}},
	NegativeBalanceRisk: {Weight: 40, Bands: []Band{
		{0, 5, 100, "No Risk"},
		{6, 15, 80, "Low Risk"},
		{16, 30, 60, "Moderate Risk"},
		{31, 50, 40, "High Risk"},
		{51, inf, 20, "Very High Risk"},
	}},
}

// Lookup returns the score and status of the first band containing value.
// Values in no band, including NaN, resolve to {0, "Unknown"}.
func Lookup(value float64, bands []Band) (float64, string) {
	for _, b := range bands {
		if value >= b.Min && value <= b.Max {
			return b.Score, b.Status
		}
	}
	return 0, UnknownStatus
}

// Definition finds the band table for a metric across all categories.
func Definition(name string) (MetricDef, bool) {
	for _, table := range []map[string]MetricDef{IncomeMetrics, SpendingMetrics, LiquidityMetrics} {
		if d, ok := table[name]; ok {
			return d, true
		}
	}
	return MetricDef{}, false
}

// RiskBand is an inclusive score range for one risk level.
type RiskBand struct {
	Min, Max int
	Level    models.RiskLevel
}

// RiskBands are contiguous over [ScoreMin, ScoreMax], LOW highest.
var RiskBands = []RiskBand{
	{701, 1000, models.RiskLow},
	{351, 700, models.RiskMedium},
	{0, 350, models.RiskHigh},
}
