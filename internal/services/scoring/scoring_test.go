package scoring

import (
	"math"
	"testing"
	"time"

	"GigCredit/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func credit(day time.Time, amount float64, category string) models.Transaction {
	return models.Transaction{Date: day, Type: models.Credit, Amount: amount, Category: category, Source: "platform"}
}

func debit(day time.Time, amount float64, category string) models.Transaction {
	return models.Transaction{Date: day, Type: models.Debit, Amount: amount, Category: category, Source: "bank"}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

// steadyIncome pays 500 every day plus a top-up on the 1st so each month totals 20000.
func steadyIncome(months int) []models.Transaction {
	var out []models.Transaction
	for i := 0; i < months; i++ {
		first := date(2024, time.Month(1+i), 1)
		days := first.AddDate(0, 1, -1).Day()
		out = append(out, credit(first, 20000-500*float64(days), "delivery"))
		for d := 1; d <= days; d++ {
			out = append(out, credit(date(2024, time.Month(1+i), d), 500, "delivery"))
		}
	}
	models.SortTransactions(out)
	return out
}

func TestWeightsSumTo100(t *testing.T) {
	for name, table := range map[string]map[string]MetricDef{
		"income":    IncomeMetrics,
		"spending":  SpendingMetrics,
		"liquidity": LiquidityMetrics,
	} {
		var sum float64
		for _, d := range table {
			sum += d.Weight
		}
		assert.Equal(t, 100.0, sum, name)
	}

	var sum float64
	for _, w := range CategoryWeights {
		sum += w
	}
	assert.Equal(t, 100.0, sum)
}

func TestLookup(t *testing.T) {
	bands := IncomeMetrics[AvgMonthlyIncome].Bands

	tests := []struct {
		name   string
		value  float64
		score  float64
		status string
	}{
		{"lower edge", 0, 20, "Very Low Income"},
		{"inclusive max", 10000, 20, "Very Low Income"},
		{"next band", 10001, 40, "Low Income"},
		{"open top", 1e9, 100, "Excellent Income"},
		{"gap between bands", 10000.5, 0, UnknownStatus},
		{"negative", -1, 0, UnknownStatus},
		{"nan", math.NaN(), 0, UnknownStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, status := Lookup(tt.value, bands)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestEveryBandScoreIsDiscrete(t *testing.T) {
	for _, table := range []map[string]MetricDef{IncomeMetrics, SpendingMetrics, LiquidityMetrics} {
		for name, def := range table {
			for _, b := range def.Bands {
				score, _ := Lookup(b.Min, def.Bands)
				assert.Equal(t, b.Score, score, name)
			}
		}
	}
}

func TestSixMonthSteadyIncome(t *testing.T) {
	txns := steadyIncome(6)

	stability := WorkStabilityMetric(txns, fixedNow)
	assert.Equal(t, 100.0, stability.Score)
	assert.Equal(t, "Excellent Stability", stability.Status)

	consistency := IncomeConsistencyMetric(txns, fixedNow)
	assert.GreaterOrEqual(t, consistency.Value, 90.0)
	assert.Equal(t, 100.0, consistency.Score)

	avg := AvgMonthlyIncomeMetric(txns, fixedNow)
	assert.Equal(t, 20000.0, avg.Value)
	assert.Equal(t, 40.0, avg.Score)

	vol := IncomeVolatilityMetric(txns, fixedNow)
	assert.Equal(t, 0.0, vol.Value)
	assert.Equal(t, "Very Stable", vol.Status)

	trend := IncomeTrendMetric(txns, fixedNow)
	assert.Equal(t, 60.0, trend.Score)

	gig := GigStabilityMetric(txns, nil, fixedNow)
	assert.Equal(t, 70.0, gig.Score)
}

func TestEmptyLedgerNeverPanics(t *testing.T) {
	tests := []struct {
		name   string
		got    models.MetricResult
		score  float64
		status string
	}{
		{"avg income", AvgMonthlyIncomeMetric(nil, fixedNow), 0, "No Income Data"},
		{"volatility", IncomeVolatilityMetric(nil, fixedNow), 50, "Insufficient Data"},
		{"consistency", IncomeConsistencyMetric(nil, fixedNow), 0, "No Data"},
		{"trend", IncomeTrendMetric(nil, fixedNow), 60, "Insufficient History"},
		{"work days", ActiveWorkDaysMetric(nil, fixedNow), 0, "No Income Transactions"},
		{"diversification", IncomeDiversificationMetric(nil, fixedNow), 0, "No Income Data"},
		{"stability", WorkStabilityMetric(nil, fixedNow), 20, "Insufficient Data"},
		{"net cash flow", NetCashFlowMetric(nil, fixedNow), 0, "No Transaction Data"},
		{"savings", SavingsBehaviorMetric(nil, fixedNow), 0, "No Transaction Data"},
		{"shocks", ExpenseShocksMetric(nil, fixedNow), 100, "Insufficient Data"},
		{"obligations", FixedObligationMetric(nil, fixedNow), 100, "Insufficient Data"},
		{"daily balance", AvgDailyBalanceMetric(nil, fixedNow), 0, "No Transaction Data"},
		{"low balance", NegativeBalanceRiskMetric(nil, fixedNow), 0, "No Transaction Data"},
		{"gig", GigStabilityMetric(nil, nil, fixedNow), 50, "No Gig Data Available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, tt.got.Score)
			assert.Equal(t, tt.status, tt.got.Status)
		})
	}
}

func TestIncomeConsistencyUsesGeometricMean(t *testing.T) {
	var txns []models.Transaction
	for d := 1; d <= 9; d++ {
		txns = append(txns, credit(date(2024, 3, d), 1000, "delivery"))
	}
	m := IncomeConsistencyMetric(txns, fixedNow)

	// presence 1.0, regularity 9/22
	assert.InDelta(t, 63.96, m.Value, 0.001)
	assert.Equal(t, 60.0, m.Score)
}

func TestIncomeConsistencyPenalisesMissingMonths(t *testing.T) {
	var txns []models.Transaction
	for _, month := range []time.Month{1, 4} {
		for d := 1; d <= 22; d++ {
			txns = append(txns, credit(date(2024, month, d), 1000, "delivery"))
		}
	}
	m := IncomeConsistencyMetric(txns, fixedNow)

	// two of four months present, full daily regularity
	assert.InDelta(t, math.Sqrt(0.5)*100, m.Value, 0.01)
	assert.Equal(t, 60.0, m.Score)
}

func TestIncomeTrendSkipsZeroMonths(t *testing.T) {
	txns := []models.Transaction{
		credit(date(2024, 1, 5), 10000, "a"),
		credit(date(2024, 2, 5), 11000, "a"),
		credit(date(2024, 3, 5), 12100, "a"),
	}
	m := IncomeTrendMetric(txns, fixedNow)
	assert.Equal(t, 10.0, m.Value)
	assert.Equal(t, "Growing", m.Status)
}

func TestIncomeDiversificationFallsBackToSource(t *testing.T) {
	txns := []models.Transaction{
		credit(date(2024, 1, 1), 100, "delivery"),
		credit(date(2024, 1, 2), 100, "rides"),
		{Date: date(2024, 1, 3), Type: models.Credit, Amount: 100, Source: "bank"},
	}
	m := IncomeDiversificationMetric(txns, fixedNow)
	assert.Equal(t, 3.0, m.Value)
	assert.Equal(t, 75.0, m.Score)
}

func TestWorkStabilityLongestGap(t *testing.T) {
	txns := []models.Transaction{
		credit(date(2024, 1, 1), 100, "a"),
		credit(date(2024, 1, 3), 100, "a"),
		credit(date(2024, 1, 20), 100, "a"),
		debit(date(2024, 2, 28), 100, "rent"),
	}
	m := WorkStabilityMetric(txns, fixedNow)
	assert.Equal(t, 17.0, m.Value)
	assert.Equal(t, "Significant Gaps", m.Status)
}

func TestExpenseShocks(t *testing.T) {
	txns := []models.Transaction{
		debit(date(2024, 1, 1), 1000, "food"),
		debit(date(2024, 2, 1), 1000, "food"),
		debit(date(2024, 3, 1), 1000, "food"),
		debit(date(2024, 4, 1), 5000, "repair"),
	}
	m := ExpenseShocksMetric(txns, fixedNow)
	assert.Equal(t, 1.0, m.Value)
	assert.Equal(t, 80.0, m.Score)
}

func TestFixedObligationRatio(t *testing.T) {
	var txns []models.Transaction
	rents := []float64{4980, 5020, 5000, 5100}
	for i, rent := range rents {
		month := time.Month(1 + i)
		txns = append(txns,
			credit(date(2024, month, 1), 20000, "delivery"),
			debit(date(2024, month, 2), rent, "rent"),
		)
	}
	// one-off spend never recurs
	txns = append(txns, debit(date(2024, 2, 15), 9000, "phone"))

	m := FixedObligationMetric(txns, fixedNow)
	assert.Equal(t, 0.25, m.Value)
	assert.Equal(t, 80.0, m.Score)
}

func TestFixedObligationRecurringThreshold(t *testing.T) {
	// An expense present in half of the months counts as recurring.
	txns := []models.Transaction{
		credit(date(2024, 1, 1), 10000, "a"),
		credit(date(2024, 2, 1), 10000, "a"),
		credit(date(2024, 3, 1), 10000, "a"),
		credit(date(2024, 4, 1), 10000, "a"),
		debit(date(2024, 1, 5), 3000, "emi"),
		debit(date(2024, 3, 5), 3000, "emi"),
	}
	m := FixedObligationMetric(txns, fixedNow)
	assert.Equal(t, 0.3, m.Value)
}

func TestNetCashFlowAndSavings(t *testing.T) {
	txns := []models.Transaction{
		credit(date(2024, 1, 1), 10000, "a"),
		debit(date(2024, 1, 2), 7000, "b"),
		credit(date(2024, 2, 1), 10000, "a"),
		debit(date(2024, 2, 2), 11000, "b"),
	}
	ncf := NetCashFlowMetric(txns, fixedNow)
	assert.Equal(t, 0.1, ncf.Value)
	assert.Equal(t, "Minimal Savings", ncf.Status)

	sav := SavingsBehaviorMetric(txns, fixedNow)
	assert.Equal(t, 50.0, sav.Value)
	assert.Equal(t, 40.0, sav.Score)
}

func TestDailyBalancesForwardFill(t *testing.T) {
	txns := []models.Transaction{
		credit(date(2024, 1, 1), 10000, "a"),
		debit(date(2024, 1, 3), 5000, "b"),
	}
	assert.Equal(t, []float64{10000, 10000, 5000}, DailyBalances(txns))

	avg := AvgDailyBalanceMetric(txns, fixedNow)
	assert.Equal(t, 8333.0, avg.Value)
	assert.Equal(t, 80.0, avg.Score)

	risk := NegativeBalanceRiskMetric(txns, fixedNow)
	assert.Equal(t, 0.0, risk.Value)
	assert.Equal(t, "No Risk", risk.Status)
}

func TestNegativeBalanceRiskFloor(t *testing.T) {
	txns := []models.Transaction{
		credit(date(2024, 1, 1), 500, "a"),
		credit(date(2024, 1, 4), 4000, "a"),
	}
	// balances 500,500,500,4500: three days under the 1000 floor
	m := NegativeBalanceRiskMetric(txns, fixedNow)
	assert.Equal(t, 75.0, m.Value)
	assert.Equal(t, 20.0, m.Score)
}

func TestGigStabilityRating(t *testing.T) {
	rating := func(r float64) *models.GigData { return &models.GigData{PlatformRating: &r} }

	assert.Equal(t, 90.0, GigStabilityMetric(nil, rating(4.8), fixedNow).Score)
	assert.Equal(t, 75.0, GigStabilityMetric(nil, rating(4.0), fixedNow).Score)
	assert.Equal(t, 60.0, GigStabilityMetric(nil, rating(3.7), fixedNow).Score)
	assert.Equal(t, 40.0, GigStabilityMetric(nil, rating(2.0), fixedNow).Score)

	short := steadyIncome(2)
	assert.Equal(t, 40.0, GigStabilityMetric(short, nil, fixedNow).Score)
	assert.Equal(t, 55.0, GigStabilityMetric(steadyIncome(3), nil, fixedNow).Score)
}

func TestCategoryScore(t *testing.T) {
	metrics := map[string]models.MetricResult{
		AvgDailyBalance:     {Score: 100},
		NegativeBalanceRisk: {Score: 50},
		"notInTable":        {Score: 0},
	}
	assert.Equal(t, 80.0, CategoryScore(metrics, LiquidityMetrics))

	metrics[NegativeBalanceRisk] = models.MetricResult{Score: math.NaN()}
	assert.Equal(t, 100.0, CategoryScore(metrics, LiquidityMetrics))

	assert.Equal(t, 50.0, CategoryScore(nil, LiquidityMetrics))
}

func TestFinalScoreIsClampedAndScaled(t *testing.T) {
	assert.Equal(t, ScoreMax, FinalScore(models.ScoreBreakdown{IncomeQuality: 100, SpendingBehavior: 100, Liquidity: 100, GigStability: 100}))
	assert.Equal(t, ScoreMin, FinalScore(models.ScoreBreakdown{}))
	assert.Equal(t, 500, FinalScore(models.ScoreBreakdown{IncomeQuality: 50, SpendingBehavior: 50, Liquidity: 50, GigStability: 50}))
	assert.Equal(t, ScoreMax, FinalScore(models.ScoreBreakdown{IncomeQuality: 400, SpendingBehavior: 400, Liquidity: 400, GigStability: 400}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score int
		want  models.RiskLevel
	}{
		{0, models.RiskHigh},
		{350, models.RiskHigh},
		{351, models.RiskMedium},
		{700, models.RiskMedium},
		{701, models.RiskLow},
		{1000, models.RiskLow},
		{-5, models.RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %d", tt.score)
	}
}

func TestEngineScoreIsDeterministic(t *testing.T) {
	e := NewEngineAt(func() time.Time { return fixedNow })
	txns := append(steadyIncome(6), debit(date(2024, 2, 10), 6000, "rent"), debit(date(2024, 3, 10), 6000, "rent"))
	models.SortTransactions(txns)

	a := e.Score("u1", txns, nil)
	b := e.Score("u1", txns, nil)
	assert.Equal(t, a, b)

	assert.GreaterOrEqual(t, a.CreditScore, ScoreMin)
	assert.LessOrEqual(t, a.CreditScore, ScoreMax)
	assert.Equal(t, Classify(a.CreditScore), a.RiskLevel)
	assert.Len(t, a.Metrics, 13)
	assert.NotContains(t, a.Metrics, GigStability)
	assert.Equal(t, 70, a.ScoreBreakdown.GigStability)
}

func TestRepairRescoresStaleMetrics(t *testing.T) {
	e := NewEngineAt(func() time.Time { return fixedNow })
	p := &models.CreditProfile{
		UserID: "u1",
		Metrics: map[string]models.MetricResult{
			AvgMonthlyIncome:  {Value: 20000, Score: 0, Status: UnknownStatus},
			IncomeVolatility:  {Value: 0.2, Score: 0, Status: "Stable"},
			WorkStability:     {Value: 0, Score: 20, Status: "Insufficient Data"},
			NetCashFlowRatio:  {Value: -0.2, Score: 0, Status: "Negative Cash Flow"},
			"retiredMetric":   {Value: 5, Score: 0, Status: UnknownStatus},
			IncomeConsistency: {Value: 95, Score: 100, Status: "Highly Consistent"},
		},
	}

	repaired := e.Repair(p)

	assert.ElementsMatch(t, []string{AvgMonthlyIncome, IncomeVolatility, NetCashFlowRatio}, repaired)
	assert.Equal(t, 40.0, p.Metrics[AvgMonthlyIncome].Score)
	assert.Equal(t, "Low Income", p.Metrics[AvgMonthlyIncome].Status)
	assert.Equal(t, 80.0, p.Metrics[IncomeVolatility].Score)
	assert.Equal(t, 20.0, p.Metrics[WorkStability].Score)
	assert.Equal(t, UnknownStatus, p.Metrics["retiredMetric"].Status)
}

func TestAnalyze(t *testing.T) {
	p := &models.CreditProfile{
		UserID:         "u1",
		CreditScore:    720,
		ScoreBreakdown: models.ScoreBreakdown{IncomeQuality: 80, SpendingBehavior: 40, Liquidity: 60, GigStability: 45},
		Metrics: map[string]models.MetricResult{
			IncomeVolatility: {Score: 40},
			NetCashFlowRatio: {Value: 0.05},
			ExpenseShocks:    {Value: 3},
		},
	}
	a := Analyze(p)

	require.Equal(t, models.RiskLow, a.RiskLevel)
	assert.Equal(t, 50000.0, a.Recommendations.MaxLoanAmount)
	assert.Equal(t, 100000.0, a.Recommendations.WalletLimit)
	assert.Equal(t, []string{"Strong income profile"}, a.Strengths)
	assert.Equal(t, []string{"High spending relative to income", "Limited work history"}, a.Weaknesses)
	assert.Equal(t, []string{
		"Reduce unnecessary expenses",
		"Build consistent savings habit",
		"Build longer earning track record",
		"Stabilize monthly income",
		"Increase savings rate to 10%+",
		"Plan for irregular expenses",
	}, a.ActionItems)
}

func TestAnalyzeDefaultStrength(t *testing.T) {
	a := Analyze(&models.CreditProfile{CreditScore: 100, ScoreBreakdown: models.ScoreBreakdown{IncomeQuality: 50, SpendingBehavior: 50, Liquidity: 50, GigStability: 50}})
	assert.Equal(t, models.RiskHigh, a.RiskLevel)
	assert.Equal(t, []string{"Building credit profile"}, a.Strengths)
	assert.Empty(t, a.Weaknesses)
	assert.Equal(t, 24.0, a.Recommendations.InterestRate)
}
