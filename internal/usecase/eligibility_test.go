package usecase

import (
	"context"
	"testing"

	"GigCredit/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileWithScore(score int, risk models.RiskLevel) *models.CreditProfile {
	return &models.CreditProfile{UserID: "u1", CreditScore: score, RiskLevel: risk}
}

func TestEvaluateEligibility(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		income   float64
		eligible bool
		max      float64
		rate     float64
	}{
		{"below threshold", 380, 40000, false, 0, 0},
		{"excellent tier capped", 800, 200000, true, 500000, 8},
		{"good tier", 720, 25000, true, 75000, 12},
		{"fair tier", 560, 30000, true, 60000, 16},
		{"emergency tier rounds to hundreds", 450, 12345, true, 12300, 20},
		{"floor applies to thin income", 450, 500, true, 1000, 20},
		{"threshold is inclusive", 400, 10000, true, 10000, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := EvaluateEligibility(
				profileWithScore(tc.score, models.RiskMedium),
				&models.FinancialSummary{MonthlyAvgIncome: tc.income},
			)
			assert.Equal(t, tc.eligible, res.Eligible)
			assert.Equal(t, tc.max, res.MaxAmount)
			assert.Equal(t, tc.rate, res.SuggestedInterestRate)
			assert.Equal(t, tc.score, res.CreditScore)
			require.Len(t, res.Reasons, 1)
		})
	}
}

func TestEvaluateEligibilityWithoutProfile(t *testing.T) {
	res := EvaluateEligibility(nil, nil)
	assert.False(t, res.Eligible)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)
	assert.Zero(t, res.MaxAmount)
	assert.Equal(t, []string{"No credit profile found. Please complete credit analysis first."}, res.Reasons)
}

func TestEvaluateEligibilityBelowThresholdReason(t *testing.T) {
	res := EvaluateEligibility(profileWithScore(380, models.RiskHigh), &models.FinancialSummary{})
	assert.Equal(t, []string{"Credit score (380) is below minimum threshold of 400."}, res.Reasons)
}

func TestEligibilityCheckUsesStoredProfile(t *testing.T) {
	f := newCreditFixture()
	ctx := context.Background()
	elig := NewEligibilityUsecase(f.uc)

	res, err := elig.Check(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, res.Eligible)

	_, err = f.uc.Calculate(ctx, "u1", monthlyWages(6), nil)
	require.NoError(t, err)
	_, err = f.uc.Ingest(ctx, "u1", monthlyWages(6))
	require.NoError(t, err)

	res, err = elig.Check(ctx, "u1")
	require.NoError(t, err)
	p, err := f.uc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.CreditScore, res.CreditScore)
	assert.Greater(t, res.FinancialSnapshot.MonthlyAvgIncome, 0.0)
}
