package usecase

import (
	"context"
	"fmt"
	"math"

	"GigCredit/internal/domain/models"
)

// MinEligibleScore gates every loan application.
const MinEligibleScore = 400

type eligibilityTier struct {
	minScore   int
	multiplier float64
	cap        float64
	rate       float64
	reason     string
}

// Tiers are checked top-down; the last one catches every eligible score.
var eligibilityTiers = []eligibilityTier{
	{750, 5, 500000, 8, "Excellent credit score — highest loan tier eligible."},
	{650, 3, 300000, 12, "Good credit score — standard loan tier eligible."},
	{500, 2, 150000, 16, "Fair credit score — basic loan tier eligible."},
	{0, 1, 50000, 20, "Low credit score — emergency-only tier eligible."},
}

// EvaluateEligibility derives the borrowing ceiling from a profile and the
// ledger summary. It fails closed when there is no profile.
func EvaluateEligibility(p *models.CreditProfile, s *models.FinancialSummary) models.EligibilityResult {
	res := models.EligibilityResult{RiskLevel: models.RiskHigh, Reasons: []string{}}
	if p == nil {
		res.Reasons = append(res.Reasons, "No credit profile found. Please complete credit analysis first.")
		return res
	}

	res.CreditScore = p.CreditScore
	res.RiskLevel = p.RiskLevel
	res.ScoreBreakdown = p.ScoreBreakdown
	res.FinancialSnapshot = s.Snapshot()

	if p.CreditScore < MinEligibleScore {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Credit score (%d) is below minimum threshold of %d.", p.CreditScore, MinEligibleScore))
		return res
	}
	res.Eligible = true

	var income float64
	if s != nil {
		income = s.MonthlyAvgIncome
	}
	for _, t := range eligibilityTiers {
		if p.CreditScore < t.minScore {
			continue
		}
		res.MaxAmount = math.Min(income*t.multiplier, t.cap)
		res.SuggestedInterestRate = t.rate
		res.Reasons = append(res.Reasons, t.reason)
		break
	}
	res.MaxAmount = math.Round(math.Max(res.MaxAmount, models.MinLoanAmount)/100) * 100
	return res
}

// ProfileSource is the read side of the credit flow that eligibility depends on.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*models.CreditProfile, error)
	Summary(ctx context.Context, userID string) (*models.FinancialSummary, error)
}

// EligibilityUsecase evaluates a borrower against the stored profile and ledger.
type EligibilityUsecase struct {
	source ProfileSource
}

func NewEligibilityUsecase(source ProfileSource) *EligibilityUsecase {
	return &EligibilityUsecase{source: source}
}

func (u *EligibilityUsecase) Check(ctx context.Context, userID string) (*models.EligibilityResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := u.source.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		res := EvaluateEligibility(nil, nil)
		return &res, nil
	}
	s, err := u.source.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := EvaluateEligibility(p, s)
	return &res, nil
}
