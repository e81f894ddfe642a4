package scoring

import "GigCredit/internal/domain/models"

const (
	strengthThreshold = 70
	weaknessThreshold = 50
)

// Classify maps a credit score to its risk band. Scores outside every band are HIGH.
func Classify(score int) models.RiskLevel {
	for _, b := range RiskBands {
		if score >= b.Min && score <= b.Max {
			return b.Level
		}
	}
	return models.RiskHigh
}

// Recommend returns the fixed lending bundle of a band.
func Recommend(level models.RiskLevel) models.Recommendations {
	switch level {
	case models.RiskLow:
		return models.Recommendations{MaxLoanAmount: 50000, InterestRate: 12, LoanTermMonths: 12, InsurancePremiumMultiplier: 1.0, WalletLimit: 100000}
	case models.RiskMedium:
		return models.Recommendations{MaxLoanAmount: 25000, InterestRate: 18, LoanTermMonths: 6, InsurancePremiumMultiplier: 1.5, WalletLimit: 50000}
	default:
		return models.Recommendations{MaxLoanAmount: 10000, InterestRate: 24, LoanTermMonths: 3, InsurancePremiumMultiplier: 2.0, WalletLimit: 20000}
	}
}

type categoryAdvice struct {
	score    func(models.ScoreBreakdown) int
	strength string
	weakness string
	actions  []string
}

var advice = []categoryAdvice{
	{
		score:    func(b models.ScoreBreakdown) int { return b.IncomeQuality },
		strength: "Strong income profile",
		weakness: "Income instability detected",
		actions:  []string{"Diversify income sources", "Increase active working days"},
	},
	{
		score:    func(b models.ScoreBreakdown) int { return b.SpendingBehavior },
		strength: "Excellent spending discipline",
		weakness: "High spending relative to income",
		actions:  []string{"Reduce unnecessary expenses", "Build consistent savings habit"},
	},
	{
		score:    func(b models.ScoreBreakdown) int { return b.Liquidity },
		strength: "Good liquidity cushion",
		weakness: "Low liquidity reserves",
		actions:  []string{"Maintain higher account balance", "Avoid overdrafts"},
	},
	{
		score:    func(b models.ScoreBreakdown) int { return b.GigStability },
		strength: "Stable work pattern",
		weakness: "Limited work history",
		actions:  []string{"Build longer earning track record"},
	},
}

// Analyze explains a profile: band, bundle, strengths, weaknesses and actions.
func Analyze(p *models.CreditProfile) models.RiskAnalysis {
	level := Classify(p.CreditScore)
	out := models.RiskAnalysis{
		UserID:          p.UserID,
		CreditScore:     p.CreditScore,
		RiskLevel:       level,
		ScoreBreakdown:  p.ScoreBreakdown,
		Recommendations: Recommend(level),
		Strengths:       []string{},
		Weaknesses:      []string{},
		ActionItems:     []string{},
	}

	for _, a := range advice {
		s := a.score(p.ScoreBreakdown)
		if s >= strengthThreshold {
			out.Strengths = append(out.Strengths, a.strength)
		}
		if s < weaknessThreshold {
			out.Weaknesses = append(out.Weaknesses, a.weakness)
			out.ActionItems = append(out.ActionItems, a.actions...)
		}
	}

	if m, ok := p.Metrics[IncomeVolatility]; ok && m.Score < 50 {
		out.ActionItems = append(out.ActionItems, "Stabilize monthly income")
	}
	if m, ok := p.Metrics[NetCashFlowRatio]; ok && m.Value < 0.1 {
		out.ActionItems = append(out.ActionItems, "Increase savings rate to 10%+")
	}
	if m, ok := p.Metrics[ExpenseShocks]; ok && m.Value > 2 {
		out.ActionItems = append(out.ActionItems, "Plan for irregular expenses")
	}

	if len(out.Strengths) == 0 {
		out.Strengths = append(out.Strengths, "Building credit profile")
	}
	return out
}
