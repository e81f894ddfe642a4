package models

import (
	"math"
	"time"

	"GigCredit/pkg/util"
)

// FinancialSummary is the ledger aggregate used for eligibility.
type FinancialSummary struct {
	UserID             string    `json:"userId"`
	TotalIncome        float64   `json:"totalIncome"`
	TotalExpenses      float64   `json:"totalExpenses"`
	MonthlyAvgIncome   float64   `json:"monthlyAvgIncome"`
	MonthlyAvgExpenses float64   `json:"monthlyAvgExpenses"`
	NetBalance         float64   `json:"netBalance"`
	SavingsRate        float64   `json:"savingsRate"`
	DataStartDate      time.Time `json:"dataStartDate"`
	DataEndDate        time.Time `json:"dataEndDate"`
}

// Snapshot projects the fields frozen onto a loan application.
func (s *FinancialSummary) Snapshot() FinancialSnapshot {
	if s == nil {
		return FinancialSnapshot{}
	}
	return FinancialSnapshot{
		MonthlyAvgIncome:   s.MonthlyAvgIncome,
		MonthlyAvgExpenses: s.MonthlyAvgExpenses,
		SavingsRate:        s.SavingsRate,
		NetBalance:         s.NetBalance,
	}
}

// FinancialSnapshot is the financial state captured at application time.
type FinancialSnapshot struct {
	MonthlyAvgIncome   float64 `json:"monthlyAvgIncome" bson:"monthlyAvgIncome"`
	MonthlyAvgExpenses float64 `json:"monthlyAvgExpenses" bson:"monthlyAvgExpenses"`
	SavingsRate        float64 `json:"savingsRate" bson:"savingsRate"`
	NetBalance         float64 `json:"netBalance" bson:"netBalance"`
}

// Summarize aggregates a user's ledger. Averages divide by the months spanned
// from the earliest to the latest entry.
func Summarize(userID string, txns []Transaction) *FinancialSummary {
	s := &FinancialSummary{UserID: userID}
	if len(txns) == 0 {
		return s
	}
	start, end := txns[0].Date, txns[0].Date
	for _, t := range txns {
		if t.IsCredit() {
			s.TotalIncome += t.Amount
		} else {
			s.TotalExpenses += t.Amount
		}
		if t.Date.Before(start) {
			start = t.Date
		}
		if t.Date.After(end) {
			end = t.Date
		}
	}
	months := float64(util.MonthsSpanned(start, end))
	s.MonthlyAvgIncome = s.TotalIncome / months
	s.MonthlyAvgExpenses = s.TotalExpenses / months
	s.NetBalance = s.TotalIncome - s.TotalExpenses
	if s.TotalIncome > 0 {
		s.SavingsRate = math.Round(s.NetBalance/s.TotalIncome*100*100) / 100
	}
	s.DataStartDate, s.DataEndDate = start, end
	return s
}

// EligibilityResult is the borrowing ceiling derived from a profile and summary.
type EligibilityResult struct {
	Eligible              bool              `json:"eligible"`
	MaxAmount             float64           `json:"maxAmount"`
	SuggestedInterestRate float64           `json:"suggestedInterestRate"`
	CreditScore           int               `json:"creditScore"`
	RiskLevel             RiskLevel         `json:"riskLevel"`
	ScoreBreakdown        ScoreBreakdown    `json:"scoreBreakdown"`
	FinancialSnapshot     FinancialSnapshot `json:"financialSnapshot"`
	Reasons               []string          `json:"reasons"`
}
