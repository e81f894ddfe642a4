package models

import "time"

// ProfileStaleAfter is how long a stored profile is trusted before it is flagged stale.
const ProfileStaleAfter = 30 * 24 * time.Hour

// RiskLevel is the band a credit score falls in.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// MetricResult is one scored signal. Score is always a band value of its metric.
type MetricResult struct {
	Value       float64   `json:"value" bson:"value"`
	Score       float64   `json:"score" bson:"score"`
	Status      string    `json:"status" bson:"status"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

// ScoreBreakdown holds the four category scores, each 0-100.
type ScoreBreakdown struct {
	IncomeQuality    int `json:"incomeQualityScore" bson:"incomeQualityScore"`
	SpendingBehavior int `json:"spendingBehaviorScore" bson:"spendingBehaviorScore"`
	Liquidity        int `json:"liquidityScore" bson:"liquidityScore"`
	GigStability     int `json:"gigStabilityScore" bson:"gigStabilityScore"`
}

// GigData is optional platform-side information about the worker.
type GigData struct {
	PlatformRating *float64               `json:"platformRating,omitempty" bson:"platformRating,omitempty"`
	Attributes     map[string]interface{} `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Empty reports whether no gig information was supplied at all.
func (g *GigData) Empty() bool {
	return g == nil || (g.PlatformRating == nil && len(g.Attributes) == 0)
}

// CreditProfile is the single, overwritten-in-place scoring record of a user.
type CreditProfile struct {
	UserID         string                  `json:"userId" bson:"userId"`
	CreditScore    int                     `json:"creditScore" bson:"creditScore"`
	RiskLevel      RiskLevel               `json:"riskLevel" bson:"riskLevel"`
	ScoreBreakdown ScoreBreakdown          `json:"scoreBreakdown" bson:"scoreBreakdown"`
	Metrics        map[string]MetricResult `json:"metrics" bson:"metrics"`
	GigData        *GigData                `json:"gigData,omitempty" bson:"gigData,omitempty"`
	CreatedAt      time.Time               `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt" bson:"updatedAt"`

	// Stale is computed on read and never persisted.
	Stale bool `json:"stale" bson:"-"`
}

// IsStale reports whether the profile is older than ProfileStaleAfter.
func (p *CreditProfile) IsStale(now time.Time) bool {
	return now.Sub(p.UpdatedAt) > ProfileStaleAfter
}

// Clone returns a deep copy so cached or stored values are never shared.
func (p *CreditProfile) Clone() *CreditProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Metrics = make(map[string]MetricResult, len(p.Metrics))
	for k, v := range p.Metrics {
		cp.Metrics[k] = v
	}
	if p.GigData != nil {
		g := *p.GigData
		cp.GigData = &g
	}
	return &cp
}

// Recommendations is the fixed lending bundle attached to a risk band.
type Recommendations struct {
	MaxLoanAmount              float64 `json:"maxLoanAmount"`
	InterestRate               float64 `json:"interestRate"`
	LoanTermMonths             int     `json:"loanTermMonths"`
	InsurancePremiumMultiplier float64 `json:"insurancePremiumMultiplier"`
	WalletLimit                float64 `json:"walletLimit"`
}

// RiskAnalysis explains a profile in lending terms.
type RiskAnalysis struct {
	UserID          string          `json:"userId"`
	CreditScore     int             `json:"creditScore"`
	RiskLevel       RiskLevel       `json:"riskLevel"`
	ScoreBreakdown  ScoreBreakdown  `json:"scoreBreakdown"`
	Recommendations Recommendations `json:"recommendations"`
	Strengths       []string        `json:"strengths"`
	Weaknesses      []string        `json:"weaknesses"`
	ActionItems     []string        `json:"actionItems"`
}
