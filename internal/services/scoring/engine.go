package scoring

import (
	"time"

	"GigCredit/internal/domain/models"
	domsvc "GigCredit/internal/domain/service"
)

// Engine turns a validated ledger into a credit profile.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine stamping results with the wall clock.
func NewEngine() *Engine { return &Engine{now: time.Now} }

// NewEngineAt returns an engine with a fixed clock.
func NewEngineAt(now func() time.Time) *Engine { return &Engine{now: now} }

// Score runs every calculator, aggregates and classifies. The gig metric only
// feeds the breakdown; the returned metrics map holds the other categories.
func (e *Engine) Score(userID string, txns []models.Transaction, gig *models.GigData) *models.CreditProfile {
	now := e.now().UTC()

	income := IncomeCategoryMetrics(txns, now)
	spending := SpendingCategoryMetrics(txns, now)
	liquidity := LiquidityCategoryMetrics(txns, now)
	gigResult := GigStabilityMetric(txns, gig, now)

	breakdown := Breakdown(income, spending, liquidity, gigResult)
	score := FinalScore(breakdown)

	metrics := make(map[string]models.MetricResult, len(income)+len(spending)+len(liquidity))
	for _, group := range []map[string]models.MetricResult{income, spending, liquidity} {
		for k, v := range group {
			metrics[k] = v
		}
	}

	return &models.CreditProfile{
		UserID:         userID,
		CreditScore:    score,
		RiskLevel:      Classify(score),
		ScoreBreakdown: breakdown,
		Metrics:        metrics,
		UpdatedAt:      now,
	}
}

// Analyze delegates to the package-level classifier.
func (e *Engine) Analyze(p *models.CreditProfile) models.RiskAnalysis { return Analyze(p) }

// Repair rescores, in place, every metric that looks computed under an older
// band table: status "Unknown", or a zero score on a finite non-zero value.
// It returns the names of the metrics it touched.
func (e *Engine) Repair(p *models.CreditProfile) []string {
	var repaired []string
	for name, m := range p.Metrics {
		if !needsRepair(m) {
			continue
		}
		def, ok := Definition(name)
		if !ok {
			continue
		}
		score, status := Lookup(m.Value, def.Bands)
		m.Score, m.Status = score, status
		p.Metrics[name] = m
		repaired = append(repaired, name)
	}
	return repaired
}

func needsRepair(m models.MetricResult) bool {
	if m.Status == UnknownStatus {
		return true
	}
	return m.Score == 0 && finite(m.Value) && m.Value != 0
}

var _ domsvc.CreditScorer = (*Engine)(nil)
