package service

import "GigCredit/internal/domain/models"

// CreditScorer computes and explains credit profiles from a validated ledger.
type CreditScorer interface {
	Score(userID string, txns []models.Transaction, gig *models.GigData) *models.CreditProfile
	Analyze(p *models.CreditProfile) models.RiskAnalysis
	// Repair rescores stale metrics in place and returns their names.
	Repair(p *models.CreditProfile) []string
}
