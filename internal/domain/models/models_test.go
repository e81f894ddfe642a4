package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v float64) *float64 { return &v }

func TestNewTransactions(t *testing.T) {
	tests := []struct {
		name   string
		in     []TransactionInput
		errMsg string
	}{
		{"empty", nil, "Transactions array cannot be empty"},
		{"missing date", []TransactionInput{{Type: "credit", Amount: amt(1)}}, "Transaction 0: Missing date"},
		{"bad date", []TransactionInput{{Date: "yesterday", Type: "credit", Amount: amt(1)}}, "Transaction 0: Invalid date"},
		{"bad type", []TransactionInput{
			{Date: "2024-01-01", Type: "credit", Amount: amt(1)},
			{Date: "2024-01-02", Type: "refund", Amount: amt(1)},
		}, "Transaction 1: Invalid type (must be 'credit' or 'debit')"},
		{"missing amount", []TransactionInput{{Date: "2024-01-01", Type: "debit"}}, "Transaction 0: Invalid amount"},
		{"zero amount", []TransactionInput{{Date: "2024-01-01", Type: "debit", Amount: amt(0)}}, "Transaction 0: Invalid amount"},
		{"nan amount", []TransactionInput{{Date: "2024-01-01", Type: "debit", Amount: amt(math.NaN())}}, "Transaction 0: Invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransactions(tt.in)
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.errMsg, err.Error())
		})
	}
}

func TestNewTransactionsSortsAndNormalizes(t *testing.T) {
	out, err := NewTransactions([]TransactionInput{
		{Date: "2024-02-01T10:00:00+05:30", Type: "debit", Amount: amt(50), Category: "food"},
		{Date: "2024-01-15", Type: "credit", Amount: amt(100), Source: "platform"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, Credit, out[0].Type)
	assert.Equal(t, time.UTC, out[1].Date.Location())
	assert.Equal(t, 4, out[1].Date.Hour())
}

func TestSummarize(t *testing.T) {
	txns := []Transaction{
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Type: Credit, Amount: 30000},
		{Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), Type: Debit, Amount: 10000},
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Type: Credit, Amount: 30000},
	}
	s := Summarize("u1", txns)

	assert.Equal(t, 60000.0, s.TotalIncome)
	assert.Equal(t, 10000.0, s.TotalExpenses)
	assert.Equal(t, 20000.0, s.MonthlyAvgIncome)
	assert.InDelta(t, 3333.33, s.MonthlyAvgExpenses, 0.01)
	assert.Equal(t, 50000.0, s.NetBalance)
	assert.Equal(t, 83.33, s.SavingsRate)

	empty := Summarize("u2", nil)
	assert.Zero(t, empty.MonthlyAvgIncome)
	assert.Zero(t, empty.SavingsRate)
}

func TestComputeTerms(t *testing.T) {
	terms := ComputeTerms(50000, 15, 12)
	assert.Equal(t, 57500.0, terms.TotalRepayable)
	assert.Equal(t, 4792.0, terms.MonthlyEMI)

	assert.Equal(t, OfferTerms{}, ComputeTerms(50000, 15, 0))
}

func TestLoanHelpers(t *testing.T) {
	l := &Loan{
		Offers: []Offer{
			{OfferID: "o1", LenderID: "a", Status: OfferWithdrawn},
			{OfferID: "o2", LenderID: "a", Status: OfferOffered},
			{OfferID: "o3", LenderID: "b", Status: OfferPassed},
		},
		RepaymentHistory: []Repayment{{PaymentID: "p1", Status: RepaymentConfirmed}},
		TotalRepayable:   1000,
		TotalRepaid:      400,
	}

	assert.Equal(t, 1, l.OfferByID("o2"))
	assert.Equal(t, -1, l.OfferByID("nope"))
	assert.Equal(t, 1, l.LenderEntry("a", OfferOffered))
	assert.Equal(t, -1, l.LenderEntry("b", OfferOffered))
	assert.Equal(t, "o2", l.LatestEntry("a").OfferID)
	assert.True(t, l.HasEntry("b"))
	assert.False(t, l.HasEntry("c"))
	assert.False(t, l.HasPendingRepayment())
	assert.Equal(t, 600.0, l.Remaining())

	cp := l.Clone()
	cp.Offers[0].Status = OfferAccepted
	assert.Equal(t, OfferWithdrawn, l.Offers[0].Status)
}

func TestProfileStaleness(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	p := &CreditProfile{UpdatedAt: now.AddDate(0, 0, -31)}
	assert.True(t, p.IsStale(now))
	p.UpdatedAt = now.AddDate(0, 0, -29)
	assert.False(t, p.IsStale(now))
}

func TestErrorMessages(t *testing.T) {
	err := &StateConflictError{Resource: "loan", ID: "L1", Current: "approved", Expected: []string{"pending"}}
	assert.Equal(t, "loan L1 is approved, expected pending", err.Error())

	own := &OwnershipError{Resource: "loan", ID: "L1", Actor: "lender B"}
	assert.Equal(t, "lender B does not own loan L1", own.Error())

	nf := &NotFoundError{Resource: "Credit profile"}
	assert.Equal(t, "Credit profile not found", nf.Error())
}
