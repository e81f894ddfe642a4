package models

import (
	"math"
	"sort"
	"time"

	"GigCredit/pkg/util"
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// Transaction is a validated ledger entry. Values are only produced by NewTransactions,
// so calculators never re-check date, type or amount.
type Transaction struct {
	Date        time.Time       `json:"date" bson:"date"`
	Type        TransactionType `json:"type" bson:"type"`
	Amount      float64         `json:"amount" bson:"amount"`
	Category    string          `json:"category" bson:"category"`
	Source      string          `json:"source" bson:"source"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
}

func (t Transaction) IsCredit() bool { return t.Type == Credit }
func (t Transaction) IsDebit() bool  { return t.Type == Debit }

// TransactionInput is the wire shape accepted from ledgers, statement parsers and platform syncs.
type TransactionInput struct {
	Date        string   `json:"date"`
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Source      string   `json:"source"`
	Description string   `json:"description,omitempty"`
}

// NewTransactions validates raw input and returns the entries sorted by date.
func NewTransactions(in []TransactionInput) ([]Transaction, error) {
	if len(in) == 0 {
		return nil, NewValidationError("transactions", "Transactions array cannot be empty")
	}
	out := make([]Transaction, 0, len(in))
	for i, raw := range in {
		if raw.Date == "" {
			return nil, &ValidationError{Index: i, Field: "date", Reason: "Missing date"}
		}
		date, ok := util.ParseTime(raw.Date)
		if !ok {
			return nil, &ValidationError{Index: i, Field: "date", Reason: "Invalid date"}
		}
		typ := TransactionType(raw.Type)
		if typ != Credit && typ != Debit {
			return nil, &ValidationError{Index: i, Field: "type", Reason: "Invalid type (must be 'credit' or 'debit')"}
		}
		if raw.Amount == nil || math.IsNaN(*raw.Amount) || math.IsInf(*raw.Amount, 0) || *raw.Amount <= 0 {
			return nil, &ValidationError{Index: i, Field: "amount", Reason: "Invalid amount"}
		}
		out = append(out, Transaction{
			Date:        date.UTC(),
			Type:        typ,
			Amount:      *raw.Amount,
			Category:    raw.Category,
			Source:      raw.Source,
			Description: raw.Description,
		})
	}
	SortTransactions(out)
	return out, nil
}

// SortTransactions orders entries chronologically, keeping input order for equal dates.
func SortTransactions(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
}

// Credits returns only income entries.
func Credits(txns []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsCredit() {
			out = append(out, t)
		}
	}
	return out
}
