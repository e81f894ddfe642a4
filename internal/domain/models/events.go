package models

import "time"

// EventType names a domain event published after a successful operation.
type EventType string

const (
	EventProfileScored      EventType = "profile.scored"
	EventLoanApplied        EventType = "loan.applied"
	EventOfferMade          EventType = "loan.offer_made"
	EventOfferPassed        EventType = "loan.offer_passed"
	EventOfferWithdrawn     EventType = "loan.offer_withdrawn"
	EventOfferAccepted      EventType = "loan.offer_accepted"
	EventOfferRejected      EventType = "loan.offer_rejected"
	EventLoanDisbursed      EventType = "loan.disbursed"
	EventRepaymentRequested EventType = "loan.repayment_requested"
	EventRepaymentConfirmed EventType = "loan.repayment_confirmed"
	EventRepaymentRejected  EventType = "loan.repayment_rejected"
	EventLoanRepaid         EventType = "loan.repaid"
	EventLoanDefaulted      EventType = "loan.defaulted"
)

// Event is the envelope written to the events topic.
type Event struct {
	Type     EventType   `json:"type"`
	UserID   string      `json:"userId"`
	LoanID   string      `json:"loanId,omitempty"`
	LenderID string      `json:"lenderId,omitempty"`
	At       time.Time   `json:"at"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Key is the partition key: the loan when there is one, else the user.
func (e Event) Key() string {
	if e.LoanID != "" {
		return e.LoanID
	}
	return e.UserID
}

// TransactionBatch is the message consumed from the transactions topic.
type TransactionBatch struct {
	UserID       string             `json:"userId"`
	Transactions []TransactionInput `json:"transactions"`
}
