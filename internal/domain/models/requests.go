package models

// Requests for the credit and loan HTTP endpoints.

type CalculateRequest struct {
	UserID       string             `json:"userId" validate:"required"`
	Transactions []TransactionInput `json:"transactions"`
	GigData      *GigData           `json:"gigData,omitempty"`
}

type IngestRequest struct {
	UserID       string             `json:"userId" validate:"required"`
	Transactions []TransactionInput `json:"transactions"`
}

type ApplyRequest struct {
	Amount             float64 `json:"amount" validate:"required,gt=0"`
	Purpose            string  `json:"purpose" validate:"required,oneof=medical vehicle_repair family_emergency rent equipment education other"`
	PurposeDescription string  `json:"purposeDescription" validate:"max=500"`
	UrgencyLevel       string  `json:"urgencyLevel" default:"medium" validate:"oneof=critical high medium"`
}

type OfferRequest struct {
	InterestRate        float64  `json:"interestRate" validate:"required,gt=0,lte=100"`
	RepaymentTermMonths int      `json:"repaymentTermMonths" validate:"required,gte=1,lte=60"`
	OfferedAmount       *float64 `json:"offeredAmount,omitempty" validate:"omitempty,gt=0"`
	LenderNotes         string   `json:"lenderNotes" validate:"max=500"`
}

type PassRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RepaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" default:"bank_transfer" validate:"oneof=upi bank_transfer cash auto_debit other"`
	Reference string  `json:"reference" validate:"max=100"`
	Note      string  `json:"note" validate:"max=500"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ApplicationsRequest struct {
	Filter string `query:"filter" default:"all" validate:"oneof=pending offered owned all"`
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected disbursed repaid defaulted cancelled"`
}

// LoanApplication is the validated input to the apply operation.
type LoanApplication struct {
	Amount             float64
	Purpose            string
	PurposeDescription string
	UrgencyLevel       string
}

// OfferTermsInput is the validated input to makeOffer.
type OfferTermsInput struct {
	InterestRate        float64
	RepaymentTermMonths int
	OfferedAmount       *float64
	Notes               string
}

// RepaymentInput is the validated input to requestRepayment.
type RepaymentInput struct {
	Amount    float64
	Method    string
	Reference string
	Note      string
}
