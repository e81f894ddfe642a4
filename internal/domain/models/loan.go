package models

import (
	"math"
	"time"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanRejected  LoanStatus = "rejected"
	LoanDisbursed LoanStatus = "disbursed"
	LoanRepaid    LoanStatus = "repaid"
	LoanDefaulted LoanStatus = "defaulted"
	LoanCancelled LoanStatus = "cancelled"
)

// OfferStatus is the state of one lender's entry on a loan.
type OfferStatus string

const (
	OfferOffered          OfferStatus = "offered"
	OfferAccepted         OfferStatus = "accepted"
	OfferBorrowerRejected OfferStatus = "borrower_rejected"
	OfferNotSelected      OfferStatus = "not_selected"
	OfferPassed           OfferStatus = "passed"
	OfferWithdrawn        OfferStatus = "withdrawn"
)

// RepaymentStatus is the state of a borrower-submitted payment.
type RepaymentStatus string

const (
	RepaymentPending   RepaymentStatus = "pending_confirmation"
	RepaymentConfirmed RepaymentStatus = "confirmed"
	RepaymentRejected  RepaymentStatus = "rejected"
)

// MinLoanAmount is the smallest amount a borrower may apply for.
const MinLoanAmount = 1000.0

// Offer is a lender's entry on a loan. Passed entries carry zero terms.
type Offer struct {
	OfferID             string      `json:"offerId" bson:"offerId"`
	LenderID            string      `json:"lenderId" bson:"lenderId"`
	LenderName          string      `json:"lenderName" bson:"lenderName"`
	LenderOrganization  string      `json:"lenderOrganization" bson:"lenderOrganization"`
	InterestRate        float64     `json:"interestRate" bson:"interestRate"`
	RepaymentTermMonths int         `json:"repaymentTermMonths" bson:"repaymentTermMonths"`
	OfferedAmount       float64     `json:"offeredAmount" bson:"offeredAmount"`
	MonthlyEMI          float64     `json:"monthlyEmi" bson:"monthlyEmi"`
	TotalRepayable      float64     `json:"totalRepayable" bson:"totalRepayable"`
	LenderNotes         string      `json:"lenderNotes,omitempty" bson:"lenderNotes,omitempty"`
	Status              OfferStatus `json:"status" bson:"status"`
	OfferedAt           time.Time   `json:"offeredAt" bson:"offeredAt"`
	RespondedAt         *time.Time  `json:"respondedAt,omitempty" bson:"respondedAt,omitempty"`
}

// Repayment is one payment reported by the borrower.
type Repayment struct {
	PaymentID   string          `json:"paymentId" bson:"paymentId"`
	Amount      float64         `json:"amount" bson:"amount"`
	Date        time.Time       `json:"date" bson:"date"`
	Method      string          `json:"method" bson:"method"`
	Reference   string          `json:"reference,omitempty" bson:"reference,omitempty"`
	Note        string          `json:"note,omitempty" bson:"note,omitempty"`
	Status      RepaymentStatus `json:"status" bson:"status"`
	ConfirmedAt *time.Time      `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
}

// Loan is one application and everything that happened to it.
type Loan struct {
	ID                 string     `json:"id" bson:"_id"`
	BorrowerID         string     `json:"borrowerId" bson:"borrowerId"`
	Amount             float64    `json:"amount" bson:"amount"`
	Purpose            string     `json:"purpose" bson:"purpose"`
	PurposeDescription string     `json:"purposeDescription,omitempty" bson:"purposeDescription,omitempty"`
	UrgencyLevel       string     `json:"urgencyLevel" bson:"urgencyLevel"`
	Status             LoanStatus `json:"status" bson:"status"`

	CreditScoreAtApplication int               `json:"creditScoreAtApplication" bson:"creditScoreAtApplication"`
	RiskLevelAtApplication   RiskLevel         `json:"riskLevelAtApplication" bson:"riskLevelAtApplication"`
	EligibleAmount           float64           `json:"eligibleAmount" bson:"eligibleAmount"`
	ScoreBreakdown           ScoreBreakdown    `json:"scoreBreakdown" bson:"scoreBreakdown"`
	FinancialSnapshot        FinancialSnapshot `json:"financialSnapshot" bson:"financialSnapshot"`

	Offers []Offer `json:"offers" bson:"offers"`

	LenderID            string     `json:"lenderId,omitempty" bson:"lenderId,omitempty"`
	LenderOrganization  string     `json:"lenderOrganization,omitempty" bson:"lenderOrganization,omitempty"`
	ApprovedAmount      float64    `json:"approvedAmount,omitempty" bson:"approvedAmount,omitempty"`
	InterestRate        float64    `json:"interestRate,omitempty" bson:"interestRate,omitempty"`
	RepaymentTermMonths int        `json:"repaymentTermMonths,omitempty" bson:"repaymentTermMonths,omitempty"`
	MonthlyEMI          float64    `json:"monthlyEmi,omitempty" bson:"monthlyEmi,omitempty"`
	TotalRepayable      float64    `json:"totalRepayable" bson:"totalRepayable"`
	TotalRepaid         float64    `json:"totalRepaid" bson:"totalRepaid"`
	DueDate             *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`

	RepaymentHistory []Repayment `json:"repaymentHistory" bson:"repaymentHistory"`

	ApprovedAt  *time.Time `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	DisbursedAt *time.Time `json:"disbursedAt,omitempty" bson:"disbursedAt,omitempty"`
	SettledAt   *time.Time `json:"settledAt,omitempty" bson:"settledAt,omitempty"`
	DefaultedAt *time.Time `json:"defaultedAt,omitempty" bson:"defaultedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`

	Version int64 `json:"version" bson:"version"`
}

// Clone deep-copies the embedded arrays so a stored loan is never aliased.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Offers = append([]Offer(nil), l.Offers...)
	cp.RepaymentHistory = append([]Repayment(nil), l.RepaymentHistory...)
	return &cp
}

// OfferByID returns the index of the offer with the given id, or -1.
func (l *Loan) OfferByID(offerID string) int {
	for i := range l.Offers {
		if l.Offers[i].OfferID == offerID {
			return i
		}
	}
	return -1
}

// LenderEntry returns the index of lenderID's entry in the given status, or -1.
func (l *Loan) LenderEntry(lenderID string, status OfferStatus) int {
	for i := range l.Offers {
		if l.Offers[i].LenderID == lenderID && l.Offers[i].Status == status {
			return i
		}
	}
	return -1
}

// LatestEntry returns lenderID's most recent entry of any status.
func (l *Loan) LatestEntry(lenderID string) *Offer {
	for i := len(l.Offers) - 1; i >= 0; i-- {
		if l.Offers[i].LenderID == lenderID {
			o := l.Offers[i]
			return &o
		}
	}
	return nil
}

// HasEntry reports whether lenderID has touched the loan at all.
func (l *Loan) HasEntry(lenderID string) bool {
	return l.LatestEntry(lenderID) != nil
}

// PaymentByID returns the index of the repayment with the given id, or -1.
func (l *Loan) PaymentByID(paymentID string) int {
	for i := range l.RepaymentHistory {
		if l.RepaymentHistory[i].PaymentID == paymentID {
			return i
		}
	}
	return -1
}

// HasPendingRepayment reports whether a repayment awaits lender confirmation.
func (l *Loan) HasPendingRepayment() bool {
	for _, r := range l.RepaymentHistory {
		if r.Status == RepaymentPending {
			return true
		}
	}
	return false
}

// Remaining is what the borrower still owes.
func (l *Loan) Remaining() float64 {
	return math.Max(0, l.TotalRepayable-l.TotalRepaid)
}

// OfferTerms are the derived repayment figures for a principal, rate and term.
type OfferTerms struct {
	TotalRepayable float64
	MonthlyEMI     float64
}

// ComputeTerms applies simple interest: amount*rate*term/1200.
func ComputeTerms(amount, annualRate float64, termMonths int) OfferTerms {
	if termMonths <= 0 {
		return OfferTerms{}
	}
	interest := amount * annualRate * float64(termMonths) / 1200
	total := math.Round(amount + interest)
	return OfferTerms{
		TotalRepayable: total,
		MonthlyEMI:     math.Round(total / float64(termMonths)),
	}
}

// Ownership tags a loan row in the lender's application list.
type Ownership string

const (
	OwnershipOpen      Ownership = "open"
	OwnershipOfferSent Ownership = "offer_sent"
	OwnershipYours     Ownership = "yours"
)

// ApplicationRow is a loan as seen by one lender.
type ApplicationRow struct {
	*Loan
	Ownership Ownership `json:"ownership"`
	MyOffer   *Offer    `json:"myOffer,omitempty"`
}

// ApplicationFilter selects which loans a lender sees.
type ApplicationFilter string

const (
	FilterPending ApplicationFilter = "pending"
	FilterOffered ApplicationFilter = "offered"
	FilterOwned   ApplicationFilter = "owned"
	FilterAll     ApplicationFilter = "all"
)

// LenderStats summarizes a lender's book.
type LenderStats struct {
	OpenPendingCount    int     `json:"openPendingCount"`
	MyOffersCount       int     `json:"myOffersCount"`
	ApprovedCount       int     `json:"approvedCount"`
	DisbursedCount      int     `json:"disbursedCount"`
	RepaidCount         int     `json:"repaidCount"`
	DefaultedCount      int     `json:"defaultedCount"`
	TotalApprovedAmount float64 `json:"totalApprovedAmount"`
	TotalRepaidAmount   float64 `json:"totalRepaidAmount"`
	TotalApplications   int     `json:"totalApplications"`
}

// Lender identifies the caller on lender routes.
type Lender struct {
	ID           string
	Name         string
	Organization string
}
