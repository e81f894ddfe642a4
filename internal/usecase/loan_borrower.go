package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/pkg/logger"
	"GigCredit/pkg/util"
)

const defaultRepaymentMethod = "bank_transfer"

// Apply opens a pending loan after checking the borrower's eligibility. The
// borrower's score, band and finances are frozen onto the loan.
func (m *LoanMarketplace) Apply(ctx context.Context, borrowerID string, in models.LoanApplication) (*models.Loan, error) {
	if err := requireUser(borrowerID); err != nil {
		return nil, err
	}
	elig, err := m.eligibility.Check(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, models.NewValidationError("eligibility", "Not eligible: %s", strings.Join(elig.Reasons, " "))
	}
	if in.Amount > elig.MaxAmount {
		return nil, models.NewValidationError("amount", "Amount %.0f exceeds eligible %.0f", in.Amount, elig.MaxAmount)
	}
	if in.Amount < models.MinLoanAmount {
		return nil, models.NewValidationError("amount", "Minimum loan amount is %.0f", models.MinLoanAmount)
	}

	now := m.now().UTC()
	l := &models.Loan{
		ID:                       m.newID(),
		BorrowerID:               borrowerID,
		Amount:                   in.Amount,
		Purpose:                  in.Purpose,
		PurposeDescription:       in.PurposeDescription,
		UrgencyLevel:             util.FirstNonEmpty(in.UrgencyLevel, "medium"),
		Status:                   models.LoanPending,
		CreditScoreAtApplication: elig.CreditScore,
		RiskLevelAtApplication:   elig.RiskLevel,
		EligibleAmount:           elig.MaxAmount,
		ScoreBreakdown:           elig.ScoreBreakdown,
		FinancialSnapshot:        elig.FinancialSnapshot,
		Offers:                   []models.Offer{},
		RepaymentHistory:         []models.Repayment{},
		CreatedAt:                now,
		UpdatedAt:                now,
		Version:                  1,
	}
	if err := m.loans.Create(ctx, l); err != nil {
		m.metrics.RecordError("loan_create")
		return nil, fmt.Errorf("create loan: %w", err)
	}

	m.log.Info("loan applied",
		logger.String("loan_id", l.ID),
		logger.String("borrower_id", borrowerID),
		logger.Float64("amount", l.Amount),
		logger.Int("credit_score", l.CreditScoreAtApplication),
	)
	m.events.loan(ctx, models.EventLoanApplied, l, "", map[string]interface{}{"amount": l.Amount, "purpose": l.Purpose})
	return l, nil
}

// ListMyLoans returns the borrower's loans, newest first.
func (m *LoanMarketplace) ListMyLoans(ctx context.Context, borrowerID string) ([]*models.Loan, error) {
	loans, err := m.loans.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	sort.SliceStable(loans, func(i, j int) bool { return loans[i].CreatedAt.After(loans[j].CreatedAt) })
	return loans, nil
}

// GetLoan returns one of the borrower's loans. Other borrowers' loans look missing.
func (m *LoanMarketplace) GetLoan(ctx context.Context, borrowerID, loanID string) (*models.Loan, error) {
	l, err := m.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.BorrowerID != borrowerID {
		return nil, &models.NotFoundError{Resource: "Loan", ID: loanID}
	}
	return l, nil
}

func borrowerOffer(l *models.Loan, borrowerID, offerID string) (int, error) {
	if l.BorrowerID != borrowerID {
		return -1, &models.NotFoundError{Resource: "Loan", ID: l.ID}
	}
	if err := requireLoanStatus(l, models.LoanPending); err != nil {
		return -1, err
	}
	i := l.OfferByID(offerID)
	if i < 0 {
		return -1, &models.NotFoundError{Resource: "Offer", ID: offerID}
	}
	if o := l.Offers[i]; o.Status != models.OfferOffered {
		return -1, &models.StateConflictError{Resource: "Offer", ID: offerID, Current: string(o.Status), Expected: []string{string(models.OfferOffered)}}
	}
	return i, nil
}

// AcceptOffer commits the loan to one lender. Every other live offer becomes
// not_selected in the same write.
func (m *LoanMarketplace) AcceptOffer(ctx context.Context, borrowerID, loanID, offerID string) (*models.Loan, error) {
	var accepted models.Offer
	l, err := m.mutate(ctx, "loan_accept_offer", loanID, func(l *models.Loan, now time.Time) error {
		i, err := borrowerOffer(l, borrowerID, offerID)
		if err != nil {
			return err
		}
		for j := range l.Offers {
			switch {
			case j == i:
				l.Offers[j].Status = models.OfferAccepted
				l.Offers[j].RespondedAt = timePtr(now)
			case l.Offers[j].Status == models.OfferOffered:
				l.Offers[j].Status = models.OfferNotSelected
				l.Offers[j].RespondedAt = timePtr(now)
			}
		}
		o := l.Offers[i]
		l.Status = models.LoanApproved
		l.LenderID = o.LenderID
		l.LenderOrganization = o.LenderOrganization
		l.InterestRate = o.InterestRate
		l.RepaymentTermMonths = o.RepaymentTermMonths
		l.ApprovedAmount = o.OfferedAmount
		l.TotalRepayable = o.TotalRepayable
		l.MonthlyEMI = o.MonthlyEMI
		l.ApprovedAt = timePtr(now)
		l.DueDate = timePtr(now.AddDate(0, o.RepaymentTermMonths, 0))
		accepted = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.events.loan(ctx, models.EventOfferAccepted, l, accepted.LenderID, map[string]interface{}{
		"offerId":        accepted.OfferID,
		"approvedAmount": l.ApprovedAmount,
		"monthlyEmi":     l.MonthlyEMI,
	})
	return l, nil
}

// RejectOffer declines one offer. The loan stays open for other lenders.
func (m *LoanMarketplace) RejectOffer(ctx context.Context, borrowerID, loanID, offerID string) (*models.Loan, error) {
	var lenderID string
	l, err := m.mutate(ctx, "loan_reject_offer", loanID, func(l *models.Loan, now time.Time) error {
		i, err := borrowerOffer(l, borrowerID, offerID)
		if err != nil {
			return err
		}
		l.Offers[i].Status = models.OfferBorrowerRejected
		l.Offers[i].RespondedAt = timePtr(now)
		lenderID = l.Offers[i].LenderID
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.events.loan(ctx, models.EventOfferRejected, l, lenderID, map[string]interface{}{"offerId": offerID})
	return l, nil
}

// RequestRepayment records a payment awaiting lender confirmation. The amount is
// clamped to what is still owed and totalRepaid is left untouched.
func (m *LoanMarketplace) RequestRepayment(ctx context.Context, borrowerID, loanID string, in models.RepaymentInput) (*models.Loan, *models.Repayment, error) {
	if math.IsNaN(in.Amount) || in.Amount <= 0 {
		return nil, nil, models.NewValidationError("amount", "Valid amount required")
	}
	var payment models.Repayment
	l, err := m.mutate(ctx, "loan_request_repayment", loanID, func(l *models.Loan, now time.Time) error {
		if l.BorrowerID != borrowerID {
			return &models.NotFoundError{Resource: "Loan", ID: loanID}
		}
		if err := requireLoanStatus(l, models.LoanDisbursed); err != nil {
			return err
		}
		if l.HasPendingRepayment() {
			return &models.StateConflictError{
				Resource: "Loan",
				ID:       l.ID,
				Current:  string(l.Status),
				Detail:   "a payment is already awaiting lender confirmation",
			}
		}
		payment = models.Repayment{
			PaymentID: m.newID(),
			Amount:    math.Min(in.Amount, l.Remaining()),
			Date:      now,
			Method:    util.FirstNonEmpty(in.Method, defaultRepaymentMethod),
			Reference: in.Reference,
			Note:      in.Note,
			Status:    models.RepaymentPending,
		}
		l.RepaymentHistory = append(l.RepaymentHistory, payment)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	m.events.loan(ctx, models.EventRepaymentRequested, l, l.LenderID, map[string]interface{}{
		"paymentId": payment.PaymentID,
		"amount":    payment.Amount,
	})
	return l, &payment, nil
}
