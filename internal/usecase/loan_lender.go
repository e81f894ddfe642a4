package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"GigCredit/internal/domain/models"
	"GigCredit/pkg/logger"
	"GigCredit/pkg/util"
)

// MakeOffer adds the lender's terms to a pending loan. A lender holds at most
// one live offer per loan.
func (m *LoanMarketplace) MakeOffer(ctx context.Context, lender models.Lender, loanID string, in models.OfferTermsInput) (*models.Loan, *models.Offer, error) {
	if in.InterestRate <= 0 || math.IsNaN(in.InterestRate) {
		return nil, nil, models.NewValidationError("interestRate", "interestRate must be greater than 0")
	}
	if in.RepaymentTermMonths < 1 {
		return nil, nil, models.NewValidationError("repaymentTermMonths", "repaymentTermMonths must be at least 1")
	}
	if in.OfferedAmount != nil && *in.OfferedAmount <= 0 {
		return nil, nil, models.NewValidationError("offeredAmount", "offeredAmount must be greater than 0")
	}

	var offer models.Offer
	l, err := m.mutate(ctx, "loan_make_offer", loanID, func(l *models.Loan, now time.Time) error {
		if err := requireLoanStatus(l, models.LoanPending); err != nil {
			return err
		}
		if i := l.LenderEntry(lender.ID, models.OfferOffered); i >= 0 {
			return &models.StateConflictError{
				Resource: "Offer",
				ID:       l.Offers[i].OfferID,
				Current:  string(models.OfferOffered),
				Detail:   "lender already has an active offer on this loan",
			}
		}
		amount := l.Amount
		if in.OfferedAmount != nil {
			amount = *in.OfferedAmount
		}
		terms := models.ComputeTerms(amount, in.InterestRate, in.RepaymentTermMonths)
		offer = models.Offer{
			OfferID:             m.newID(),
			LenderID:            lender.ID,
			LenderName:          lender.Name,
			LenderOrganization:  util.FirstNonEmpty(lender.Organization, lender.Name),
			InterestRate:        in.InterestRate,
			RepaymentTermMonths: in.RepaymentTermMonths,
			OfferedAmount:       amount,
			MonthlyEMI:          terms.MonthlyEMI,
			TotalRepayable:      terms.TotalRepayable,
			LenderNotes:         in.Notes,
			Status:              models.OfferOffered,
			OfferedAt:           now,
		}
		l.Offers = append(l.Offers, offer)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	m.events.loan(ctx, models.EventOfferMade, l, lender.ID, map[string]interface{}{
		"offerId":        offer.OfferID,
		"interestRate":   offer.InterestRate,
		"offeredAmount":  offer.OfferedAmount,
		"totalRepayable": offer.TotalRepayable,
	})
	return l, &offer, nil
}

// Pass records that the lender declined to bid. It can only be recorded once.
func (m *LoanMarketplace) Pass(ctx context.Context, lender models.Lender, loanID, reason string) (*models.Loan, error) {
	l, err := m.mutate(ctx, "loan_pass", loanID, func(l *models.Loan, now time.Time) error {
		if err := requireLoanStatus(l, models.LoanPending); err != nil {
			return err
		}
		if i := l.LenderEntry(lender.ID, models.OfferPassed); i >= 0 {
			return &models.StateConflictError{
				Resource: "Offer",
				ID:       l.Offers[i].OfferID,
				Current:  string(models.OfferPassed),
				Detail:   "lender already passed on this loan",
			}
		}
		l.Offers = append(l.Offers, models.Offer{
			OfferID:            m.newID(),
			LenderID:           lender.ID,
			LenderName:         lender.Name,
			LenderOrganization: util.FirstNonEmpty(lender.Organization, lender.Name),
			LenderNotes:        util.FirstNonEmpty(reason, "Passed"),
			Status:             models.OfferPassed,
			OfferedAt:          now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.events.loan(ctx, models.EventOfferPassed, l, lender.ID, nil)
	return l, nil
}

// WithdrawOffer retracts the lender's live offer.
func (m *LoanMarketplace) WithdrawOffer(ctx context.Context, lender models.Lender, loanID string) (*models.Loan, error) {
	var offerID string
	l, err := m.mutate(ctx, "loan_withdraw_offer", loanID, func(l *models.Loan, now time.Time) error {
		i := l.LenderEntry(lender.ID, models.OfferOffered)
		if i < 0 {
			return &models.NotFoundError{Resource: "Active offer on loan", ID: loanID}
		}
		l.Offers[i].Status = models.OfferWithdrawn
		l.Offers[i].RespondedAt = timePtr(now)
		offerID = l.Offers[i].OfferID
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.events.loan(ctx, models.EventOfferWithdrawn, l, lender.ID, map[string]interface{}{"offerId": offerID})
	return l, nil
}

// Disburse moves an approved loan to disbursed. Owner only.
func (m *LoanMarketplace) Disburse(ctx context.Context, lender models.Lender, loanID string) (*models.Loan, error) {
	l, err := m.mutate(ctx, "loan_disburse", loanID, func(l *models.Loan, now time.Time) error {
		if err := requireOwner(l, lender.ID); err != nil {
			return err
		}
		if err := requireLoanStatus(l, models.LoanApproved); err != nil {
			return err
		}
		l.Status = models.LoanDisbursed
		l.DisbursedAt = timePtr(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("loan disbursed",
		logger.String("loan_id", l.ID),
		logger.String("lender_id", lender.ID),
		logger.Float64("amount", l.ApprovedAmount),
	)
	m.events.loan(ctx, models.EventLoanDisbursed, l, lender.ID, map[string]interface{}{"approvedAmount": l.ApprovedAmount})
	return l, nil
}

func lenderPayment(l *models.Loan, lenderID, paymentID string) (int, error) {
	if err := requireOwner(l, lenderID); err != nil {
		return -1, err
	}
	i := l.PaymentByID(paymentID)
	if i < 0 {
		return -1, &models.NotFoundError{Resource: "Payment", ID: paymentID}
	}
	if p := l.RepaymentHistory[i]; p.Status != models.RepaymentPending {
		return -1, &models.StateConflictError{
			Resource: "Payment",
			ID:       paymentID,
			Current:  string(p.Status),
			Expected: []string{string(models.RepaymentPending)},
		}
	}
	return i, nil
}

// ConfirmPayment credits a pending repayment. Reaching the repayable total
// settles the loan.
func (m *LoanMarketplace) ConfirmPayment(ctx context.Context, lender models.Lender, loanID, paymentID string) (*models.Loan, error) {
	var amount float64
	var settled bool
	l, err := m.mutate(ctx, "loan_confirm_payment", loanID, func(l *models.Loan, now time.Time) error {
		if err := requireOwner(l, lender.ID); err != nil {
			return err
		}
		if err := requireLoanStatus(l, models.LoanDisbursed); err != nil {
			return err
		}
		i, err := lenderPayment(l, lender.ID, paymentID)
		if err != nil {
			return err
		}
		p := &l.RepaymentHistory[i]
		p.Status = models.RepaymentConfirmed
		p.ConfirmedAt = timePtr(now)
		amount = p.Amount

		l.TotalRepaid = math.Min(l.TotalRepaid+p.Amount, l.TotalRepayable)
		settled = l.TotalRepaid >= l.TotalRepayable
		if settled {
			l.Status = models.LoanRepaid
			l.SettledAt = timePtr(now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	evs := []models.Event{loanEvent(models.EventRepaymentConfirmed, l, lender.ID, map[string]interface{}{
		"paymentId":   paymentID,
		"amount":      amount,
		"totalRepaid": l.TotalRepaid,
	})}
	if settled {
		m.log.Info("loan repaid", logger.String("loan_id", l.ID), logger.Float64("total_repaid", l.TotalRepaid))
		evs = append(evs, loanEvent(models.EventLoanRepaid, l, lender.ID, nil))
	}
	m.events.loans(ctx, evs...)
	return l, nil
}

// RejectPayment marks a pending repayment as not received. The borrower may resubmit.
func (m *LoanMarketplace) RejectPayment(ctx context.Context, lender models.Lender, loanID, paymentID, reason string) (*models.Loan, error) {
	l, err := m.mutate(ctx, "loan_reject_payment", loanID, func(l *models.Loan, now time.Time) error {
		i, err := lenderPayment(l, lender.ID, paymentID)
		if err != nil {
			return err
		}
		p := &l.RepaymentHistory[i]
		p.Status = models.RepaymentRejected
		if reason != "" {
			p.Note += fmt.Sprintf(" [Rejected: %s]", reason)
		} else {
			p.Note += " [Rejected by lender]"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.events.loan(ctx, models.EventRepaymentRejected, l, lender.ID, map[string]interface{}{"paymentId": paymentID})
	return l, nil
}

// MarkDefaulted closes a disbursed loan as defaulted. Owner only.
func (m *LoanMarketplace) MarkDefaulted(ctx context.Context, lender models.Lender, loanID string) (*models.Loan, error) {
	l, err := m.mutate(ctx, "loan_mark_defaulted", loanID, func(l *models.Loan, now time.Time) error {
		if err := requireOwner(l, lender.ID); err != nil {
			return err
		}
		if err := requireLoanStatus(l, models.LoanDisbursed); err != nil {
			return err
		}
		l.Status = models.LoanDefaulted
		l.DefaultedAt = timePtr(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Warn("loan defaulted",
		logger.String("loan_id", l.ID),
		logger.String("lender_id", lender.ID),
		logger.Float64("outstanding", l.Remaining()),
	)
	m.events.loan(ctx, models.EventLoanDefaulted, l, lender.ID, map[string]interface{}{"outstanding": l.Remaining()})
	return l, nil
}

// ListApplications returns the loans a lender can see under filter, tagged
// with the lender's relationship to each. status narrows owned loans.
func (m *LoanMarketplace) ListApplications(ctx context.Context, lender models.Lender, filter models.ApplicationFilter, status models.LoanStatus) ([]models.ApplicationRow, error) {
	loans, err := m.loans.ListForLender(ctx, lender.ID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	rows := make([]models.ApplicationRow, 0, len(loans))
	for _, l := range loans {
		if !matchesFilter(l, lender.ID, filter, status) {
			continue
		}
		rows = append(rows, applicationRow(l, lender.ID))
	}
	return rows, nil
}

func matchesFilter(l *models.Loan, lenderID string, filter models.ApplicationFilter, status models.LoanStatus) bool {
	open := l.Status == models.LoanPending && !l.HasEntry(lenderID)
	offered := l.Status == models.LoanPending && l.LenderEntry(lenderID, models.OfferOffered) >= 0
	owned := l.LenderID == lenderID && (status == "" || l.Status == status)

	switch filter {
	case models.FilterPending:
		return open
	case models.FilterOffered:
		return offered
	case models.FilterOwned:
		return owned
	default:
		return open || offered || owned
	}
}

func applicationRow(l *models.Loan, lenderID string) models.ApplicationRow {
	row := models.ApplicationRow{Loan: l, Ownership: models.OwnershipOpen, MyOffer: l.LatestEntry(lenderID)}
	switch {
	case l.LenderID == lenderID:
		row.Ownership = models.OwnershipYours
	case row.MyOffer != nil:
		row.Ownership = models.OwnershipOfferSent
	}
	return row
}

// GetApplication returns one loan as the lender sees it. Loans owned by another
// lender are hidden.
func (m *LoanMarketplace) GetApplication(ctx context.Context, lender models.Lender, loanID string) (*models.ApplicationRow, error) {
	l, err := m.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != models.LoanPending && l.LenderID != lender.ID {
		return nil, &models.OwnershipError{Resource: "loan", ID: loanID, Actor: "lender " + lender.ID}
	}
	row := applicationRow(l, lender.ID)
	return &row, nil
}

// Stats summarizes the lender's book and the open market.
func (m *LoanMarketplace) Stats(ctx context.Context, lender models.Lender) (*models.LenderStats, error) {
	loans, err := m.loans.ListForLender(ctx, lender.ID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	var s models.LenderStats
	for _, l := range loans {
		if l.Status == models.LoanPending {
			if !l.HasEntry(lender.ID) {
				s.OpenPendingCount++
			}
			if l.LenderEntry(lender.ID, models.OfferOffered) >= 0 {
				s.MyOffersCount++
			}
		}
		if l.LenderID != lender.ID {
			continue
		}
		s.TotalApplications++
		switch l.Status {
		case models.LoanApproved:
			s.ApprovedCount++
			s.TotalApprovedAmount += l.ApprovedAmount
		case models.LoanDisbursed:
			s.DisbursedCount++
			s.TotalApprovedAmount += l.ApprovedAmount
			s.TotalRepaidAmount += l.TotalRepaid
		case models.LoanRepaid:
			s.RepaidCount++
			s.TotalApprovedAmount += l.ApprovedAmount
			s.TotalRepaidAmount += l.TotalRepaid
		case models.LoanDefaulted:
			s.DefaultedCount++
		}
	}
	return &s, nil
}
