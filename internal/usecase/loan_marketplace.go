package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	"GigCredit/pkg/logger"

	"github.com/google/uuid"
)

// maxMutateAttempts bounds the optimistic read-validate-write loop on a loan.
const maxMutateAttempts = 3

// Eligibility is what the marketplace asks before accepting an application.
type Eligibility interface {
	Check(ctx context.Context, userID string) (*models.EligibilityResult, error)
}

// LoanMarketplace runs the loan lifecycle between one borrower and many lenders.
// Every transition is a versioned write, so concurrent callers cannot both pass
// the same precondition.
type LoanMarketplace struct {
	loans       domrepo.LoanStore
	eligibility Eligibility
	events      *eventEmitter
	metrics     domrepo.Metrics
	log         *logger.Logger
	now         func() time.Time
	newID       func() string
}

func NewLoanMarketplace(
	loans domrepo.LoanStore,
	eligibility Eligibility,
	pub domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *LoanMarketplace {
	return &LoanMarketplace{
		loans:       loans,
		eligibility: eligibility,
		events:      newEventEmitter(pub, metrics, log),
		metrics:     metrics,
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// loadLoan reports a missing loan as NotFoundError and wraps any other
// storage failure.
func (m *LoanMarketplace) loadLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	l, err := m.loans.Get(ctx, loanID)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, &models.NotFoundError{Resource: "Loan", ID: loanID}
	}
	if err != nil {
		return nil, fmt.Errorf("load loan: %w", err)
	}
	return l, nil
}

// mutate loads a loan, lets fn apply one transition in memory and writes it
// back conditioned on the version it read. Version conflicts restart the whole
// cycle so preconditions are re-checked against fresh state.
func (m *LoanMarketplace) mutate(ctx context.Context, op, loanID string, fn func(l *models.Loan, now time.Time) error) (*models.Loan, error) {
	start := m.now()
	defer func() { m.metrics.RecordLatency(op, m.now().Sub(start)) }()

	for attempt := 1; attempt <= maxMutateAttempts; attempt++ {
		l, err := m.loadLoan(ctx, loanID)
		if err != nil {
			return nil, err
		}

		expected := l.Version
		now := m.now().UTC()
		if err := fn(l, now); err != nil {
			return nil, err
		}
		l.UpdatedAt = now

		err = m.loans.Update(ctx, l, expected)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, domrepo.ErrVersionConflict) {
			return nil, fmt.Errorf("update loan: %w", err)
		}
		m.metrics.RecordError("loan_version_conflict")
		m.log.Debug("loan version conflict",
			logger.String("op", op),
			logger.String("loan_id", loanID),
			logger.Int("attempt", attempt),
		)
	}
	return nil, &models.StateConflictError{Resource: "Loan", ID: loanID, Detail: "loan was modified concurrently"}
}

func loanConflict(l *models.Loan, expected ...models.LoanStatus) error {
	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	return &models.StateConflictError{Resource: "Loan", ID: l.ID, Current: string(l.Status), Expected: exp}
}

func requireLoanStatus(l *models.Loan, want models.LoanStatus) error {
	if l.Status != want {
		return loanConflict(l, want)
	}
	return nil
}

func requireOwner(l *models.Loan, lenderID string) error {
	if l.LenderID == "" || l.LenderID != lenderID {
		return &models.OwnershipError{Resource: "loan", ID: l.ID, Actor: "lender " + lenderID}
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }
