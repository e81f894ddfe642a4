package repository

import (
	"context"
	"errors"
	"time"

	"GigCredit/internal/domain/models"
)

var (
	// ErrNotFound is returned by stores when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a loan was written by someone else since it was read.
	ErrVersionConflict = errors.New("version conflict")
)

type ProfileStore interface {
	Upsert(ctx context.Context, p *models.CreditProfile) error
	Get(ctx context.Context, userID string) (*models.CreditProfile, error)
}

type LoanStore interface {
	Create(ctx context.Context, l *models.Loan) error
	Get(ctx context.Context, id string) (*models.Loan, error)
	// Update writes l only if the stored version still equals expectedVersion.
	// On success l.Version is expectedVersion+1.
	Update(ctx context.Context, l *models.Loan, expectedVersion int64) error
	ListByBorrower(ctx context.Context, borrowerID string) ([]*models.Loan, error)
	// ListForLender returns every pending loan plus every loan owned by lenderID.
	ListForLender(ctx context.Context, lenderID string) ([]*models.Loan, error)
}

type TransactionStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, userID string, txns []models.Transaction) error
	List(ctx context.Context, userID string) ([]models.Transaction, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher writes events in one call so a transition that produces
// several events ships them together.
type EventPublisher interface {
	Publish(ctx context.Context, events ...models.Event) error
	Close() error
}

// ProfileCache holds the latest profile per user. Set overwrites and is used
// after every recalculation. Fill only populates an empty entry, so a reader
// that loaded an older profile cannot replace a newer one.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.CreditProfile, bool)
	Set(ctx context.Context, p *models.CreditProfile) error
	Fill(ctx context.Context, p *models.CreditProfile) error
	Invalidate(ctx context.Context, userID string) error
}

// RecalcScheduler defers a profile recalculation for a user.
type RecalcScheduler interface {
	Schedule(ctx context.Context, userID string) (bool, error)
}

type Metrics interface {
	RecordScore(score int, risk models.RiskLevel)
	RecordLoanTransition(event models.EventType)
	RecordError(kind string)
	RecordLatency(op string, d time.Duration)
}
