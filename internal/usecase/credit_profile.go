package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	domsvc "GigCredit/internal/domain/service"
	"GigCredit/pkg/logger"
)

// IngestResult reports what happened to a batch appended to the ledger.
type IngestResult struct {
	UserID    string `json:"userId"`
	Accepted  int    `json:"accepted"`
	Scheduled bool   `json:"recalculationScheduled"`
}

// CreditProfileUsecase scores users and keeps their single profile current.
type CreditProfileUsecase struct {
	scorer    domsvc.CreditScorer
	profiles  domrepo.ProfileStore
	ledger    domrepo.TransactionStore
	cache     domrepo.ProfileCache
	scheduler domrepo.RecalcScheduler
	events    *eventEmitter
	metrics   domrepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewCreditProfileUsecase wires the scoring flow. cache and scheduler may be nil.
func NewCreditProfileUsecase(
	scorer domsvc.CreditScorer,
	profiles domrepo.ProfileStore,
	ledger domrepo.TransactionStore,
	cache domrepo.ProfileCache,
	scheduler domrepo.RecalcScheduler,
	pub domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *CreditProfileUsecase {
	return &CreditProfileUsecase{
		scorer:    scorer,
		profiles:  profiles,
		ledger:    ledger,
		cache:     cache,
		scheduler: scheduler,
		events:    newEventEmitter(pub, metrics, log),
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// SetScheduler attaches the recalculation scheduler after construction, since
// the scheduler's job calls back into Refresh.
func (u *CreditProfileUsecase) SetScheduler(s domrepo.RecalcScheduler) { u.scheduler = s }

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return models.NewValidationError("userId", "userId is required")
	}
	return nil
}

// Calculate validates the transactions, scores them and replaces the user's profile.
func (u *CreditProfileUsecase) Calculate(ctx context.Context, userID string, in []models.TransactionInput, gig *models.GigData) (*models.CreditProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	txns, err := models.NewTransactions(in)
	if err != nil {
		return nil, err
	}
	return u.score(ctx, userID, txns, gig)
}

// Refresh rescores the user from the stored ledger, reusing the last gig data.
func (u *CreditProfileUsecase) Refresh(ctx context.Context, userID string) (*models.CreditProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	txns, err := u.ledger.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, &models.NotFoundError{Resource: "transactions for user", ID: userID}
	}
	var gig *models.GigData
	if prev, err := u.profiles.Get(ctx, userID); err == nil {
		gig = prev.GigData
	}
	return u.score(ctx, userID, txns, gig)
}

func (u *CreditProfileUsecase) score(ctx context.Context, userID string, txns []models.Transaction, gig *models.GigData) (*models.CreditProfile, error) {
	start := u.now()
	defer func() { u.metrics.RecordLatency("credit_calculate", u.now().Sub(start)) }()

	p := u.scorer.Score(userID, txns, gig)
	p.GigData = gig
	p.UpdatedAt = u.now().UTC()
	p.CreatedAt = p.UpdatedAt

	prev, err := u.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		p.CreatedAt = prev.CreatedAt
	case !errors.Is(err, domrepo.ErrNotFound):
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if err := u.profiles.Upsert(ctx, p); err != nil {
		u.metrics.RecordError("profile_upsert")
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	if u.cache != nil {
		if err := u.cache.Set(ctx, p); err != nil {
			u.log.Warn("cache profile", logger.String("user_id", userID), logger.Error(err))
			if err := u.cache.Invalidate(ctx, userID); err != nil {
				u.log.Warn("invalidate profile cache", logger.String("user_id", userID), logger.Error(err))
			}
		}
	}

	u.metrics.RecordScore(p.CreditScore, p.RiskLevel)
	u.log.Info("credit profile scored",
		logger.String("user_id", userID),
		logger.Int("transactions", len(txns)),
		logger.Int("credit_score", p.CreditScore),
		logger.String("risk_level", string(p.RiskLevel)),
	)
	u.events.emit(ctx, models.Event{
		Type:    models.EventProfileScored,
		UserID:  userID,
		At:      p.UpdatedAt,
		Payload: map[string]interface{}{"creditScore": p.CreditScore, "riskLevel": p.RiskLevel},
	})
	return p, nil
}

// Get returns the user's profile with stale metrics repaired, or nil if the
// user was never scored. Repairs are never written back.
func (u *CreditProfileUsecase) Get(ctx context.Context, userID string) (*models.CreditProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if u.cache != nil {
		if p, ok := u.cache.Get(ctx, userID); ok {
			p.Stale = p.IsStale(u.now())
			return p, nil
		}
	}

	p, err := u.profiles.Get(ctx, userID)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if repaired := u.scorer.Repair(p); len(repaired) > 0 {
		u.log.Debug("repaired stale metrics", logger.String("user_id", userID), logger.Strings("metrics", repaired))
	}
	p.Stale = p.IsStale(u.now())

	if u.cache != nil {
		if err := u.cache.Fill(ctx, p); err != nil {
			u.log.Warn("fill profile cache", logger.String("user_id", userID), logger.Error(err))
		}
	}
	return p, nil
}

// Analyze explains the user's current profile in lending terms.
func (u *CreditProfileUsecase) Analyze(ctx context.Context, userID string) (*models.RiskAnalysis, error) {
	p, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &models.NotFoundError{Resource: "Credit profile", ID: userID}
	}
	a := u.scorer.Analyze(p)
	return &a, nil
}

// Ingest validates and appends transactions to the ledger, then schedules a
// debounced recalculation.
func (u *CreditProfileUsecase) Ingest(ctx context.Context, userID string, in []models.TransactionInput) (*IngestResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	txns, err := models.NewTransactions(in)
	if err != nil {
		return nil, err
	}
	if err := u.ledger.Append(ctx, userID, txns); err != nil {
		u.metrics.RecordError("ledger_append")
		return nil, fmt.Errorf("append transactions: %w", err)
	}

	res := &IngestResult{UserID: userID, Accepted: len(txns)}
	if u.scheduler != nil {
		scheduled, err := u.scheduler.Schedule(ctx, userID)
		if err != nil {
			u.log.Warn("schedule recalculation", logger.String("user_id", userID), logger.Error(err))
		}
		res.Scheduled = scheduled
	}
	return res, nil
}

// Summary aggregates the user's ledger.
func (u *CreditProfileUsecase) Summary(ctx context.Context, userID string) (*models.FinancialSummary, error) {
	txns, err := u.ledger.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return models.Summarize(userID, txns), nil
}
