package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	pkgcache "GigCredit/pkg/cache"
	applogger "GigCredit/pkg/logger"
	"GigCredit/pkg/queue"
)

// JobType is the queue message type for a profile recalculation.
const JobType = "credit.recalculate"

const defaultLockTTL = 30 * time.Second

// Payload is the queued message body.
type Payload struct {
	UserID    string `json:"userId"`
	LockToken string `json:"lockToken,omitempty"`
}

// Refresher recalculates a user's profile from the ledger.
type Refresher interface {
	Refresh(ctx context.Context, userID string) (*models.CreditProfile, error)
}

// Scheduler enqueues at most one recalculation per user while the user's
// lock is held. The job releases the lock before it reads the ledger, so a
// batch ingested while it runs schedules a follow-up job.
type Scheduler struct {
	locks   pkgcache.Service
	queue   queue.Enqueuer
	lockTTL time.Duration
}

var _ domrepo.RecalcScheduler = (*Scheduler)(nil)

func NewScheduler(locks pkgcache.Service, q queue.Enqueuer, lockTTL time.Duration) *Scheduler {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Scheduler{locks: locks, queue: q, lockTTL: lockTTL}
}

func lockKey(userID string) string {
	return pkgcache.Key("recalc", userID)
}

// Schedule reports false when a recalculation for userID is already pending.
func (s *Scheduler) Schedule(ctx context.Context, userID string) (bool, error) {
	token, err := s.locks.TryLock(ctx, lockKey(userID), s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("recalc lock: %w", err)
	}
	if token == "" {
		return false, nil
	}
	if err := s.queue.Enqueue(ctx, JobType, Payload{UserID: userID, LockToken: token}); err != nil {
		_ = s.locks.Unlock(ctx, lockKey(userID), token)
		return false, fmt.Errorf("enqueue recalculation: %w", err)
	}
	return true, nil
}

// Job runs queued recalculations.
type Job struct {
	refresher Refresher
	locks     pkgcache.Service
	log       *applogger.Logger
}

var _ queue.Job = (*Job)(nil)

func NewJob(refresher Refresher, locks pkgcache.Service, log *applogger.Logger) *Job {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Job{refresher: refresher, locks: locks, log: log}
}

func (j *Job) Name() string { return "credit-recalculation" }
func (j *Job) Type() string { return JobType }

// Handle refreshes the profile. A user with an empty ledger is not retried.
func (j *Job) Handle(ctx context.Context, raw json.RawMessage) error {
	p, err := queue.Decode[Payload](raw)
	if err != nil {
		return err
	}
	if p.UserID == "" {
		j.log.Warn("recalculation without user id dropped")
		return nil
	}

	if p.LockToken != "" {
		if err := j.locks.Unlock(ctx, lockKey(p.UserID), p.LockToken); err != nil {
			j.log.Warn("release recalc lock", applogger.String("user_id", p.UserID), applogger.Error(err))
		}
	}

	profile, err := j.refresher.Refresh(ctx, p.UserID)
	var nf *models.NotFoundError
	switch {
	case errors.As(err, &nf):
		j.log.Info("recalculation skipped, empty ledger", applogger.String("user_id", p.UserID))
	case err != nil:
		return fmt.Errorf("refresh %s: %w", p.UserID, err)
	default:
		j.log.Debug("recalculated profile",
			applogger.String("user_id", p.UserID),
			applogger.Int("credit_score", profile.CreditScore),
		)
	}
	return nil
}
