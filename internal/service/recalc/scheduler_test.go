package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"GigCredit/internal/domain/models"
	pkgcache "GigCredit/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	msgs []Payload
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	if msgType != JobType {
		return errors.New("unexpected type " + msgType)
	}
	q.msgs = append(q.msgs, payload.(Payload))
	return nil
}

type stubRefresher struct {
	calls []string
	err   error
}

func (r *stubRefresher) Refresh(_ context.Context, userID string) (*models.CreditProfile, error) {
	r.calls = append(r.calls, userID)
	if r.err != nil {
		return nil, r.err
	}
	return &models.CreditProfile{UserID: userID, CreditScore: 610}, nil
}

func TestScheduleDebouncesPerUser(t *testing.T) {
	locks := pkgcache.NewMemoryCache()
	defer locks.Close()
	q := &recordingQueue{}
	s := NewScheduler(locks, q, time.Minute)
	ctx := context.Background()

	ok, err := s.Schedule(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Schedule(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Schedule(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, q.msgs, 2)
	assert.Equal(t, "u1", q.msgs[0].UserID)
	assert.Equal(t, "u2", q.msgs[1].UserID)
	assert.NotEmpty(t, q.msgs[0].LockToken)
}

func TestScheduleReleasesLockWhenEnqueueFails(t *testing.T) {
	locks := pkgcache.NewMemoryCache()
	defer locks.Close()
	q := &recordingQueue{err: errors.New("redis down")}
	s := NewScheduler(locks, q, time.Minute)
	ctx := context.Background()

	ok, err := s.Schedule(ctx, "u1")
	require.Error(t, err)
	assert.False(t, ok)

	q.err = nil
	ok, err = s.Schedule(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJobRefreshesAndUnlocks(t *testing.T) {
	locks := pkgcache.NewMemoryCache()
	defer locks.Close()
	q := &recordingQueue{}
	s := NewScheduler(locks, q, time.Minute)
	r := &stubRefresher{}
	job := NewJob(r, locks, nil)
	ctx := context.Background()

	_, err := s.Schedule(ctx, "u1")
	require.NoError(t, err)

	raw, err := json.Marshal(q.msgs[0])
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, raw))
	assert.Equal(t, []string{"u1"}, r.calls)

	ok, err := s.Schedule(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok, "lock released after the job ran")
}

func TestJobErrors(t *testing.T) {
	locks := pkgcache.NewMemoryCache()
	defer locks.Close()
	ctx := context.Background()
	raw := json.RawMessage(`{"userId":"u1"}`)

	empty := NewJob(&stubRefresher{err: &models.NotFoundError{Resource: "Transactions", ID: "u1"}}, locks, nil)
	assert.NoError(t, empty.Handle(ctx, raw))

	failing := NewJob(&stubRefresher{err: errors.New("mongo down")}, locks, nil)
	assert.Error(t, failing.Handle(ctx, raw))

	assert.Error(t, empty.Handle(ctx, json.RawMessage(`{`)))
}

// scheduleOnRefresh schedules userID again from inside Refresh, the way an
// ingest landing while the job runs would.
type scheduleOnRefresh struct {
	s      *Scheduler
	queued bool
}

func (r *scheduleOnRefresh) Refresh(ctx context.Context, userID string) (*models.CreditProfile, error) {
	ok, err := r.s.Schedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.queued = ok
	return &models.CreditProfile{UserID: userID}, nil
}

func TestIngestDuringJobSchedulesFollowUp(t *testing.T) {
	locks := pkgcache.NewMemoryCache()
	defer locks.Close()
	q := &recordingQueue{}
	s := NewScheduler(locks, q, time.Minute)
	r := &scheduleOnRefresh{s: s}
	job := NewJob(r, locks, nil)
	ctx := context.Background()

	_, err := s.Schedule(ctx, "u1")
	require.NoError(t, err)
	raw, err := json.Marshal(q.msgs[0])
	require.NoError(t, err)

	require.NoError(t, job.Handle(ctx, raw))
	assert.True(t, r.queued)
	assert.Len(t, q.msgs, 2)
}

func TestStaleJobKeepsNewerLock(t *testing.T) {
	locks := pkgcache.NewMemoryCache()
	defer locks.Close()
	q := &recordingQueue{}
	s := NewScheduler(locks, q, time.Minute)
	job := NewJob(&stubRefresher{}, locks, nil)
	ctx := context.Background()

	stale, err := json.Marshal(Payload{UserID: "u1", LockToken: "expired-token"})
	require.NoError(t, err)
	_, err = s.Schedule(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, job.Handle(ctx, stale))
	ok, err := s.Schedule(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "lock taken by the newer schedule is still held")
}
