package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"GigCredit/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recalcPayload struct {
	UserID string `json:"userId"`
}

type flakyJob struct {
	mu       sync.Mutex
	failures int
	seen     []string
	done     chan struct{}
}

func (j *flakyJob) Name() string { return "flaky" }
func (j *flakyJob) Type() string { return "recalc" }

func (j *flakyJob) Handle(_ context.Context, payload json.RawMessage) error {
	p, err := Decode[recalcPayload](payload)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seen = append(j.seen, p.UserID)
	if j.failures > 0 {
		j.failures--
		return errors.New("transient")
	}
	close(j.done)
	return nil
}

func TestDecode(t *testing.T) {
	p, err := Decode[recalcPayload](json.RawMessage(`{"userId":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)

	_, err = Decode[recalcPayload](json.RawMessage(`[`))
	assert.Error(t, err)
}

func TestLocalQueueRetriesUntilSuccess(t *testing.T) {
	q := NewLocalQueue(logger.NewNop(), &QueueConfig{Workers: 1, RetryLimit: 3, RetryDelay: time.Millisecond})
	job := &flakyJob{failures: 2, done: make(chan struct{})}
	q.RegisterJob(job)
	require.NoError(t, q.Start())
	defer func() { _ = q.Stop(context.Background()) }()

	require.NoError(t, q.Enqueue(context.Background(), "recalc", recalcPayload{UserID: "u1"}))

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	job.mu.Lock()
	defer job.mu.Unlock()
	assert.Equal(t, []string{"u1", "u1", "u1"}, job.seen)
}

func TestEnqueueUnknownType(t *testing.T) {
	q := NewLocalQueue(logger.NewNop(), nil)
	err := q.Enqueue(context.Background(), "missing", nil)
	assert.EqualError(t, err, "no job registered for type: missing")
}

func TestRedisQueueKeys(t *testing.T) {
	q := NewRedisQueue(logger.NewNop(), nil, nil, WithKeyPrefix("gc:queue"))
	assert.Equal(t, "gc:queue:messages", q.queueKey())
	assert.Equal(t, "gc:queue:retry", q.retryKey())
	assert.Equal(t, "gc:queue:dlq", q.deadLetterKey())
	assert.Equal(t, 1, q.config.Workers)
}
