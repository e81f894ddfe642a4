package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"GigCredit/pkg/logger"

	"github.com/google/uuid"
)

// LocalQueue runs jobs on an in-process worker pool with the same retry
// policy as RedisQueue. Messages do not survive a restart.
type LocalQueue struct {
	logger *logger.Logger
	config *QueueConfig
	jobs   map[string]Job
	msgs   chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once
}

// NewLocalQueue creates a queue whose workers start on Start.
func NewLocalQueue(lgr *logger.Logger, config *QueueConfig) *LocalQueue {
	cfg := config.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalQueue{
		logger: lgr.With(logger.String("component", "local_queue")),
		config: cfg,
		jobs:   make(map[string]Job),
		msgs:   make(chan Message, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (q *LocalQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[job.Type()]; exists {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
}

func (q *LocalQueue) Start() error {
	q.start.Do(func() {
		for i := 0; i < q.config.Workers; i++ {
			q.wg.Add(1)
			go q.worker()
		}
	})
	return nil
}

func (q *LocalQueue) Stop(ctx context.Context) error {
	q.cancel()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		return nil
	}
}

// Enqueue blocks while the buffer is full.
func (q *LocalQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	_, known := q.jobs[msgType]
	q.mu.RUnlock()
	if !known {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}
	msg, err := newMessage(uuid.NewString(), msgType, payload, time.Now())
	if err != nil {
		return err
	}
	select {
	case q.msgs <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ctx.Done():
		return errors.New("queue stopped")
	}
}

func (q *LocalQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case msg := <-q.msgs:
			q.run(msg)
		}
	}
}

func (q *LocalQueue) run(msg Message) {
	q.mu.RLock()
	job := q.jobs[msg.Type]
	q.mu.RUnlock()

	for {
		err := job.Handle(q.ctx, msg.Payload)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		q.logger.Error("message processing error",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Int("attempt", msg.Attempts+1),
			logger.Error(err))
		if msg.Attempts >= q.config.RetryLimit {
			return
		}
		msg.Attempts++
		select {
		case <-time.After(q.config.RetryDelay):
		case <-q.ctx.Done():
			return
		}
	}
}

var _ Queue = (*LocalQueue)(nil)
