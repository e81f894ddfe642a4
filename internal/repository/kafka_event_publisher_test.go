package repository

import (
	"context"
	"errors"
	"testing"

	"GigCredit/internal/domain/models"
	pkgkafka "GigCredit/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRecorder struct {
	topic   string
	batches [][]pkgkafka.Message
	err     error
	closed  bool
}

func (r *batchRecorder) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.topic = topic
	r.batches = append(r.batches, msgs)
	return nil
}

func (r *batchRecorder) Close() error {
	r.closed = true
	return nil
}

func TestKafkaEventPublisherWritesOneBatch(t *testing.T) {
	rec := &batchRecorder{}
	pub := NewKafkaEventPublisher(rec, "gigcredit.events")
	ctx := context.Background()

	confirmed := models.Event{Type: models.EventRepaymentConfirmed, UserID: "b1", LoanID: "loan-1"}
	repaid := models.Event{Type: models.EventLoanRepaid, UserID: "b1", LoanID: "loan-1"}
	require.NoError(t, pub.Publish(ctx, confirmed, repaid))

	require.Len(t, rec.batches, 1)
	assert.Equal(t, "gigcredit.events", rec.topic)
	batch := rec.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, []byte("loan-1"), batch[0].Key)
	assert.Equal(t, confirmed, batch[0].Value)
	assert.Equal(t, repaid, batch[1].Value)

	require.NoError(t, pub.Publish(ctx, models.Event{Type: models.EventProfileScored, UserID: "u9"}))
	assert.Equal(t, []byte("u9"), rec.batches[1][0].Key, "user id keys events without a loan")

	require.NoError(t, pub.Close())
	assert.True(t, rec.closed)
}

func TestKafkaEventPublisherReturnsWriteError(t *testing.T) {
	down := errors.New("leader not available")
	pub := NewKafkaEventPublisher(&batchRecorder{err: down}, "events")

	err := pub.Publish(context.Background(), models.Event{Type: models.EventLoanApplied, LoanID: "l1"})
	assert.ErrorIs(t, err, down)
}
