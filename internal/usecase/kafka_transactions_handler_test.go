package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"GigCredit/internal/domain/models"
	pkgkafka "GigCredit/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaTransactionsHandlerIngests(t *testing.T) {
	f := newCreditFixture()
	h := NewKafkaTransactionsHandler("gigcredit.transactions", f.uc, f.metrics)
	ctx := context.Background()

	b, err := json.Marshal(models.TransactionBatch{UserID: "u1", Transactions: monthlyWages(2)})
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, b))

	stored, err := f.store.Ledger().List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, len(monthlyWages(2)))
	assert.Equal(t, []string{"u1"}, f.sched.users)
	assert.Equal(t, "gigcredit.transactions", h.Topic())
}

func TestKafkaTransactionsHandlerRejectsWithoutRetry(t *testing.T) {
	f := newCreditFixture()
	h := NewKafkaTransactionsHandler("tx", f.uc, f.metrics)
	ctx := context.Background()

	err := h.Handle(ctx, []byte(`{"userId":`))
	assert.True(t, pkgkafka.IsPermanent(err))
	assert.Equal(t, 1, f.metrics.errorCount("consumer_unmarshal"))

	err = h.Handle(ctx, []byte(`{"userId":"u1","transactions":[]}`))
	assert.True(t, pkgkafka.IsPermanent(err))
	assert.Equal(t, 1, f.metrics.errorCount("consumer_invalid_batch"))

	stored, err := f.store.Ledger().List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}
