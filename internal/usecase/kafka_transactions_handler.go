package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	pkgkafka "GigCredit/pkg/kafka"
)

// Ingester appends a user's transactions to the ledger.
type Ingester interface {
	Ingest(ctx context.Context, userID string, in []models.TransactionInput) (*IngestResult, error)
}

// KafkaTransactionsHandler consumes TransactionBatch messages from the
// transactions topic and ingests them. Malformed batches are dead-lettered
// without retries.
type KafkaTransactionsHandler struct {
	topic    string
	ingester Ingester
	metrics  domrepo.Metrics
}

func NewKafkaTransactionsHandler(topic string, ingester Ingester, metrics domrepo.Metrics) *KafkaTransactionsHandler {
	return &KafkaTransactionsHandler{topic: topic, ingester: ingester, metrics: metrics}
}

func (h *KafkaTransactionsHandler) Topic() string { return h.topic }

func (h *KafkaTransactionsHandler) Handle(ctx context.Context, b []byte) error {
	var batch models.TransactionBatch
	if err := json.Unmarshal(b, &batch); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(err)
	}

	start := time.Now()
	_, err := h.ingester.Ingest(ctx, batch.UserID, batch.Transactions)
	h.metrics.RecordLatency("consumer_ingest", time.Since(start))
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			h.metrics.RecordError("consumer_invalid_batch")
			return pkgkafka.Permanent(err)
		}
		h.metrics.RecordError("consumer_ingest")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTransactionsHandler)(nil)
