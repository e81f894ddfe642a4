package usecase

import (
	"context"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	"GigCredit/pkg/logger"
)

// eventEmitter publishes domain events. A failed publish is logged and counted
// but never fails the operation that produced it.
type eventEmitter struct {
	pub     domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *logger.Logger
}

func newEventEmitter(pub domrepo.EventPublisher, metrics domrepo.Metrics, log *logger.Logger) *eventEmitter {
	return &eventEmitter{pub: pub, metrics: metrics, log: log}
}

func (e *eventEmitter) emit(ctx context.Context, evs ...models.Event) {
	if len(evs) == 0 {
		return
	}
	for i := range evs {
		if evs[i].At.IsZero() {
			evs[i].At = time.Now().UTC()
		}
	}
	if e.pub == nil {
		return
	}
	if err := e.pub.Publish(ctx, evs...); err != nil {
		types := make([]string, len(evs))
		for i, ev := range evs {
			types[i] = string(ev.Type)
		}
		e.metrics.RecordError("event_publish")
		e.log.Warn("publish event failed",
			logger.Strings("types", types),
			logger.String("key", evs[0].Key()),
			logger.Error(err),
		)
	}
}

func loanEvent(typ models.EventType, l *models.Loan, lenderID string, payload interface{}) models.Event {
	return models.Event{
		Type:     typ,
		UserID:   l.BorrowerID,
		LoanID:   l.ID,
		LenderID: lenderID,
		At:       l.UpdatedAt,
		Payload:  payload,
	}
}

func (e *eventEmitter) loan(ctx context.Context, typ models.EventType, l *models.Loan, lenderID string, payload interface{}) {
	e.loans(ctx, loanEvent(typ, l, lenderID, payload))
}

// loans counts each transition and publishes the events as one batch.
func (e *eventEmitter) loans(ctx context.Context, evs ...models.Event) {
	for _, ev := range evs {
		e.metrics.RecordLoanTransition(ev.Type)
	}
	e.emit(ctx, evs...)
}
