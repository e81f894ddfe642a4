package repository

import (
	"context"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	pkgkafka "GigCredit/pkg/kafka"
)

// TopicPublisher is the part of pkg/kafka.Producer the event publisher needs.
type TopicPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaEventPublisher writes domain events as JSON, keyed by loan or user id
// so one loan's events stay ordered on a partition.
type KafkaEventPublisher struct {
	producer TopicPublisher
	topic    string
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer TopicPublisher, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, events ...models.Event) error {
	msgs := make([]pkgkafka.Message, len(events))
	for i, e := range events {
		msgs[i] = pkgkafka.Message{Key: []byte(e.Key()), Value: e}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopEventPublisher drops events. It is used when Kafka is disabled.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, ...models.Event) error { return nil }
func (NopEventPublisher) Close() error                                   { return nil }
