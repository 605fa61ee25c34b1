package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
)

var _ Publisher = (*Kafka)(nil)

// Kafka publishes records keyed by card id, so one card's records stay
// ordered within a partition.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSyncProducer builds a producer that waits for every in-sync replica.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("new kafka producer: %w", err)
	}

	return producer, nil
}

func NewKafka(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Publish(ctx context.Context, rec transactions.Record) error {
	payload, err := json.Marshal(NewMessage(rec))
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(rec.CardID),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(rec.Kind)},
		},
	}

	// SendMessage has no context; the send keeps running after ctx ends
	// and its result is dropped.
	sent := make(chan error, 1)
	go func() {
		_, _, err := k.producer.SendMessage(msg)
		sent <- err
	}()

	select {
	case err = <-sent:
	case <-ctx.Done():
		return fmt.Errorf("send record %s: %w", rec.ID, ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("send record %s: %w", rec.ID, err)
	}

	return nil
}

func (k *Kafka) Close() error {
	err := k.producer.Close()
	if err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}

	return nil
}
