package sender

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/agenghermawan/clandestineproject/internal/contact"
)

// Producer is the part of *kgo.Client the Kafka sender needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka publishes mail as JSON for a separate mail service to deliver.
type Kafka struct {
	producer Producer
	topic    string
}

func NewKafka(producer Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

// NewKafkaClient connects a franz-go client for the given brokers.
func NewKafkaClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

func (k *Kafka) Send(ctx context.Context, m contact.Mail) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal contact mail: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(m.ReplyTo),
		Value: payload,
	}
	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish contact mail: %w", err)
	}
	return nil
}
