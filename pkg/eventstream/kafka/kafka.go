// Package kafka provides a Kafka-backed event publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/cutplanco/cutplan/pkg/eventstream"
)

// Publisher writes release events to a Kafka topic, keyed by repo slug so
// each repository's events stay ordered within a partition.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkago.Hash{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event eventstream.ReleasePlannedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding release event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.Repo),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publishing release event: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
