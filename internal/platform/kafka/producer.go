package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer wraps a franz-go client for fire-and-forget event emission.
// Delivery is at-least-once; callers do not await acks.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewProducer connects to the given brokers.
func NewProducer(brokers []string, logger *slog.Logger) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, logger: logger}, nil
}

// Send publishes one record. Errors are logged, not returned: the emitter
// contract is fire-and-forget from the caller's perspective.
func (p *Producer) Send(ctx context.Context, topic, key string, payload []byte) {
	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: payload}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("kafka produce failed", "topic", r.Topic, "key", string(r.Key), "error", err)
		}
	})
}

// EnsureTopics creates the given topics if they do not exist yet.
func (p *Producer) EnsureTopics(ctx context.Context, topics ...string) error {
	adm := kadm.NewClient(p.client)
	responses, err := adm.CreateTopics(ctx, 1, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, response := range responses.Sorted() {
		if response.Err != nil && !errors.Is(response.Err, kerr.TopicAlreadyExists) {
			p.logger.Warn("topic creation", "topic", response.Topic, "error", response.Err)
		}
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	_ = p.client.Flush(context.Background())
	p.client.Close()
}
