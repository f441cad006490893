package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is the transport-neutral record handed to topic handlers.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// TopicHandler handles messages from a specific topic.
type TopicHandler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Router dispatches messages to topic-specific handlers.
type Router struct {
	handlers map[string]TopicHandler
	logger   *slog.Logger
}

// NewRouter creates a topic router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{handlers: make(map[string]TopicHandler), logger: logger}
}

// Register adds a handler for a specific topic.
func (r *Router) Register(topic string, handler TopicHandler) {
	r.handlers[topic] = handler
}

// Topics lists every registered topic.
func (r *Router) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// Handle routes the message to the appropriate topic handler. Unroutable
// messages are logged and committed to avoid redelivery loops.
func (r *Router) Handle(ctx context.Context, msg *Message) error {
	handler, ok := r.handlers[msg.Topic]
	if !ok {
		r.logger.Warn("no handler for topic, skipping message",
			"topic", msg.Topic,
			"key", string(msg.Key),
		)
		return nil
	}
	return handler.Handle(ctx, msg)
}

// Consumer runs a consumer group over the router's topics.
type Consumer struct {
	client *kgo.Client
	router *Router
	logger *slog.Logger
}

// NewConsumer joins the given consumer group for every topic the router knows.
func NewConsumer(brokers []string, groupID string, router *Router, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(router.Topics()...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, router: router, logger: logger}, nil
}

// Run polls until ctx is cancelled. Handler errors are logged and the record is
// committed anyway: inbound events are best-effort triggers, redelivering a
// poison message would only repeat the failure.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("kafka fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			headers := make(map[string]string, len(record.Headers))
			for _, h := range record.Headers {
				headers[h.Key] = string(h.Value)
			}
			msg := &Message{
				Topic:   record.Topic,
				Key:     record.Key,
				Value:   record.Value,
				Headers: headers,
			}
			if err := c.router.Handle(ctx, msg); err != nil {
				c.logger.Error("event handling failed",
					"topic", record.Topic,
					"key", string(record.Key),
					"error", err,
				)
			}
		})
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() {
	c.client.Close()
}
