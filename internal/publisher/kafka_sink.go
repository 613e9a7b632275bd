package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	// OrderSubmittedTopic carries every accepted order.
	OrderSubmittedTopic = "order-submitted"

	eventTypeHeader    = "event_type"
	orderSubmittedType = "order_submitted"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes submitted orders. It implements checkout.Sink.
type KafkaSink struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaSink(logger *zap.Logger, brokers ...string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  OrderSubmittedTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}
	return newKafkaSink(w, logger)
}

func newKafkaSink(w messageWriter, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaSink{writer: w, logger: logger}
}

func (s *KafkaSink) Submit(ctx context.Context, payload domain.OrderPayload) error {
	msg, err := buildMessage(payload)
	if err != nil {
		return err
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", payload.ID, err)
	}

	s.logger.Debug("order published",
		zap.String("order_id", payload.ID.String()),
		zap.String("topic", OrderSubmittedTopic),
	)
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func buildMessage(payload domain.OrderPayload) (kafka.Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	return kafka.Message{
		Key:   []byte(payload.ID.String()), // order id for ordering
		Value: value,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(orderSubmittedType)},
		},
	}, nil
}
