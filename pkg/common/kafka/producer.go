package kafka

import (
	"context"
	"time"

	"github.com/agristream/platform/pkg/common/config"
	"github.com/agristream/platform/pkg/common/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(topic string) *Producer {
	cfg := config.Load()
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &Producer{writer: writer}
}

// Publish sends a raw message body with metadata headers. Keys are fresh
// UUIDs so messages spread across partitions.
func (p *Producer) Publish(ctx context.Context, body []byte, metadata map[string]string) error {
	message := kafka.Message{
		Key:   []byte(uuid.New().String()),
		Value: body,
	}
	for key, value := range metadata {
		message.Headers = append(message.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithField("topic", p.writer.Topic).Error("Failed to publish message")
		return err
	}

	logger.Log.WithField("topic", p.writer.Topic).Debug("Message published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
