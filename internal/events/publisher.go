package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"user-service/internal/entity"
)

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer messageWriter
}

func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// MessageKey returns the key a user event is published under, for example
// user.created.42.
func MessageKey(event entity.UserEvent) string {
	return fmt.Sprintf("user.%s.%d", event.Type, event.User.ID)
}

func (p *Publisher) Publish(ctx context.Context, event entity.UserEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(MessageKey(event)),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.Key, err)
	}

	return nil
}
