package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher delivers domain events after a unit of work has committed.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Bus writes events to Kafka when a broker is configured and fans every
// event out to the websocket hub. Without a broker only the hub is fed,
// which covers local runs.
type Bus struct {
	writer *kafka.Writer
	hub    *Hub
	logger *logrus.Logger
}

func NewBus(broker, topic string, hub *Hub, logger *logrus.Logger) *Bus {
	var w *kafka.Writer
	if broker != "" {
		w = &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}
	}
	return &Bus{writer: w, hub: hub, logger: logger}
}

// Publish sends the events in order. Messages are keyed by prison number so
// a prisoner's events stay ordered within a partition.
func (b *Bus) Publish(ctx context.Context, events ...Event) error {
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", ev.EventID, err)
		}
		if b.writer != nil {
			msg := kafka.Message{Key: []byte(ev.PrisonNumber), Value: payload}
			if err := b.writer.WriteMessages(ctx, msg); err != nil {
				return fmt.Errorf("failed to write event %s: %w", ev.EventID, err)
			}
		}
		b.hub.Broadcast(payload)
		b.logger.Infof("Published %s for %s", ev.Type, ev.PrisonNumber)
	}
	return nil
}

func (b *Bus) Close() error {
	if b.writer != nil {
		return b.writer.Close()
	}
	return nil
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
