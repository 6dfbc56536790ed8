package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "events").Logger()

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventShiftClosed        = "shift.closed"
)

// OrderEvent is the payload written for every order lifecycle change. The
// kitchen display and reporting consumers read these instead of polling.
type OrderEvent struct {
	Event      string    `json:"event"`
	OrderID    int64     `json:"order_id"`
	Folio      string    `json:"folio"`
	Status     string    `json:"status"`
	OrderType  string    `json:"order_type"`
	TableName  string    `json:"table_name,omitempty"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(broker, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishOrderEvent writes the event, logging instead of failing the calling
// request when the broker is unreachable.
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) {
	if p == nil || p.writer == nil {
		return
	}

	ev.OccurredAt = time.Now()
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Str("event", ev.Event).Msg("failed to marshal order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s-%d", ev.Event, ev.OrderID)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Str("event", ev.Event).Int64("order_id", ev.OrderID).Msg("failed to publish order event")
		return
	}

	logger.Info().Str("event", ev.Event).Int64("order_id", ev.OrderID).Msg("order event published")
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
