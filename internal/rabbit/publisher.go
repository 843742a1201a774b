package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fashion-order-service/internal/model"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const StatusChangedExchange = "order_status_changed"

// Channel es la parte de *amqp091.Channel que usa el publisher.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// StatusPublisher publica cada cambio de estado en el fanout order_status_changed.
type StatusPublisher struct {
	ch       Channel
	producer string
	now      func() time.Time
}

// NewStatusPublisher declara el exchange (durable, fanout) y devuelve el publisher.
func NewStatusPublisher(ch Channel, producer string) (*StatusPublisher, error) {
	if err := ch.ExchangeDeclare(StatusChangedExchange, amqp091.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declarar exchange %s: %w", StatusChangedExchange, err)
	}
	return &StatusPublisher{ch: ch, producer: producer, now: time.Now}, nil
}

func (p *StatusPublisher) PublishStatusChanged(ctx context.Context, payload model.StatusChangedPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := model.Envelope{
		EventID:       uuid.NewString(),
		EventType:     model.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    p.now().UTC(),
		Producer:      p.producer,
		CorrelationID: payload.OrderID,
		Payload:       raw,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.ch.PublishWithContext(ctx, StatusChangedExchange, "", false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.EventID,
		CorrelationId: env.CorrelationID,
		Timestamp:     env.OccurredAt,
		Type:          env.EventType,
		AppId:         p.producer,
		Body:          body,
	})
}
