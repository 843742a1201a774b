// setup.go
package rabbit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"
)

const (
	PlaceOrderExchange = "order_placed"
	PlaceOrderQueue    = "order_status_service_orders" // cola exclusiva de este micro
)

// Delivery es lo mínimo que necesitamos de amqp091.Delivery para ack/nack.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// SetupConsumers declara la cola, la bindea al fanout order_placed y arranca a consumir
// hasta que ctx se cancele.
func SetupConsumers(ctx context.Context, ch *amqp091.Channel, consumer *PlaceOrderConsumer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		PlaceOrderQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declarar queue: %w", err)
	}

	// 2. Bindear al exchange fanout
	if err := ch.QueueBind(q.Name, "", PlaceOrderExchange, false, nil); err != nil {
		return fmt.Errorf("bind a %s: %w", PlaceOrderExchange, err)
	}

	// 3. Consumir con ack manual
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumir queue: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					logger.Warn("canal de rabbit cerrado, se deja de consumir")
					return
				}
				dispatch(ctx, consumer, m.Body, m.Redelivered, &m, logger)
			}
		}
	}()

	logger.Info("suscrito a exchange", "exchange", PlaceOrderExchange, "queue", q.Name)
	return nil
}

// dispatch procesa un mensaje y decide el ack. Lo inválido se descarta; un error
// transitorio se reencola una sola vez.
func dispatch(ctx context.Context, consumer *PlaceOrderConsumer, body []byte, redelivered bool, d Delivery, logger *slog.Logger) {
	err := consumer.Handle(ctx, body)
	switch {
	case err == nil:
		if aerr := d.Ack(false); aerr != nil {
			logger.Error("ack falló", "error", aerr)
		}
	case errors.Is(err, ErrMalformedMessage):
		logger.Error("mensaje descartado", "error", err)
		_ = d.Nack(false, false)
	default:
		logger.Error("error procesando place_order", "error", err, "redelivered", redelivered)
		_ = d.Nack(false, !redelivered)
	}
}
