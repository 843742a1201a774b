package service

import (
	"context"

	"fashion-order-service/internal/model"
)

// EventPublisher publica cambios de estado hacia afuera (Rabbit en producción).
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, payload model.StatusChangedPayload) error
}

type noopPublisher struct{}

func (noopPublisher) PublishStatusChanged(context.Context, model.StatusChangedPayload) error {
	return nil
}
