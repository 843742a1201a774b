package model

import (
	"encoding/json"
	"time"
)

const EventOrderStatusChanged = "OrderStatusChanged"

// Envelope es el sobre común de los eventos que publica el servicio.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type StatusChangedPayload struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	From    Step   `json:"from"`
	To      Step   `json:"to"`
	Reason  string `json:"reason,omitempty"`
	Actor   string `json:"actor"`
}
