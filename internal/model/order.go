// order.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID    string          `bson:"order_id" json:"orderId"`
	UserID     string          `bson:"user_id" json:"userId"`
	Step       Step            `bson:"status_step" json:"status"` // estado actual
	Subtotal   decimal.Decimal `bson:"subtotal" json:"subtotal"`
	Discount   decimal.Decimal `bson:"discount" json:"discount"`
	Total      decimal.Decimal `bson:"total" json:"total"`
	CouponCode string          `bson:"coupon_code,omitempty" json:"couponCode,omitempty"`
	History    []StatusRecord  `bson:"history" json:"history"`
	Shipping   Shipping        `bson:"shipping" json:"shipping"`

	// Marcas por paso. pending usa CreatedAt.
	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	ReadyAt     *time.Time `bson:"ready_at,omitempty" json:"readyAt,omitempty"`
	ShippingAt  *time.Time `bson:"shipping_at,omitempty" json:"shippingAt,omitempty"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	CanceledAt  *time.Time `bson:"canceled_at,omitempty" json:"canceledAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

type Shipping struct {
	AddressLine1 string `bson:"address_line1" json:"addressLine1"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postal_code" json:"postalCode"`
	Province     string `bson:"province" json:"province"`
	Country      string `bson:"country" json:"country"`
	Comments     string `bson:"comments" json:"comments"`
}

type StatusRecord struct {
	Status    Step      `bson:"status" json:"status"`
	Reason    string    `bson:"reason" json:"reason"`
	UserID    string    `bson:"user" json:"userId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	// Para marcar cuál es el último
	Current bool `bson:"current" json:"current"`
}

// Stamp marca la hora de entrada al paso indicado. Es solo informativo.
func (o *Order) Stamp(step Step, now time.Time) {
	t := now
	switch step {
	case StepConfirmed:
		o.ConfirmedAt = &t
	case StepReady:
		o.ReadyAt = &t
	case StepShipping:
		o.ShippingAt = &t
	case StepDelivered:
		o.DeliveredAt = &t
	case StepCanceled:
		o.CanceledAt = &t
	}
}

// StepTimestampField es el nombre del campo bson que Stamp modifica para cada paso.
func StepTimestampField(step Step) string {
	switch step {
	case StepConfirmed:
		return "confirmed_at"
	case StepReady:
		return "ready_at"
	case StepShipping:
		return "shipping_at"
	case StepDelivered:
		return "delivered_at"
	case StepCanceled:
		return "canceled_at"
	}
	return ""
}

// CurrentRecord devuelve el registro del historial marcado como actual.
func (o *Order) CurrentRecord() *StatusRecord {
	for i := range o.History {
		if o.History[i].Current {
			return &o.History[i]
		}
	}
	return nil
}
