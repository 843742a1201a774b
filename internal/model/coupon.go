// coupon.go
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponFixed   CouponType = "fixed"
	CouponPercent CouponType = "percent"
)

func (t CouponType) Valid() bool {
	return t == CouponFixed || t == CouponPercent
}

// Motivos por los que un cupón no aplica. Los devuelve Usability / Check.
var (
	ErrCouponInactive  = errors.New("coupon inactive")
	ErrCouponExpired   = errors.New("coupon expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrBelowMinimum    = errors.New("order subtotal below coupon minimum")
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	Code          string           `bson:"code" json:"code"`
	Description   string           `bson:"description,omitempty" json:"description,omitempty"`
	Type          CouponType       `bson:"type" json:"type"`
	Value         decimal.Decimal  `bson:"value" json:"value"`
	MinOrderTotal decimal.Decimal  `bson:"min_order_total" json:"minOrderTotal"`
	MaxDiscount   *decimal.Decimal `bson:"max_discount" json:"maxDiscount,omitempty"` // solo percent
	MaxUses       *int             `bson:"max_uses" json:"maxUses"`                   // nil = ilimitado
	UsedCount     int              `bson:"used_count" json:"usedCount"`
	ExpiresAt     *time.Time       `bson:"expires_at" json:"expiresAt"` // nil = no vence
	IsActive      bool             `bson:"is_active" json:"isActive"`
	CreatedBy     string           `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `bson:"updated_at" json:"updatedAt"`
}

// NormalizeCouponCode deja el código en la forma en que se guarda (sin espacios, mayúsculas).
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsExpired es true solo si hay fecha de vencimiento y ya pasó.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// RemainingUses devuelve los usos que quedan. bounded=false significa sin límite.
func (c *Coupon) RemainingUses() (remaining int, bounded bool) {
	if c.MaxUses == nil {
		return 0, false
	}
	return max(0, *c.MaxUses-c.UsedCount), true
}

// Usability explica por qué el cupón no se puede usar ahora; nil si se puede.
func (c *Coupon) Usability(now time.Time) error {
	switch {
	case !c.IsActive:
		return ErrCouponInactive
	case c.IsExpired(now):
		return ErrCouponExpired
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return ErrCouponExhausted
	}
	return nil
}

func (c *Coupon) CanUse(now time.Time) bool {
	return c.Usability(now) == nil
}

// Check agrega el mínimo de compra a Usability.
func (c *Coupon) Check(now time.Time, subtotal decimal.Decimal) error {
	if err := c.Usability(now); err != nil {
		return err
	}
	if subtotal.LessThan(c.MinOrderTotal) {
		return ErrBelowMinimum
	}
	return nil
}

// CalcDiscount calcula el descuento para un subtotal. No vuelve a chequear CanUse:
// eso le toca al que llama.
//
// Percent redondea a 2 decimales alejándose de cero (decimal.Round) y nunca supera
// el subtotal. Fixed es min(value, subtotal); un value negativo no se corrige.
func (c *Coupon) CalcDiscount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(c.MinOrderTotal) {
		return decimal.Zero
	}

	switch c.Type {
	case CouponPercent:
		rate := decimal.Max(decimal.Zero, c.Value)
		discount := subtotal.Mul(rate).Div(hundred).Round(2)
		discount = decimal.Min(discount, subtotal)
		if c.MaxDiscount != nil {
			discount = decimal.Min(discount, *c.MaxDiscount)
		}
		return discount
	case CouponFixed:
		return decimal.Min(c.Value, subtotal)
	}
	return decimal.Zero
}
