// dto.go
package dto

import (
	"time"

	"fashion-order-service/internal/model"

	"github.com/shopspring/decimal"
)

// PlaceOrderRequest usado por la API y Rabbit para crear una orden
type PlaceOrderRequest struct {
	OrderID    string          `json:"orderId" binding:"required"`
	UserID     string          `json:"userId"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	CouponCode string          `json:"couponCode"`
	Shipping   ShippingDTO     `json:"shipping"`
}

// ShippingDTO para la dirección y comentario
type ShippingDTO struct {
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Province     string `json:"province"`
	Country      string `json:"country"`
	Comments     string `json:"comments"`
}

// UpdateStatusRequest acepta status como texto ("shipped") o número (3).
type UpdateStatusRequest struct {
	Status any    `json:"status"`
	Reason string `json:"reason"`
}

type OrderStatusResponse struct {
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	Status     model.Step      `json:"status"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	CouponCode string          `json:"couponCode,omitempty"`
	Shipping   ShippingDTO     `json:"shipping"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CouponRequest crea o edita un cupón desde el back-office.
type CouponRequest struct {
	Code          string           `json:"code"`
	Description   string           `json:"description"`
	Type          string           `json:"type" binding:"required"`
	Value         decimal.Decimal  `json:"value"`
	MinOrderTotal decimal.Decimal  `json:"minOrderTotal"`
	MaxDiscount   *decimal.Decimal `json:"maxDiscount"`
	MaxUses       *int             `json:"maxUses"`
	ExpiresAt     *time.Time       `json:"expiresAt"`
	IsActive      *bool            `json:"isActive"`
}

type QuoteRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CouponQuote es el resultado estructurado de evaluar un cupón contra un subtotal.
type CouponQuote struct {
	Code          string           `json:"code"`
	Type          model.CouponType `json:"type"`
	Valid         bool             `json:"valid"`
	Reason        string           `json:"reason,omitempty"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Discount      decimal.Decimal  `json:"discount"`
	Total         decimal.Decimal  `json:"total"`
	RemainingUses *int             `json:"remainingUses,omitempty"` // nil = ilimitado
}

func OrderToResponse(o *model.Order) OrderStatusResponse {
	return OrderStatusResponse{
		OrderID:    o.OrderID,
		UserID:     o.UserID,
		Status:     o.Step,
		Subtotal:   o.Subtotal,
		Discount:   o.Discount,
		Total:      o.Total,
		CouponCode: o.CouponCode,
		Shipping: ShippingDTO{
			AddressLine1: o.Shipping.AddressLine1,
			City:         o.Shipping.City,
			PostalCode:   o.Shipping.PostalCode,
			Province:     o.Shipping.Province,
			Country:      o.Shipping.Country,
			Comments:     o.Shipping.Comments,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
