package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"fashion-order-service/internal/dto"
	"fashion-order-service/internal/model"
	"fashion-order-service/internal/service"

	"github.com/shopspring/decimal"
)

// ErrMalformedMessage marca mensajes que no vale la pena reintentar.
var ErrMalformedMessage = errors.New("mensaje place_order inválido")

// OrderPlacer es lo que el consumer necesita del servicio de órdenes.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest, source string) (*model.Order, error)
}

type PlaceOrderConsumer struct {
	Service OrderPlacer
	logger  *slog.Logger
}

func NewPlaceOrderConsumer(s OrderPlacer, logger *slog.Logger) *PlaceOrderConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaceOrderConsumer{Service: s, logger: logger}
}

// PlacedOrderMessage es el mensaje que publica el servicio de órdenes.
// Shipping, subtotal y couponCode son opcionales.
type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID  string `json:"orderId"`
		CartID   string `json:"cartId"`
		UserID   string `json:"userId"`
		Articles []struct {
			ArticleID string `json:"articleId"`
			Quantity  int    `json:"quantity"`
		} `json:"articles"`
		Shipping   dto.ShippingDTO `json:"shipping"`
		Subtotal   decimal.Decimal `json:"subtotal"`
		CouponCode string          `json:"couponCode"`
	} `json:"message"`
}

// Handle procesa un place_order. Una orden repetida no es error: el mensaje ya se procesó.
func (c *PlaceOrderConsumer) Handle(ctx context.Context, msg []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if event.Message.OrderID == "" {
		return fmt.Errorf("%w: falta orderId", ErrMalformedMessage)
	}

	log := c.logger.With("order_id", event.Message.OrderID, "correlation_id", event.CorrelationID)
	log.Debug("evento recibido: place_order")

	req := dto.PlaceOrderRequest{
		OrderID:    event.Message.OrderID,
		UserID:     event.Message.UserID,
		Subtotal:   event.Message.Subtotal,
		CouponCode: event.Message.CouponCode,
		Shipping:   event.Message.Shipping,
	}
	_, err := c.Service.PlaceOrder(ctx, req, "rabbit")

	// La orden ya existe aguas arriba: si el cupón no aplica, se inicializa igual sin descuento.
	var couponErr *service.CouponError
	if errors.As(err, &couponErr) {
		log.Warn("cupón rechazado, la orden se inicializa sin descuento",
			"coupon", couponErr.Code, "reason", service.ReasonCode(err))
		req.CouponCode = ""
		_, err = c.Service.PlaceOrder(ctx, req, "rabbit")
	}

	switch {
	case err == nil:
		log.Info("estado inicial procesado")
		return nil
	case errors.Is(err, service.ErrOrderAlreadyExists):
		log.Info("orden ya inicializada, se ignora")
		return nil
	case errors.Is(err, service.ErrInvalidSubtotal):
		log.Warn("orden rechazada", "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return err
}
