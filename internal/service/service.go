package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fashion-order-service/internal/dto"
	"fashion-order-service/internal/metrics"
	"fashion-order-service/internal/model"
	"fashion-order-service/internal/repository"

	"github.com/shopspring/decimal"
)

// Interfaz que debe implementar repository
type OrderRepository interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to model.Step, record model.StatusRecord) error
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByStatus(ctx context.Context, step model.Step) ([]*model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Order, error)
}

// Actor es quien pide el cambio: el dueño de la orden o alguien del staff.
type Actor struct {
	ID      string
	IsAdmin bool
}

func dtoToModelShipping(in dto.ShippingDTO) model.Shipping {
	return model.Shipping{
		AddressLine1: in.AddressLine1,
		City:         in.City,
		PostalCode:   in.PostalCode,
		Province:     in.Province,
		Country:      in.Country,
		Comments:     in.Comments,
	}
}

// Envío por defecto cuando la orden llega sin dirección: retiro en el local.
var defaultShipping = dto.ShippingDTO{
	AddressLine1: "Retiro en tienda",
	Comments:     "Orden inicializada automáticamente",
}

type OrderStatusService struct {
	repo      OrderRepository
	coupons   *CouponService
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	summaryMu sync.RWMutex
	summary   *model.StatusSummary
}

func NewOrderStatusService(r OrderRepository, coupons *CouponService, publisher EventPublisher, logger *slog.Logger) *OrderStatusService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderStatusService{repo: r, coupons: coupons, publisher: publisher, logger: logger, now: time.Now}
}

// PlaceOrder crea la orden en pending. Si trae cupón, lo canjea de forma atómica
// antes de guardar; si el guardado falla, el uso se devuelve.
// source es "api" o "rabbit" y solo se usa para métricas y logs.
func (s *OrderStatusService) PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest, source string) (*model.Order, error) {
	// 1. Primero preguntamos si ya existe
	existing, err := s.repo.FindByOrderID(ctx, req.OrderID)
	if err == nil && existing != nil {
		return nil, ErrOrderAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if req.Subtotal.IsNegative() {
		return nil, ErrInvalidSubtotal
	}

	// 2. Canje del cupón, si hay
	discount := decimal.Zero
	code := model.NormalizeCouponCode(req.CouponCode)
	if code != "" {
		if s.coupons == nil {
			return nil, &CouponError{Code: code, Reason: repository.ErrCouponNotFound}
		}
		_, discount, err = s.coupons.Redeem(ctx, code, req.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	shipping := req.Shipping
	if shipping.AddressLine1 == "" {
		shipping = defaultShipping
	}

	now := s.now().UTC()
	order := &model.Order{
		OrderID:    req.OrderID,
		UserID:     req.UserID,
		Step:       model.StepPending,
		Subtotal:   req.Subtotal,
		Discount:   discount,
		Total:      req.Subtotal.Sub(discount),
		CouponCode: code,
		Shipping:   dtoToModelShipping(shipping),
		CreatedAt:  now,
		UpdatedAt:  now,
		History: []model.StatusRecord{
			{
				Status:    model.StepPending,
				Current:   true,
				Reason:    "Orden inicializada",
				UserID:    req.UserID,
				Timestamp: now,
			},
		},
	}

	if err := s.repo.Save(ctx, order); err != nil {
		if code != "" {
			if rerr := s.coupons.Release(ctx, code); rerr != nil {
				s.logger.Error("no se pudo liberar el cupón", "order_id", req.OrderID, "code", code, "error", rerr)
			}
		}
		return nil, fmt.Errorf("guardar orden %s: %w", req.OrderID, err)
	}

	metrics.OrdersPlaced.WithLabelValues(source).Inc()
	s.logger.Info("orden creada",
		"order_id", order.OrderID,
		"user_id", order.UserID,
		"source", source,
		"coupon", code,
		"discount", discount.String(),
	)
	return order, nil
}

// Getters
func (s *OrderStatusService) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *OrderStatusService) GetAll(ctx context.Context) ([]*model.Order, error) {
	return s.repo.FindAll(ctx)
}

// GetByStatus acepta cualquier representación del estado (shipped, 3, shipping...).
func (s *OrderStatusService) GetByStatus(ctx context.Context, raw string) ([]*model.Order, error) {
	step, ok := model.ParseStep(raw)
	if !ok {
		return nil, ErrUnknownStatus
	}
	return s.repo.FindByStatus(ctx, step)
}

func (s *OrderStatusService) GetByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// UpdateStatus valida y realiza la transición entre estados según las reglas de negocio.
//
// Staff puede mover la orden a cualquier paso mientras no esté cancelada. El dueño
// solo puede cancelar, y solo antes de que salga a envío.
func (s *OrderStatusService) UpdateStatus(ctx context.Context, orderID string, rawStatus any, reason string, actor Actor) (*model.Order, error) {
	requested, ok := model.ParseStep(rawStatus)
	if !ok {
		return nil, ErrUnknownStatus
	}

	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	current := ord.Step

	isOwner := ord.UserID == actor.ID
	if !actor.IsAdmin && !isOwner {
		return nil, ErrForbidden // Ni es admin, ni es el dueño -> Fuera.
	}

	// Si el estado nuevo es el mismo que ya está, no hacemos nada
	if current == requested {
		return ord, nil
	}
	if !model.CanAdvance(current, requested) {
		return nil, ErrFinalState
	}
	if !actor.IsAdmin {
		if requested != model.StepCanceled || current.Index() >= model.StepShipping.Index() {
			return nil, ErrInvalidTransition
		}
	}

	now := s.now().UTC()
	record := model.StatusRecord{
		Status:    requested,
		Reason:    reason,
		UserID:    actor.ID,
		Timestamp: now,
		Current:   true,
	}
	if err := s.repo.UpdateStatus(ctx, orderID, current, requested, record); err != nil {
		return nil, err
	}

	for i := range ord.History {
		ord.History[i].Current = false
	}
	ord.History = append(ord.History, record)
	ord.Step = requested
	ord.Stamp(requested, now)
	ord.UpdatedAt = now

	metrics.StatusTransitions.WithLabelValues(string(requested)).Inc()
	s.logger.Info("estado actualizado",
		"order_id", orderID,
		"from", current,
		"to", requested,
		"actor", actor.ID,
		"admin", actor.IsAdmin,
	)

	payload := model.StatusChangedPayload{
		OrderID: orderID,
		UserID:  ord.UserID,
		From:    current,
		To:      requested,
		Reason:  reason,
		Actor:   actor.ID,
	}
	if err := s.publisher.PublishStatusChanged(ctx, payload); err != nil {
		// El cambio ya quedó guardado; el evento perdido no lo deshace.
		s.logger.Warn("no se pudo publicar el cambio de estado", "order_id", orderID, "error", err)
	}
	return ord, nil
}

// RefreshSummary recalcula el conteo por paso y lo deja cacheado.
func (s *OrderStatusService) RefreshSummary(ctx context.Context) (model.StatusSummary, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return model.StatusSummary{}, err
	}
	sum := model.Summarize(orders, s.now().UTC())

	s.summaryMu.Lock()
	s.summary = &sum
	s.summaryMu.Unlock()

	for step, n := range sum.Counts {
		metrics.OrdersByStep.WithLabelValues(string(step)).Set(float64(n))
	}
	return sum, nil
}

// Summary devuelve el último resumen; si el job todavía no corrió, lo calcula.
func (s *OrderStatusService) Summary(ctx context.Context) (model.StatusSummary, error) {
	s.summaryMu.RLock()
	cached := s.summary
	s.summaryMu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	return s.RefreshSummary(ctx)
}
