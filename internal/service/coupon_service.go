package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fashion-order-service/internal/cache"
	"fashion-order-service/internal/dto"
	"fashion-order-service/internal/metrics"
	"fashion-order-service/internal/model"
	"fashion-order-service/internal/repository"

	"github.com/shopspring/decimal"
)

// Interfaz que debe implementar el repositorio de cupones
type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	Update(ctx context.Context, c *model.Coupon) error
	SetActive(ctx context.Context, code string, active bool) error
	List(ctx context.Context) ([]*model.Coupon, error)
	Redeem(ctx context.Context, code string, now time.Time) (*model.Coupon, error)
	Release(ctx context.Context, code string) error
}

type CouponService struct {
	repo   CouponRepository
	cache  *cache.CouponCache
	logger *slog.Logger
	now    func() time.Time
}

func NewCouponService(r CouponRepository, c *cache.CouponCache, logger *slog.Logger) *CouponService {
	if c == nil {
		c = cache.NewCouponCache(time.Minute)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CouponService{repo: r, cache: c, logger: logger, now: time.Now}
}

// Quote calcula el descuento que daría el cupón sin consumir usos.
// Un cupón que existe pero no aplica no es error: vuelve Valid=false con el motivo.
func (s *CouponService) Quote(ctx context.Context, code string, subtotal decimal.Decimal) (*dto.CouponQuote, error) {
	if subtotal.IsNegative() {
		return nil, ErrInvalidSubtotal
	}
	c, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	q := &dto.CouponQuote{
		Code:     c.Code,
		Type:     c.Type,
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Total:    subtotal,
	}
	if n, bounded := c.RemainingUses(); bounded {
		q.RemainingUses = &n
	}
	if err := c.Check(s.now(), subtotal); err != nil {
		q.Reason = ReasonCode(err)
		return q, nil
	}
	q.Valid = true
	q.Discount = c.CalcDiscount(subtotal)
	q.Total = subtotal.Sub(q.Discount)
	return q, nil
}

// Redeem valida y consume un uso del cupón de forma atómica. Devuelve el cupón
// ya incrementado y el descuento para el subtotal.
func (s *CouponService) Redeem(ctx context.Context, code string, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error) {
	now := s.now()
	code = model.NormalizeCouponCode(code)

	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.countRedemption(err)
		return nil, decimal.Zero, s.couponErr(code, err)
	}
	if err := c.Check(now, subtotal); err != nil {
		s.countRedemption(err)
		return nil, decimal.Zero, &CouponError{Code: code, Reason: err}
	}

	redeemed, err := s.repo.Redeem(ctx, code, now)
	if errors.Is(err, repository.ErrNotRedeemable) {
		// Otro checkout se llevó el último uso, o cambió entre la lectura y el canje
		reason := model.ErrCouponExhausted
		if fresh, ferr := s.repo.FindByCode(ctx, code); ferr == nil {
			if uerr := fresh.Usability(now); uerr != nil {
				reason = uerr
			}
		}
		s.countRedemption(reason)
		return nil, decimal.Zero, &CouponError{Code: code, Reason: reason}
	}
	if err != nil {
		s.countRedemption(err)
		return nil, decimal.Zero, s.couponErr(code, err)
	}
	s.cache.Invalidate(code)
	s.countRedemption(nil)

	return redeemed, redeemed.CalcDiscount(subtotal), nil
}

// Release devuelve un uso consumido por Redeem.
func (s *CouponService) Release(ctx context.Context, code string) error {
	defer s.cache.Invalidate(code)
	if err := s.repo.Release(ctx, code); err != nil {
		return fmt.Errorf("liberar cupón %s: %w", code, err)
	}
	return nil
}

func (s *CouponService) Create(ctx context.Context, req dto.CouponRequest, actorID string) (*model.Coupon, error) {
	c, err := couponFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = actorID
	c.UsedCount = 0
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(c.Code)
	s.logger.Info("cupón creado", "code", c.Code, "type", c.Type, "by", actorID)
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, code string, req dto.CouponRequest) (*model.Coupon, error) {
	req.Code = code
	c, err := couponFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(c.Code)
	return s.repo.FindByCode(ctx, c.Code)
}

// Deactivate apaga el cupón. Los cupones no se borran físicamente.
func (s *CouponService) Deactivate(ctx context.Context, code string) error {
	if err := s.repo.SetActive(ctx, code, false); err != nil {
		return err
	}
	s.cache.Invalidate(code)
	s.logger.Info("cupón desactivado", "code", model.NormalizeCouponCode(code))
	return nil
}

func (s *CouponService) Get(ctx context.Context, code string) (*model.Coupon, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *CouponService) List(ctx context.Context) ([]*model.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *CouponService) lookup(ctx context.Context, code string) (*model.Coupon, error) {
	if c, ok := s.cache.Get(code); ok {
		return c, nil
	}
	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.cache.Set(c)
	return c, nil
}

func (s *CouponService) couponErr(code string, err error) error {
	if errors.Is(err, repository.ErrCouponNotFound) {
		return &CouponError{Code: code, Reason: err}
	}
	return fmt.Errorf("canje de cupón %s: %w", code, err)
}

func (s *CouponService) countRedemption(err error) {
	result := "ok"
	if err != nil {
		result = ReasonCode(err)
		if result == "" {
			result = "error"
		}
	}
	metrics.CouponRedemptions.WithLabelValues(result).Inc()
}

func couponFromRequest(req dto.CouponRequest) (*model.Coupon, error) {
	code := model.NormalizeCouponCode(req.Code)
	if code == "" || strings.ContainsAny(code, " \t\n") {
		return nil, fmt.Errorf("%w: código vacío o con espacios", ErrInvalidCoupon)
	}
	typ := model.CouponType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: tipo %q (fixed o percent)", ErrInvalidCoupon, req.Type)
	}
	if req.Value.IsNegative() {
		return nil, fmt.Errorf("%w: value negativo", ErrInvalidCoupon)
	}
	if req.MinOrderTotal.IsNegative() {
		return nil, fmt.Errorf("%w: min_order_total negativo", ErrInvalidCoupon)
	}
	if req.MaxUses != nil && *req.MaxUses < 0 {
		return nil, fmt.Errorf("%w: max_uses negativo", ErrInvalidCoupon)
	}
	if req.MaxDiscount != nil && req.MaxDiscount.IsNegative() {
		return nil, fmt.Errorf("%w: max_discount negativo", ErrInvalidCoupon)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &model.Coupon{
		Code:          code,
		Description:   strings.TrimSpace(req.Description),
		Type:          typ,
		Value:         req.Value,
		MinOrderTotal: req.MinOrderTotal,
		MaxDiscount:   req.MaxDiscount,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      active,
	}, nil
}
