package service

import (
	"context"
	"testing"
	"time"

	"fashion-order-service/internal/cache"
	"fashion-order-service/internal/dto"
	"fashion-order-service/internal/model"
	"fashion-order-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newCouponService(t *testing.T) (*CouponService, *repository.MemoryCouponRepository) {
	t.Helper()
	repo := repository.NewMemoryCouponRepository()
	svc := NewCouponService(repo, cache.NewCouponCache(time.Minute), discardLogger)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func TestQuotePercent(t *testing.T) {
	svc, _ := newCouponService(t)
	_, err := svc.Create(context.Background(), dto.CouponRequest{
		Code: "verano10", Type: "percent", Value: decimal.NewFromInt(10), MaxUses: ptr(5),
	}, "staff-1")
	require.NoError(t, err)

	q, err := svc.Quote(context.Background(), "VERANO10", decimal.RequireFromString("199.99"))
	require.NoError(t, err)
	assert.True(t, q.Valid)
	assert.Empty(t, q.Reason)
	assert.Equal(t, "20", q.Discount.String())
	assert.Equal(t, "179.99", q.Total.String())
	require.NotNil(t, q.RemainingUses)
	assert.Equal(t, 5, *q.RemainingUses)
}

func TestQuoteReasons(t *testing.T) {
	svc, repo := newCouponService(t)
	ctx := context.Background()
	yesterday := fixedNow.Add(-24 * time.Hour)

	require.NoError(t, repo.Create(ctx, &model.Coupon{Code: "OFF", Type: model.CouponFixed, Value: decimal.NewFromInt(5), IsActive: false}))
	require.NoError(t, repo.Create(ctx, &model.Coupon{Code: "OLD", Type: model.CouponFixed, Value: decimal.NewFromInt(5), ExpiresAt: &yesterday, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Coupon{Code: "USED", Type: model.CouponFixed, Value: decimal.NewFromInt(5), MaxUses: ptr(2), UsedCount: 2, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Coupon{Code: "BIG", Type: model.CouponFixed, Value: decimal.NewFromInt(5), MinOrderTotal: decimal.NewFromInt(100), IsActive: true}))

	cases := map[string]string{
		"OFF":  ReasonCouponInactive,
		"OLD":  ReasonCouponExpired,
		"USED": ReasonCouponExhausted,
		"BIG":  ReasonBelowMinimum,
	}
	for code, reason := range cases {
		t.Run(code, func(t *testing.T) {
			q, err := svc.Quote(ctx, code, decimal.NewFromInt(50))
			require.NoError(t, err)
			assert.False(t, q.Valid)
			assert.Equal(t, reason, q.Reason)
			assert.True(t, q.Discount.IsZero())
			assert.True(t, q.Total.Equal(decimal.NewFromInt(50)))
		})
	}
}

func TestQuoteNotFoundAndNegative(t *testing.T) {
	svc, _ := newCouponService(t)

	_, err := svc.Quote(context.Background(), "NADA", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrCouponNotFound)

	_, err = svc.Quote(context.Background(), "NADA", decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, ErrInvalidSubtotal)
}

func TestQuoteDoesNotConsume(t *testing.T) {
	svc, repo := newCouponService(t)
	require.NoError(t, repo.Create(context.Background(), &model.Coupon{
		Code: "UNO", Type: model.CouponFixed, Value: decimal.NewFromInt(1), MaxUses: ptr(1), IsActive: true,
	}))

	for i := 0; i < 3; i++ {
		q, err := svc.Quote(context.Background(), "UNO", decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, q.Valid)
	}
	c, _ := repo.FindByCode(context.Background(), "UNO")
	assert.Equal(t, 0, c.UsedCount)
}

func TestRedeemInvalidatesCache(t *testing.T) {
	svc, repo := newCouponService(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "UNO", Type: model.CouponFixed, Value: decimal.NewFromInt(1), MaxUses: ptr(1), IsActive: true,
	}))

	q, err := svc.Quote(ctx, "UNO", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, q.Valid)

	c, discount, err := svc.Redeem(ctx, "uno", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsedCount)
	assert.True(t, discount.Equal(decimal.NewFromInt(1)))

	q, err = svc.Quote(ctx, "UNO", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, q.Valid)
	assert.Equal(t, ReasonCouponExhausted, q.Reason)

	_, _, err = svc.Redeem(ctx, "UNO", decimal.NewFromInt(10))
	assert.Equal(t, ReasonCouponExhausted, ReasonCode(err))
}

func TestReleaseRestoresUse(t *testing.T) {
	svc, repo := newCouponService(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Coupon{
		Code: "UNO", Type: model.CouponFixed, Value: decimal.NewFromInt(1), MaxUses: ptr(1), IsActive: true,
	}))

	_, _, err := svc.Redeem(ctx, "UNO", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, svc.Release(ctx, "UNO"))

	_, _, err = svc.Redeem(ctx, "UNO", decimal.NewFromInt(10))
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newCouponService(t)
	bad := []dto.CouponRequest{
		{Code: "", Type: "fixed"},
		{Code: "DOS PALABRAS", Type: "fixed"},
		{Code: "X", Type: "bogo"},
		{Code: "X", Type: "fixed", Value: decimal.NewFromInt(-1)},
		{Code: "X", Type: "fixed", MinOrderTotal: decimal.NewFromInt(-1)},
		{Code: "X", Type: "fixed", MaxUses: ptr(-1)},
		{Code: "X", Type: "percent", MaxDiscount: ptr(decimal.NewFromInt(-5))},
	}
	for _, req := range bad {
		_, err := svc.Create(context.Background(), req, "staff-1")
		assert.ErrorIs(t, err, ErrInvalidCoupon, "%+v", req)
	}
}

func TestCreateDuplicateAndDefaults(t *testing.T) {
	svc, _ := newCouponService(t)
	c, err := svc.Create(context.Background(), dto.CouponRequest{Code: " envio ", Type: "FIXED", Value: decimal.NewFromInt(3)}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, "ENVIO", c.Code)
	assert.Equal(t, model.CouponFixed, c.Type)
	assert.True(t, c.IsActive)
	assert.Equal(t, "staff-1", c.CreatedBy)

	_, err = svc.Create(context.Background(), dto.CouponRequest{Code: "ENVIO", Type: "fixed"}, "staff-1")
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestUpdateAndDeactivate(t *testing.T) {
	svc, _ := newCouponService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, dto.CouponRequest{Code: "PROMO", Type: "fixed", Value: decimal.NewFromInt(3)}, "staff-1")
	require.NoError(t, err)

	q, err := svc.Quote(ctx, "PROMO", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, q.Valid)

	c, err := svc.Update(ctx, "promo", dto.CouponRequest{Type: "percent", Value: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, model.CouponPercent, c.Type)

	q, err = svc.Quote(ctx, "PROMO", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "5", q.Discount.String(), "el cache se invalidó al editar")

	require.NoError(t, svc.Deactivate(ctx, "PROMO"))
	q, err = svc.Quote(ctx, "PROMO", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, ReasonCouponInactive, q.Reason)

	assert.ErrorIs(t, svc.Deactivate(ctx, "NOPE"), ErrCouponNotFound)
	_, err = svc.Update(ctx, "NOPE", dto.CouponRequest{Type: "fixed"})
	assert.ErrorIs(t, err, ErrCouponNotFound)
}
