package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(n int) *int { return &n }

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SUMMER10", NormalizeCouponCode("  summer10 "))
	assert.Equal(t, "", NormalizeCouponCode("   "))
}

func TestCouponIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	assert.False(t, (&Coupon{}).IsExpired(now), "sin fecha no vence")
	assert.True(t, (&Coupon{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&Coupon{ExpiresAt: &future}).IsExpired(now))
	assert.False(t, (&Coupon{ExpiresAt: &now}).IsExpired(now), "el instante exacto todavía vale")
}

func TestCouponRemainingUses(t *testing.T) {
	_, bounded := (&Coupon{UsedCount: 1000}).RemainingUses()
	assert.False(t, bounded)

	n, bounded := (&Coupon{MaxUses: intPtr(5), UsedCount: 2}).RemainingUses()
	assert.True(t, bounded)
	assert.Equal(t, 3, n)

	n, _ = (&Coupon{MaxUses: intPtr(5), UsedCount: 9}).RemainingUses()
	assert.Equal(t, 0, n)
}

func TestCouponCanUse(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   error
	}{
		{"activo sin límites", Coupon{IsActive: true}, nil},
		{"inactivo", Coupon{IsActive: false, ExpiresAt: &future}, ErrCouponInactive},
		{"inactivo gana sobre vencido", Coupon{IsActive: false, ExpiresAt: &past}, ErrCouponInactive},
		{"vencido", Coupon{IsActive: true, ExpiresAt: &past}, ErrCouponExpired},
		{"agotado", Coupon{IsActive: true, MaxUses: intPtr(3), UsedCount: 3}, ErrCouponExhausted},
		{"pasado de uso", Coupon{IsActive: true, MaxUses: intPtr(3), UsedCount: 4}, ErrCouponExhausted},
		{"último uso disponible", Coupon{IsActive: true, MaxUses: intPtr(3), UsedCount: 2}, nil},
		{"max_uses cero", Coupon{IsActive: true, MaxUses: intPtr(0)}, ErrCouponExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.coupon.Usability(now), tt.want)
			if tt.want == nil {
				assert.NoError(t, tt.coupon.Usability(now))
			}
			assert.Equal(t, tt.want == nil, tt.coupon.CanUse(now))
		})
	}
}

func TestCouponCheckMinimum(t *testing.T) {
	c := Coupon{IsActive: true, MinOrderTotal: dec("100000")}
	assert.ErrorIs(t, c.Check(time.Now(), dec("99999.99")), ErrBelowMinimum)
	assert.NoError(t, c.Check(time.Now(), dec("100000")))

	c.IsActive = false
	assert.ErrorIs(t, c.Check(time.Now(), dec("1")), ErrCouponInactive)
}

func TestCalcDiscountScenarios(t *testing.T) {
	fixed := Coupon{Type: CouponFixed, Value: dec("50000"), MinOrderTotal: dec("100000")}
	assert.True(t, fixed.CalcDiscount(dec("80000")).IsZero())
	assert.True(t, fixed.CalcDiscount(dec("150000")).Equal(dec("50000")))

	percent := Coupon{Type: CouponPercent, Value: dec("10")}
	assert.True(t, percent.CalcDiscount(dec("1000000")).Equal(dec("100000")))
}

func TestCalcDiscountBelowMinimumIsZero(t *testing.T) {
	for _, typ := range []CouponType{CouponFixed, CouponPercent} {
		c := Coupon{Type: typ, Value: dec("30"), MinOrderTotal: dec("500")}
		for _, s := range []string{"0", "1", "250.5", "499.99"} {
			assert.True(t, c.CalcDiscount(dec(s)).IsZero(), "%s subtotal %s", typ, s)
		}
	}
}

func TestCalcDiscountPercent(t *testing.T) {
	tests := []struct {
		value    string
		subtotal string
		want     string
	}{
		{"10", "199.99", "20"},     // 19.999 -> 20.00
		{"15", "33.33", "5"},       // 4.9995 -> 5.00
		{"12.5", "0.1", "0.01"},    // 0.0125 -> 0.01
		{"33", "10.05", "3.32"},    // 3.3165 -> 3.32
		{"50", "0.01", "0.01"},     // 0.005 -> 0.01, lejos de cero
		{"250", "80", "80"},        // más de 100% se recorta al subtotal
		{"-20", "80", "0"},         // negativo cuenta como 0
		{"100", "1234.56", "1234.56"},
	}
	for _, tt := range tests {
		c := Coupon{Type: CouponPercent, Value: dec(tt.value)}
		got := c.CalcDiscount(dec(tt.subtotal))
		assert.True(t, got.Equal(dec(tt.want)), "value=%s subtotal=%s got=%s want=%s", tt.value, tt.subtotal, got, tt.want)
	}
}

func TestCalcDiscountPercentMatchesFormula(t *testing.T) {
	for _, v := range []string{"0", "1", "7.5", "10", "99", "150"} {
		for _, s := range []string{"0", "0.99", "10", "59.90", "1000", "123456.78"} {
			c := Coupon{Type: CouponPercent, Value: dec(v)}
			sub := dec(s)
			want := decimal.Min(sub, sub.Mul(decimal.Max(decimal.Zero, dec(v))).Div(hundred).Round(2))
			assert.True(t, c.CalcDiscount(sub).Equal(want), "v=%s s=%s", v, s)
		}
	}
}

func TestCalcDiscountPercentMaxDiscount(t *testing.T) {
	limit := dec("25")
	c := Coupon{Type: CouponPercent, Value: dec("50"), MaxDiscount: &limit}
	assert.True(t, c.CalcDiscount(dec("100")).Equal(limit))
	assert.True(t, c.CalcDiscount(dec("20")).Equal(dec("10")))

	// no afecta a fixed
	f := Coupon{Type: CouponFixed, Value: dec("40"), MaxDiscount: &limit}
	assert.True(t, f.CalcDiscount(dec("100")).Equal(dec("40")))
}

func TestCalcDiscountFixed(t *testing.T) {
	c := Coupon{Type: CouponFixed, Value: dec("20")}
	assert.True(t, c.CalcDiscount(dec("100")).Equal(dec("20")))
	assert.True(t, c.CalcDiscount(dec("15")).Equal(dec("15")))
	assert.True(t, c.CalcDiscount(dec("0")).IsZero())
}

func TestCalcDiscountFixedNegativeValueFlowsThrough(t *testing.T) {
	c := Coupon{Type: CouponFixed, Value: dec("-5")}
	got := c.CalcDiscount(dec("100"))
	assert.True(t, got.Equal(dec("-5")), "got %s", got)
}

func TestCalcDiscountUnknownType(t *testing.T) {
	c := Coupon{Type: "bogus", Value: dec("10")}
	assert.True(t, c.CalcDiscount(dec("100")).IsZero())
}
