package cache

import (
	"time"

	"fashion-order-service/internal/model"

	gocache "github.com/patrickmn/go-cache"
)

// CouponCache guarda cupones por código normalizado con TTL.
// Lo que sale de acá es una copia; used_count puede estar atrasado hasta que venza.
type CouponCache struct {
	backend *gocache.Cache
	ttl     time.Duration
}

func NewCouponCache(ttl time.Duration) *CouponCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CouponCache{
		backend: gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

func (c *CouponCache) Get(code string) (*model.Coupon, bool) {
	v, ok := c.backend.Get(model.NormalizeCouponCode(code))
	if !ok {
		return nil, false
	}
	cp := *v.(*model.Coupon)
	return &cp, true
}

func (c *CouponCache) Set(coupon *model.Coupon) {
	cp := *coupon
	c.backend.Set(model.NormalizeCouponCode(coupon.Code), &cp, c.ttl)
}

func (c *CouponCache) Invalidate(code string) {
	c.backend.Delete(model.NormalizeCouponCode(code))
}

func (c *CouponCache) Flush() {
	c.backend.Flush()
}
