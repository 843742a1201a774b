package cache

import (
	"testing"
	"time"

	"fashion-order-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponCacheCaseInsensitive(t *testing.T) {
	c := NewCouponCache(time.Minute)
	c.Set(&model.Coupon{Code: "WELCOME", UsedCount: 3})

	got, ok := c.Get(" welcome ")
	require.True(t, ok)
	assert.Equal(t, 3, got.UsedCount)

	// modificar la copia no cambia lo guardado
	got.UsedCount = 99
	again, _ := c.Get("WELCOME")
	assert.Equal(t, 3, again.UsedCount)

	c.Invalidate("welcome")
	_, ok = c.Get("WELCOME")
	assert.False(t, ok)
}

func TestCouponCacheExpires(t *testing.T) {
	c := NewCouponCache(20 * time.Millisecond)
	c.Set(&model.Coupon{Code: "FLASH"})
	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get("FLASH")
	assert.False(t, ok)
}

func TestCouponCacheFlush(t *testing.T) {
	c := NewCouponCache(0)
	c.Set(&model.Coupon{Code: "A"})
	c.Set(&model.Coupon{Code: "B"})
	c.Flush()
	_, ok := c.Get("A")
	assert.False(t, ok)
}
