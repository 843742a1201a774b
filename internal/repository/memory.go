package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"fashion-order-service/internal/model"
)

// MemoryOrderRepository guarda órdenes en memoria. Se usa con STORE_DRIVER=memory y en tests.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*model.Order)}
}

func (m *MemoryOrderRepository) Save(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		o.History = []model.StatusRecord{
			{Status: o.Step, Timestamp: now, UserID: o.UserID, Reason: "Orden creada", Current: true},
		}
	}
	o.UpdatedAt = now
	m.orders[o.OrderID] = cloneOrder(o)
	return nil
}

func (m *MemoryOrderRepository) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *MemoryOrderRepository) UpdateStatus(_ context.Context, orderID string, from, to model.Step, record model.StatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Step != from {
		return ErrStaleStatus
	}

	now := record.Timestamp.UTC()
	for i := range o.History {
		o.History[i].Current = false
	}
	record.Current = true
	o.History = append(o.History, record)
	o.Step = to
	o.Stamp(to, now)
	o.UpdatedAt = now
	return nil
}

func (m *MemoryOrderRepository) FindAll(_ context.Context) ([]*model.Order, error) {
	return m.filter(func(*model.Order) bool { return true }), nil
}

func (m *MemoryOrderRepository) FindByStatus(_ context.Context, step model.Step) ([]*model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.Step == step }), nil
}

func (m *MemoryOrderRepository) FindByUserID(_ context.Context, userID string) ([]*model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryOrderRepository) filter(keep func(*model.Order) bool) []*model.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderID < out[j].OrderID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.History = append([]model.StatusRecord(nil), o.History...)
	return &c
}

// MemoryCouponRepository es la contraparte en memoria de MongoCouponRepository.
type MemoryCouponRepository struct {
	mu      sync.Mutex
	coupons map[string]*model.Coupon
}

func NewMemoryCouponRepository() *MemoryCouponRepository {
	return &MemoryCouponRepository{coupons: make(map[string]*model.Coupon)}
}

func (m *MemoryCouponRepository) Create(_ context.Context, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.Code = model.NormalizeCouponCode(c.Code)
	if _, ok := m.coupons[c.Code]; ok {
		return ErrDuplicateCode
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	m.coupons[c.Code] = cloneCoupon(c)
	return nil
}

func (m *MemoryCouponRepository) FindByCode(_ context.Context, code string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[model.NormalizeCouponCode(code)]
	if !ok {
		return nil, ErrCouponNotFound
	}
	return cloneCoupon(c), nil
}

func (m *MemoryCouponRepository) Update(_ context.Context, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.coupons[model.NormalizeCouponCode(c.Code)]
	if !ok {
		return ErrCouponNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	cur.Description = c.Description
	cur.Type = c.Type
	cur.Value = c.Value
	cur.MinOrderTotal = c.MinOrderTotal
	cur.MaxDiscount = c.MaxDiscount
	cur.MaxUses = c.MaxUses
	cur.ExpiresAt = c.ExpiresAt
	cur.IsActive = c.IsActive
	cur.UpdatedAt = c.UpdatedAt
	return nil
}

func (m *MemoryCouponRepository) SetActive(_ context.Context, code string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[model.NormalizeCouponCode(code)]
	if !ok {
		return ErrCouponNotFound
	}
	c.IsActive = active
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryCouponRepository) List(_ context.Context) ([]*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		out = append(out, cloneCoupon(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryCouponRepository) Redeem(_ context.Context, code string, now time.Time) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[model.NormalizeCouponCode(code)]
	if !ok {
		return nil, ErrCouponNotFound
	}
	if !c.CanUse(now) {
		return nil, ErrNotRedeemable
	}
	c.UsedCount++
	c.UpdatedAt = now.UTC()
	return cloneCoupon(c), nil
}

func (m *MemoryCouponRepository) Release(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[model.NormalizeCouponCode(code)]
	if !ok || c.UsedCount == 0 {
		return ErrCouponNotFound
	}
	c.UsedCount--
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneCoupon(c *model.Coupon) *model.Coupon {
	out := *c
	if c.MaxUses != nil {
		n := *c.MaxUses
		out.MaxUses = &n
	}
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		out.ExpiresAt = &t
	}
	if c.MaxDiscount != nil {
		d := *c.MaxDiscount
		out.MaxDiscount = &d
	}
	return &out
}
