package memory

import (
	"context"
	"errors"
	"sync"

	domaincoupon "quietsummit/internal/domain/coupon"
)

// ErrCouponNotFound is returned when no coupon matches the id.
var ErrCouponNotFound = errors.New("memory: coupon not found")

// CouponRepository stores coupons keyed by normalized code. ConsumeUse holds
// the write lock across check and increment, giving the same atomicity a
// conditional database update would.
type CouponRepository struct {
	mu     sync.RWMutex
	byCode map[string]*domaincoupon.Coupon
	byID   map[domaincoupon.CouponID]*domaincoupon.Coupon
}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{
		byCode: make(map[string]*domaincoupon.Coupon),
		byID:   make(map[domaincoupon.CouponID]*domaincoupon.Coupon),
	}
}

func (r *CouponRepository) ByCode(ctx context.Context, code string) (*domaincoupon.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byCode[domaincoupon.NormalizeCode(code)]
	if !ok {
		return nil, domaincoupon.ErrInvalidCode
	}
	copied := *c
	return &copied, nil
}

func (r *CouponRepository) Save(ctx context.Context, c *domaincoupon.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.byCode[domaincoupon.NormalizeCode(c.Code)] = &copied
	r.byID[c.ID] = &copied
	return nil
}

func (r *CouponRepository) ConsumeUse(ctx context.Context, id domaincoupon.CouponID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return ErrCouponNotFound
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return domaincoupon.ErrUsageLimitReached
	}
	c.UsedCount++
	return nil
}

var _ domaincoupon.Repository = (*CouponRepository)(nil)
