package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domaincoupon "quietsummit/internal/domain/coupon"
	"quietsummit/internal/domain/shared/money"
)

func seedCoupon(t *testing.T, repo *CouponRepository, limit int) *domaincoupon.Coupon {
	t.Helper()
	now := time.Now().UTC()
	c, err := domaincoupon.New(domaincoupon.CreateParams{
		ID:          "coupon-1",
		Code:        "welcome20",
		Type:        domaincoupon.TypeFixed,
		Value:       2000,
		MinPurchase: money.Must(0, "INR"),
		MaxDiscount: money.Must(0, "INR"),
		ValidFrom:   now.AddDate(0, 0, -1),
		ValidUntil:  now.AddDate(0, 1, 0),
		UsageLimit:  limit,
		Now:         now,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestByCodeIsCaseInsensitive(t *testing.T) {
	repo := NewCouponRepository()
	seedCoupon(t, repo, 10)

	for _, lookup := range []string{"WELCOME20", "welcome20", "  Welcome20 "} {
		c, err := repo.ByCode(context.Background(), lookup)
		require.NoError(t, err)
		require.Equal(t, "WELCOME20", c.Code)
	}

	_, err := repo.ByCode(context.Background(), "missing")
	require.ErrorIs(t, err, domaincoupon.ErrInvalidCode)
}

func TestByCodeReturnsCopy(t *testing.T) {
	repo := NewCouponRepository()
	seedCoupon(t, repo, 10)

	c, err := repo.ByCode(context.Background(), "WELCOME20")
	require.NoError(t, err)
	c.UsedCount = 99

	again, err := repo.ByCode(context.Background(), "WELCOME20")
	require.NoError(t, err)
	require.Equal(t, 0, again.UsedCount)
}

func TestConsumeUseEnforcesLimit(t *testing.T) {
	repo := NewCouponRepository()
	seedCoupon(t, repo, 2)
	ctx := context.Background()

	require.NoError(t, repo.ConsumeUse(ctx, "coupon-1"))
	require.NoError(t, repo.ConsumeUse(ctx, "coupon-1"))
	require.ErrorIs(t, repo.ConsumeUse(ctx, "coupon-1"), domaincoupon.ErrUsageLimitReached)

	require.ErrorIs(t, repo.ConsumeUse(ctx, "coupon-unknown"), ErrCouponNotFound)
}

func TestConsumeUseUnlimitedWhenNoLimitSet(t *testing.T) {
	repo := NewCouponRepository()
	seedCoupon(t, repo, 0)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.ConsumeUse(ctx, "coupon-1"))
	}
}

// Concurrent consumers must never push UsedCount past the limit.
func TestConsumeUseConcurrentRespectsLimit(t *testing.T) {
	repo := NewCouponRepository()
	const limit = 10
	seedCoupon(t, repo, limit)
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	var succeeded atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.ConsumeUse(ctx, "coupon-1"); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(limit), succeeded.Load())

	stored, err := repo.ByCode(ctx, "WELCOME20")
	require.NoError(t, err)
	require.Equal(t, limit, stored.UsedCount)
}
