package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/money"
)

var (
	validFrom  = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	validUntil = time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	checkTime  = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
)

func percentageCoupon(t *testing.T) *Coupon {
	t.Helper()
	c, err := New(CreateParams{
		ID:          "coupon-1",
		Code:        "save10",
		Type:        TypePercentage,
		Value:       10,
		MaxDiscount: money.Must(2000, "INR"),
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		UsageLimit:  100,
		Now:         validFrom,
	})
	require.NoError(t, err)
	return c
}

func TestNewNormalizesCode(t *testing.T) {
	c := percentageCoupon(t)
	require.Equal(t, "SAVE10", c.Code)
	require.True(t, c.Active)

	_, err := New(CreateParams{Code: "  ", Type: TypePercentage, Value: 10, Now: validFrom})
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = New(CreateParams{Code: "BAD", Type: TypePercentage, Value: 150, Now: validFrom})
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = New(CreateParams{Code: "BAD", Type: TypeFixed, Value: 0, Now: validFrom})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestPercentageDiscountClampsToMaxDiscount(t *testing.T) {
	c := percentageCoupon(t)

	// 10% of 15000 stays under the 2000 cap
	discount, err := c.DiscountFor("listing-1", money.Must(15000, "INR"), checkTime)
	require.NoError(t, err)
	require.Equal(t, int64(1500), discount.Amount)

	// 10% of 50000 would be 5000; clamped
	discount, err = c.DiscountFor("listing-1", money.Must(50000, "INR"), checkTime)
	require.NoError(t, err)
	require.Equal(t, int64(2000), discount.Amount)
}

func TestFixedDiscountNeverExceedsSubtotal(t *testing.T) {
	c, err := New(CreateParams{
		ID:         "coupon-2",
		Code:       "FLAT500",
		Type:       TypeFixed,
		Value:      500,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
		Now:        validFrom,
	})
	require.NoError(t, err)

	discount, err := c.DiscountFor("listing-1", money.Must(300, "INR"), checkTime)
	require.NoError(t, err)
	require.Equal(t, int64(300), discount.Amount)

	discount, err = c.DiscountFor("listing-1", money.Must(10000, "INR"), checkTime)
	require.NoError(t, err)
	require.Equal(t, int64(500), discount.Amount)
}

func TestValidityWindowIsInclusive(t *testing.T) {
	c := percentageCoupon(t)

	_, err := c.DiscountFor("listing-1", money.Must(10000, "INR"), validFrom)
	require.NoError(t, err)
	_, err = c.DiscountFor("listing-1", money.Must(10000, "INR"), validUntil)
	require.NoError(t, err)

	_, err = c.DiscountFor("listing-1", money.Must(10000, "INR"), validFrom.Add(-time.Second))
	require.ErrorIs(t, err, ErrExpired)
	_, err = c.DiscountFor("listing-1", money.Must(10000, "INR"), validUntil.Add(time.Second))
	require.ErrorIs(t, err, ErrExpired)
}

func TestMinPurchaseThreshold(t *testing.T) {
	c := percentageCoupon(t)
	c.MinPurchase = money.Must(20000, "INR")

	_, err := c.DiscountFor("listing-1", money.Must(19999, "INR"), checkTime)
	require.ErrorIs(t, err, ErrBelowMinPurchase)

	_, err = c.DiscountFor("listing-1", money.Must(20000, "INR"), checkTime)
	require.NoError(t, err)
}

func TestListingRestriction(t *testing.T) {
	c := percentageCoupon(t)
	c.Listings = []listings.ListingID{"listing-9"}

	_, err := c.DiscountFor("listing-1", money.Must(10000, "INR"), checkTime)
	require.ErrorIs(t, err, ErrNotApplicable)

	_, err = c.DiscountFor("listing-9", money.Must(10000, "INR"), checkTime)
	require.NoError(t, err)
}

func TestUsageLimitAndInactive(t *testing.T) {
	c := percentageCoupon(t)
	c.UsedCount = c.UsageLimit

	_, err := c.DiscountFor("listing-1", money.Must(10000, "INR"), checkTime)
	require.ErrorIs(t, err, ErrUsageLimitReached)

	c = percentageCoupon(t)
	c.Active = false
	_, err = c.DiscountFor("listing-1", money.Must(10000, "INR"), checkTime)
	require.ErrorIs(t, err, ErrInvalidCode)

	var missing *Coupon
	_, err = missing.DiscountFor("listing-1", money.Must(10000, "INR"), checkTime)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestNormalizeCode(t *testing.T) {
	require.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	require.Equal(t, "", NormalizeCode("   "))
}
