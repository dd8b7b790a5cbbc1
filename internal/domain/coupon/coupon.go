package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/money"
)

var (
	ErrInvalidCode       = errors.New("coupon: code not recognized")
	ErrExpired           = errors.New("coupon: outside validity window")
	ErrUsageLimitReached = errors.New("coupon: usage limit reached")
	ErrBelowMinPurchase  = errors.New("coupon: subtotal below minimum purchase")
	ErrNotApplicable     = errors.New("coupon: not applicable to this listing")
	ErrInvalidValue      = errors.New("coupon: discount value must be positive")
)

type CouponID string

type DiscountType string

const (
	TypePercentage DiscountType = "percentage"
	TypeFixed      DiscountType = "fixed"
)

// Coupon is a discount code. Codes are unique case-insensitively; the stored
// form is always the normalized uppercase one.
type Coupon struct {
	ID          CouponID
	Code        string
	Type        DiscountType
	Value       int64
	MinPurchase money.Money
	MaxDiscount money.Money
	ValidFrom   time.Time
	ValidUntil  time.Time
	UsageLimit  int
	UsedCount   int
	Active      bool
	// Listings restricts applicability; empty means any listing.
	Listings  []listings.ListingID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeCode maps user input to the canonical stored form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CreateParams struct {
	ID          CouponID
	Code        string
	Type        DiscountType
	Value       int64
	MinPurchase money.Money
	MaxDiscount money.Money
	ValidFrom   time.Time
	ValidUntil  time.Time
	UsageLimit  int
	Listings    []listings.ListingID
	Now         time.Time
}

func New(params CreateParams) (*Coupon, error) {
	code := NormalizeCode(params.Code)
	if code == "" {
		return nil, ErrInvalidCode
	}
	if params.Value <= 0 {
		return nil, ErrInvalidValue
	}
	if params.Type == TypePercentage && params.Value > 100 {
		return nil, fmt.Errorf("%w: percentage above 100", ErrInvalidValue)
	}
	now := params.Now.UTC()
	return &Coupon{
		ID:          params.ID,
		Code:        code,
		Type:        params.Type,
		Value:       params.Value,
		MinPurchase: params.MinPurchase,
		MaxDiscount: params.MaxDiscount,
		ValidFrom:   params.ValidFrom.UTC(),
		ValidUntil:  params.ValidUntil.UTC(),
		UsageLimit:  params.UsageLimit,
		Listings:    append([]listings.ListingID(nil), params.Listings...),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DiscountFor validates the coupon against a listing and subtotal and
// computes the discount. Percentage discounts round half-up and clamp to
// MaxDiscount; fixed discounts never exceed the subtotal. The validity
// window is inclusive at both ends. No usage is consumed here.
func (c *Coupon) DiscountFor(listingID listings.ListingID, subtotal money.Money, now time.Time) (money.Money, error) {
	if c == nil || !c.Active {
		return money.Money{}, ErrInvalidCode
	}
	now = now.UTC()
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return money.Money{}, ErrExpired
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return money.Money{}, ErrUsageLimitReached
	}
	if !c.MinPurchase.IsZero() && subtotal.Amount < c.MinPurchase.Amount {
		return money.Money{}, fmt.Errorf("%w: need at least %d", ErrBelowMinPurchase, c.MinPurchase.Amount)
	}
	if len(c.Listings) > 0 && !c.appliesTo(listingID) {
		return money.Money{}, ErrNotApplicable
	}

	switch c.Type {
	case TypePercentage:
		discount := subtotal.Percent(c.Value)
		if !c.MaxDiscount.IsZero() {
			clamped, err := money.Min(discount, c.MaxDiscount)
			if err != nil {
				return money.Money{}, err
			}
			discount = clamped
		}
		return discount, nil
	case TypeFixed:
		discount := money.Money{Amount: c.Value, Currency: subtotal.Currency}
		return money.Min(discount, subtotal)
	default:
		return money.Money{}, ErrInvalidCode
	}
}

func (c *Coupon) appliesTo(listingID listings.ListingID) bool {
	for _, id := range c.Listings {
		if id == listingID {
			return true
		}
	}
	return false
}

// Repository persists coupons. ConsumeUse performs the usage-count increment
// as one atomic conditional operation: when a limit is set and already
// exhausted it fails with ErrUsageLimitReached instead of incrementing, so
// concurrent confirmations cannot race past the cap.
type Repository interface {
	ByCode(ctx context.Context, code string) (*Coupon, error)
	Save(ctx context.Context, c *Coupon) error
	ConsumeUse(ctx context.Context, id CouponID) error
}
