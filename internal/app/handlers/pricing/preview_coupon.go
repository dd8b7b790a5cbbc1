package pricing

import (
	"context"
	"strings"
	"time"

	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/queries"
	"quietsummit/internal/app/uow"
	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
)

const previewCouponKey = "pricing.preview_coupon"

// PreviewCouponQuery prices a stay and applies a coupon without consuming a
// use. The discount is computed on the pre-tax subtotal, matching what a
// reservation with the same inputs would charge.
type PreviewCouponQuery struct {
	ListingID  string
	CheckIn    time.Time
	CheckOut   time.Time
	Travelers  int
	AddOns     []string
	CouponCode string
}

func (q PreviewCouponQuery) Key() string { return previewCouponKey }

type PreviewCouponHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    policies.PricingPort
}

func (h *PreviewCouponHandler) Handle(ctx context.Context, q PreviewCouponQuery) (dto.CouponPreview, error) {
	listingID := strings.TrimSpace(q.ListingID)
	if listingID == "" {
		return dto.CouponPreview{}, invalidField("listing_id", "required")
	}
	if strings.TrimSpace(q.CouponCode) == "" {
		return dto.CouponPreview{}, invalidField("coupon_code", "required")
	}
	if q.Travelers <= 0 {
		return dto.CouponPreview{}, invalidField("travelers", "must be positive")
	}
	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.CouponPreview{}, err
	}

	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CouponPreview{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	item, err := unit.Listings().ByID(ctx, listings.ListingID(listingID))
	if err != nil {
		return dto.CouponPreview{}, err
	}
	stay, err := item.StayRange(dr)
	if err != nil {
		return dto.CouponPreview{}, err
	}
	quote, err := h.Pricing.Quote(ctx, item, stay, q.Travelers, q.AddOns)
	if err != nil {
		return dto.CouponPreview{}, err
	}

	cpn, err := unit.Coupons().ByCode(ctx, q.CouponCode)
	if err != nil {
		return dto.CouponPreview{}, err
	}
	discount, err := cpn.DiscountFor(item.ReservableID(), quote.Subtotal, time.Now().UTC())
	if err != nil {
		return dto.CouponPreview{}, err
	}
	payable, err := quote.Total.Sub(discount)
	if err != nil {
		return dto.CouponPreview{}, err
	}

	return dto.CouponPreview{
		Code:     cpn.Code,
		Discount: dto.MapMoney(discount),
		Payable:  dto.MapMoney(payable),
	}, nil
}

var _ queries.Handler[PreviewCouponQuery, dto.CouponPreview] = (*PreviewCouponHandler)(nil)
