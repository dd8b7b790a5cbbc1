package pricing

import (
	"context"
	"fmt"
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

const quoteKey = "pricing.quote"

// QuoteQuery prices a prospective stay without touching the calendar or
// creating anything. Travelers see the same numbers a reservation would book.
type QuoteQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Travelers int
	AddOns    []string
}

func (q QuoteQuery) Key() string { return quoteKey }

type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    policies.PricingPort
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.QuoteView, error) {
	listingID := strings.TrimSpace(q.ListingID)
	if listingID == "" {
		return dto.QuoteView{}, invalidField("listing_id", "required")
	}
	if q.Travelers <= 0 {
		return dto.QuoteView{}, invalidField("travelers", "must be positive")
	}
	dr, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.QuoteView{}, err
	}

	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.QuoteView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	item, err := unit.Listings().ByID(ctx, listings.ListingID(listingID))
	if err != nil {
		return dto.QuoteView{}, err
	}
	if q.Travelers > item.Capacity() {
		return dto.QuoteView{}, invalidField("travelers", fmt.Sprintf("exceeds capacity of %d", item.Capacity()))
	}
	stay, err := item.StayRange(dr)
	if err != nil {
		return dto.QuoteView{}, err
	}
	quote, err := h.Pricing.Quote(ctx, item, stay, q.Travelers, q.AddOns)
	if err != nil {
		return dto.QuoteView{}, err
	}
	return dto.MapQuote(quote), nil
}

var _ queries.Handler[QuoteQuery, dto.QuoteView] = (*QuoteHandler)(nil)
