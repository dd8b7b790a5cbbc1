package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

func quoteListing(t *testing.T, rate int64) *listings.Listing {
	t.Helper()
	item, err := listings.NewListing(listings.CreateListingParams{
		ID:           "listing-1",
		Host:         "host-1",
		Title:        "Hill view suite",
		MaxTravelers: 6,
		Rate:         money.Must(rate, "INR"),
		Now:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return item
}

func quoteRange(t *testing.T) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}

func testEngine() Engine {
	return Engine{
		TaxBasisPoints: 500,
		AddOnPrices:    DefaultAddOns("INR"),
		Currency:       "INR",
	}
}

func TestQuoteBaseAndTaxes(t *testing.T) {
	quote, err := testEngine().Quote(context.Background(), QuoteInput{
		Reservable: quoteListing(t, 15000),
		Range:      quoteRange(t),
		Travelers:  2,
	})
	require.NoError(t, err)

	require.Equal(t, int64(30000), quote.BasePrice.Amount)
	require.Equal(t, int64(0), quote.AddOnsTotal.Amount)
	require.Equal(t, int64(30000), quote.Subtotal.Amount)
	require.Equal(t, int64(1500), quote.Taxes.Amount)
	require.Equal(t, int64(31500), quote.Total.Amount)
	require.Equal(t, 2, quote.Travelers)
	require.Equal(t, 3, quote.Nights)
}

func TestQuoteWithAddOns(t *testing.T) {
	quote, err := testEngine().Quote(context.Background(), QuoteInput{
		Reservable: quoteListing(t, 15000),
		Range:      quoteRange(t),
		Travelers:  2,
		AddOns:     []string{"breakfast", "late_checkout"},
	})
	require.NoError(t, err)

	require.Equal(t, int64(125000), quote.AddOnsTotal.Amount)
	require.Equal(t, int64(155000), quote.Subtotal.Amount)
	require.Equal(t, int64(7750), quote.Taxes.Amount)
	require.Equal(t, int64(162750), quote.Total.Amount)
}

func TestQuoteRejectsUnknownAddOn(t *testing.T) {
	_, err := testEngine().Quote(context.Background(), QuoteInput{
		Reservable: quoteListing(t, 15000),
		Range:      quoteRange(t),
		Travelers:  2,
		AddOns:     []string{"helicopter"},
	})
	require.ErrorIs(t, err, ErrUnknownAddOn)
}

func TestQuoteRejectsInvalidInput(t *testing.T) {
	engine := testEngine()

	_, err := engine.Quote(context.Background(), QuoteInput{Reservable: quoteListing(t, 15000), Range: quoteRange(t), Travelers: 0})
	require.Error(t, err)

	_, err = engine.Quote(context.Background(), QuoteInput{Reservable: nil, Range: quoteRange(t), Travelers: 2})
	require.ErrorIs(t, err, listings.ErrListingNotFound)

	_, err = Engine{TaxBasisPoints: 500}.Quote(context.Background(), QuoteInput{Reservable: quoteListing(t, 15000), Range: quoteRange(t), Travelers: 2})
	require.ErrorIs(t, err, ErrCurrencyUnset)
}

func TestQuoteIsDeterministic(t *testing.T) {
	engine := testEngine()
	input := QuoteInput{
		Reservable: quoteListing(t, 17500),
		Range:      quoteRange(t),
		Travelers:  3,
		AddOns:     []string{"airport_pickup"},
	}
	first, err := engine.Quote(context.Background(), input)
	require.NoError(t, err)
	second, err := engine.Quote(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
