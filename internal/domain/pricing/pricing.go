package pricing

import (
	"context"
	"errors"
	"fmt"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

var (
	ErrUnknownAddOn  = errors.New("pricing: unknown add-on")
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
)

// Quote is the deterministic price breakdown for a reservation request.
type Quote struct {
	BasePrice   money.Money
	AddOnsTotal money.Money
	Subtotal    money.Money
	Taxes       money.Money
	Total       money.Money
	Travelers   int
	Nights      int
}

type QuoteInput struct {
	Reservable listings.Reservable
	Range      daterange.DateRange
	Travelers  int
	AddOns     []string
}

// Calculator produces quotes; the engine below is the only implementation
// but the port keeps the application layer testable.
type Calculator interface {
	Quote(ctx context.Context, input QuoteInput) (Quote, error)
}

// Engine computes quotes from a fixed add-on price table and a tax rate in
// basis points. All rounding is half-up via money.
type Engine struct {
	TaxBasisPoints int64
	AddOnPrices    map[string]money.Money
	Currency       string
}

// DefaultAddOns is the catalogue offered at checkout.
func DefaultAddOns(currency string) map[string]money.Money {
	return map[string]money.Money{
		"airport_pickup":   money.Must(120000, currency),
		"breakfast":        money.Must(45000, currency),
		"late_checkout":    money.Must(80000, currency),
		"travel_insurance": money.Must(150000, currency),
	}
}

func (e Engine) Quote(ctx context.Context, input QuoteInput) (Quote, error) {
	if e.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}
	if input.Travelers <= 0 {
		return Quote{}, errors.New("pricing: travelers must be positive")
	}
	if input.Reservable == nil {
		return Quote{}, listings.ErrListingNotFound
	}
	rate := input.Reservable.RatePerTraveler()
	if rate.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}

	base := rate.Multiply(int64(input.Travelers))
	addOns := money.Money{Amount: 0, Currency: rate.Currency}
	for _, name := range input.AddOns {
		price, ok := e.AddOnPrices[name]
		if !ok {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownAddOn, name)
		}
		sum, err := addOns.Add(price)
		if err != nil {
			return Quote{}, err
		}
		addOns = sum
	}
	subtotal, err := base.Add(addOns)
	if err != nil {
		return Quote{}, err
	}
	taxes := subtotal.BasisPoints(e.TaxBasisPoints)
	total, err := subtotal.Add(taxes)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		BasePrice:   base,
		AddOnsTotal: addOns,
		Subtotal:    subtotal,
		Taxes:       taxes,
		Total:       total,
		Travelers:   input.Travelers,
		Nights:      input.Range.Nights(),
	}, nil
}

var _ Calculator = Engine{}
