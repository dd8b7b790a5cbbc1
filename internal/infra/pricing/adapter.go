package pricing

import (
	"context"

	"quietsummit/internal/app/policies"
	domainlistings "quietsummit/internal/domain/listings"
	domainpricing "quietsummit/internal/domain/pricing"
	domainrange "quietsummit/internal/domain/shared/daterange"
)

// Adapter exposes the domain calculator through the application-layer port.
type Adapter struct {
	Calculator domainpricing.Calculator
}

func (a Adapter) Quote(ctx context.Context, item domainlistings.Reservable, dr domainrange.DateRange, travelers int, addOns []string) (domainpricing.Quote, error) {
	return a.Calculator.Quote(ctx, domainpricing.QuoteInput{
		Reservable: item,
		Range:      dr,
		Travelers:  travelers,
		AddOns:     addOns,
	})
}

var _ policies.PricingPort = Adapter{}
