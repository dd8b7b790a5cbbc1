package policies

import (
	"context"

	domainlistings "quietsummit/internal/domain/listings"
	domainpayment "quietsummit/internal/domain/payment"
	domainpricing "quietsummit/internal/domain/pricing"
	domainrange "quietsummit/internal/domain/shared/daterange"
)

// PricingPort shields handlers from the pricing engine wiring.
type PricingPort interface {
	Quote(ctx context.Context, item domainlistings.Reservable, dr domainrange.DateRange, travelers int, addOns []string) (domainpricing.Quote, error)
}

// GatewayPort fetches gateway-side confirmation details after a signature
// verified. Read-only and non-authoritative; failures are logged and
// swallowed, never surfaced to the reservation caller.
type GatewayPort = domainpayment.Gateway

// Notification is the payload handed to the external notification
// collaborator.
type Notification struct {
	Template  string
	Recipient string
	Subject   string
	Data      map[string]any
}

// NotifierPort delivers notifications fire-and-forget. Implementations must
// never block the core flow; errors are for logging only.
type NotifierPort interface {
	Send(ctx context.Context, n Notification) error
}
