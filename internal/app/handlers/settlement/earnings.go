package settlement

import (
	"context"

	"quietsummit/internal/app/uow"
	domainbooking "quietsummit/internal/domain/booking"
	domainlistings "quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/money"
)

// hostEarnings sums the charged totals of the host's completed bookings.
// Confirmed but not yet completed stays do not earn; cancellations never do.
func hostEarnings(ctx context.Context, unit uow.UnitOfWork, hostID domainlistings.HostID, currency string) (money.Money, error) {
	items, err := unit.Booking().ListByHost(ctx, hostID)
	if err != nil {
		return money.Money{}, err
	}
	total := money.Money{Amount: 0, Currency: currency}
	for _, b := range items {
		if b.State != domainbooking.StateCompleted {
			continue
		}
		total, err = total.Add(b.Charges.Total)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
