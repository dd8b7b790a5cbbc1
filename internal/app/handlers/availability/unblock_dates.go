package availability

import (
	"context"
	"strings"

	"quietsummit/internal/app/commands"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainavailability "quietsummit/internal/domain/availability"
	"quietsummit/internal/domain/listings"
)

const unblockDatesKey = "availability.unblock"

type UnblockDatesCommand struct {
	ListingID string
	BlockID   string
	Principal policies.Principal
}

func (c UnblockDatesCommand) Key() string { return unblockDatesKey }

// UnblockDatesHandler removes a host-managed block. Reservation blocks are
// refused at the domain level; they go away through cancellation.
type UnblockDatesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (struct{}, error) {
	listingID := strings.TrimSpace(cmd.ListingID)
	if listingID == "" {
		return struct{}{}, invalidField("listing_id", "required")
	}
	if strings.TrimSpace(cmd.BlockID) == "" {
		return struct{}{}, invalidField("block_id", "required")
	}

	unit, ctx, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	item, err := unit.Listings().ByID(ctx, listings.ListingID(listingID))
	if err != nil {
		return struct{}{}, err
	}
	if err := policies.Authorize(cmd.Principal, string(item.Owner())); err != nil {
		return struct{}{}, err
	}

	cal, err := unit.Availability().Calendar(ctx, item.ReservableID())
	if err != nil {
		return struct{}{}, err
	}
	if err := cal.Unblock(domainavailability.BlockID(cmd.BlockID)); err != nil {
		return struct{}{}, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return struct{}{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return struct{}{}, err
		}
		committed = true
	}
	return struct{}{}, nil
}

var _ commands.Handler[UnblockDatesCommand, struct{}] = (*UnblockDatesHandler)(nil)
