package availability

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainavailability "quietsummit/internal/domain/availability"
	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
)

const blockDatesKey = "availability.block"

type BlockDatesCommand struct {
	ListingID string
	From      time.Time
	To        time.Time
	Reason    string
	Principal policies.Principal
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

// BlockDatesHandler records a host-managed unavailable interval. Only the
// listing owner or an admin may alter the calendar.
type BlockDatesHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (dto.CalendarBlock, error) {
	listingID := strings.TrimSpace(cmd.ListingID)
	if listingID == "" {
		return dto.CalendarBlock{}, invalidField("listing_id", "required")
	}
	reason, ok := domainavailability.ParseReason(cmd.Reason)
	if !ok {
		return dto.CalendarBlock{}, invalidField("reason", "must be maintenance, personal, or other")
	}
	dr, err := daterange.New(cmd.From, cmd.To)
	if err != nil {
		return dto.CalendarBlock{}, err
	}

	unit, ctx, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarBlock{}, err
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
		return dto.CalendarBlock{}, err
	}
	if err := policies.Authorize(cmd.Principal, string(item.Owner())); err != nil {
		return dto.CalendarBlock{}, err
	}

	cal, err := unit.Availability().Calendar(ctx, item.ReservableID())
	if err != nil {
		return dto.CalendarBlock{}, err
	}
	block, err := cal.Block(domainavailability.BlockID(uuid.NewString()), dr, reason, h.now())
	if err != nil {
		return dto.CalendarBlock{}, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return dto.CalendarBlock{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.CalendarBlock{}, err
		}
		committed = true
	}
	return dto.CalendarBlock{
		ID:     string(block.ID),
		From:   block.Range.CheckIn,
		To:     block.Range.CheckOut,
		Reason: string(block.Reason),
	}, nil
}

func (h *BlockDatesHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[BlockDatesCommand, dto.CalendarBlock] = (*BlockDatesHandler)(nil)
