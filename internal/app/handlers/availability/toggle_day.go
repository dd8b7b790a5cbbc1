package availability

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainavailability "quietsummit/internal/domain/availability"
	"quietsummit/internal/domain/listings"
)

const toggleDayKey = "availability.toggle_day"

type ToggleDayCommand struct {
	ListingID string
	Day       time.Time
	Reason    string
	Principal policies.Principal
}

func (c ToggleDayCommand) Key() string { return toggleDayKey }

type ToggleDayResult struct {
	Day     time.Time `json:"day"`
	Blocked bool      `json:"blocked"`
}

// ToggleDayHandler flips one day between blocked and available, the
// single-tap interaction of a host calendar grid.
type ToggleDayHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *ToggleDayHandler) Handle(ctx context.Context, cmd ToggleDayCommand) (ToggleDayResult, error) {
	listingID := strings.TrimSpace(cmd.ListingID)
	if listingID == "" {
		return ToggleDayResult{}, invalidField("listing_id", "required")
	}
	if cmd.Day.IsZero() {
		return ToggleDayResult{}, invalidField("day", "required")
	}
	reason := domainavailability.ReasonPersonal
	if cmd.Reason != "" {
		parsed, ok := domainavailability.ParseReason(cmd.Reason)
		if !ok {
			return ToggleDayResult{}, invalidField("reason", "must be maintenance, personal, or other")
		}
		reason = parsed
	}

	unit, ctx, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return ToggleDayResult{}, err
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
		return ToggleDayResult{}, err
	}
	if err := policies.Authorize(cmd.Principal, string(item.Owner())); err != nil {
		return ToggleDayResult{}, err
	}

	cal, err := unit.Availability().Calendar(ctx, item.ReservableID())
	if err != nil {
		return ToggleDayResult{}, err
	}
	blocked, err := cal.ToggleDay(domainavailability.BlockID(uuid.NewString()), cmd.Day, reason, h.now())
	if err != nil {
		return ToggleDayResult{}, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return ToggleDayResult{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return ToggleDayResult{}, err
		}
		committed = true
	}
	return ToggleDayResult{Day: cmd.Day, Blocked: blocked}, nil
}

func (h *ToggleDayHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ToggleDayCommand, ToggleDayResult] = (*ToggleDayHandler)(nil)
