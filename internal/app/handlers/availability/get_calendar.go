package availability

import (
	"context"
	"strings"
	"time"

	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/queries"
	"quietsummit/internal/app/uow"
	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.get_calendar"

// GetCalendarQuery returns the blocks of one listing. When From/To are set
// the result is limited to blocks intersecting that window.
type GetCalendarQuery struct {
	ListingID string
	From      time.Time
	To        time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	listingID := strings.TrimSpace(q.ListingID)
	if listingID == "" {
		return dto.Calendar{}, invalidField("listing_id", "required")
	}
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	cal, err := unit.Availability().Calendar(ctx, listings.ListingID(listingID))
	if err != nil {
		return dto.Calendar{}, err
	}
	blocks := cal.Blocks
	if !q.From.IsZero() || !q.To.IsZero() {
		window, err := daterange.New(q.From, q.To)
		if err != nil {
			return dto.Calendar{}, invalidField("window", "to must be after from")
		}
		blocks = cal.BlocksWithin(window)
	}
	return dto.MapCalendar(listingID, blocks), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
