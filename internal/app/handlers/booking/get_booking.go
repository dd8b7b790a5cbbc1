package booking

import (
	"context"
	"strings"

	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/queries"
	"quietsummit/internal/app/uow"
	domainbooking "quietsummit/internal/domain/booking"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID string
	Principal policies.Principal
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the booking to its traveler, its host, or an admin.
func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	bookingID := strings.TrimSpace(q.BookingID)
	if bookingID == "" {
		return dto.BookingView{}, invalidField("booking_id", "required")
	}
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bk, err := unit.Booking().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	if err := policies.AuthorizeAny(q.Principal, bk.TravelerID, string(bk.HostID)); err != nil {
		return dto.BookingView{}, err
	}
	return dto.MapBooking(bk), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
