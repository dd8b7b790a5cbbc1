package booking

import (
	"context"
	"log/slog"
	"time"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/outbox"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainbooking "quietsummit/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
	Principal policies.Principal
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// CancelBookingHandler terminates a booking and releases its reservation
// block. Coupon usage is deliberately not handed back: the usage count
// reflects confirmed bookings, which discourages cancel-and-reapply abuse.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (dto.BookingView, error) {
	unit, ctx, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingView{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	bk, err := unit.Booking().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	if err := policies.AuthorizeAny(cmd.Principal, bk.TravelerID, string(bk.HostID)); err != nil {
		return dto.BookingView{}, err
	}

	wasConfirmed := bk.State == domainbooking.StateConfirmed
	if err := bk.Cancel(cmd.Reason, time.Now().UTC()); err != nil {
		return dto.BookingView{}, err
	}

	if wasConfirmed {
		cal, err := unit.Availability().Calendar(ctx, bk.ListingID)
		if err != nil {
			return dto.BookingView{}, err
		}
		if cal.Release(string(bk.ID)) {
			if err := unit.Availability().Save(ctx, cal); err != nil {
				return dto.BookingView{}, err
			}
		} else if h.Logger != nil {
			h.Logger.Warn("no reservation block to release", "booking_id", bk.ID, "listing_id", bk.ListingID)
		}
	}

	if err := unit.Booking().Save(ctx, bk); err != nil {
		return dto.BookingView{}, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return dto.BookingView{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.BookingView{}, err
		}
		committed = true
	}
	return dto.MapBooking(bk), nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, dto.BookingView] = (*CancelBookingHandler)(nil)
