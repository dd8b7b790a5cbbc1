package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/outbox"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainavailability "quietsummit/internal/domain/availability"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
)

const updateStatusKey = "booking.update_status"

type UpdateStatusCommand struct {
	BookingID string
	NewStatus string
	Principal policies.Principal
}

func (c UpdateStatusCommand) Key() string { return updateStatusKey }

// UpdateStatusHandler drives the enumerated transitions pending->confirmed
// and confirmed->completed. Cancellation has its own command. Confirming a
// booking that paid late re-checks the calendar and registers the
// reservation block if none exists yet, so a pending booking can never
// double-confirm over someone else's dates.
type UpdateStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (dto.BookingView, error) {
	target, ok := domainbooking.ParseState(cmd.NewStatus)
	if !ok {
		return dto.BookingView{}, domainbooking.ErrInvalidTransition
	}

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
	if err := policies.Authorize(cmd.Principal, string(bk.HostID)); err != nil {
		return dto.BookingView{}, err
	}

	now := time.Now().UTC()
	switch target {
	case domainbooking.StateConfirmed:
		if err := bk.Confirm("", "", now); err != nil {
			return dto.BookingView{}, err
		}
		cal, err := unit.Availability().Calendar(ctx, bk.ListingID)
		if err != nil {
			return dto.BookingView{}, err
		}
		reserved := cal.ReservedFor(string(bk.ID))
		if !reserved {
			if _, err := cal.Reserve(domainavailability.BlockID(uuid.NewString()), bk.Range, string(bk.ID), now); err != nil {
				if errors.Is(err, domainavailability.ErrConflict) {
					return dto.BookingView{}, ErrUnavailable
				}
				return dto.BookingView{}, err
			}
		}
		// Consume the coupon before the calendar write so an exhausted
		// coupon fails the confirm without leaving a reservation block.
		if bk.Coupon != nil {
			if err := unit.Coupons().ConsumeUse(ctx, domaincoupon.CouponID(bk.Coupon.CouponID)); err != nil {
				return dto.BookingView{}, err
			}
		}
		if !reserved {
			if err := unit.Availability().Save(ctx, cal); err != nil {
				if errors.Is(err, domainavailability.ErrConcurrentUpdate) {
					return dto.BookingView{}, ErrUnavailable
				}
				return dto.BookingView{}, err
			}
		}
	case domainbooking.StateCompleted:
		if err := bk.Complete(now); err != nil {
			return dto.BookingView{}, err
		}
	default:
		return dto.BookingView{}, domainbooking.ErrInvalidTransition
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

func (h *UpdateStatusHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UpdateStatusCommand, dto.BookingView] = (*UpdateStatusHandler)(nil)
