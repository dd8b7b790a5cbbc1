package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/middleware"
	"quietsummit/internal/app/outbox"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainavailability "quietsummit/internal/domain/availability"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
	domainlistings "quietsummit/internal/domain/listings"
	domainpayment "quietsummit/internal/domain/payment"
	domainrange "quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

const createReservationKey = "booking.create"

type PaymentProofInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

type CreateReservationCommand struct {
	CommandID       string
	TravelerID      string
	ListingID       string
	CheckIn         time.Time
	CheckOut        time.Time
	Travelers       int
	AddOns          []string
	CouponCode      string
	Payment         *PaymentProofInput
	IdempotencyKeyV string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &CreateReservationResult{} }

type CreateReservationResult struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Subtotal      int64  `json:"subtotal"`
	Discount      int64  `json:"discount"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
}

// CreateReservationHandler runs the whole reservation sequence: validate,
// consult the calendar, quote, apply the coupon, verify payment, persist and
// (for confirmed bookings) hold the calendar. A failed or absent payment
// proof degrades to a pending unpaid booking instead of rejecting the
// request; the client can retry payment against the same booking.
type CreateReservationHandler struct {
	UoWFactory    uow.UoWFactory
	Pricing       policies.PricingPort
	Gateway       policies.GatewayPort
	GatewaySecret string
	Outbox        outbox.Outbox
	Encoder       outbox.EventEncoder
	Logger        *slog.Logger
}

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*CreateReservationResult, error) {
	if h.UoWFactory == nil {
		return nil, ErrUnitOfWorkRequired
	}
	unit, ctx, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := time.Now().UTC()

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, invalidField("date_range", "check-out must be after check-in")
	}
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, invalidField("check_in", "date is in the past")
	}
	if cmd.Travelers <= 0 {
		return nil, invalidField("travelers", "must be positive")
	}

	item, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !item.Bookable() {
		return nil, domainlistings.ErrNotBookable
	}
	if cmd.Travelers > item.Capacity() {
		return nil, invalidField("travelers", "exceeds listing capacity")
	}
	stay, err := item.StayRange(dr)
	if err != nil {
		return nil, err
	}

	cal, err := unit.Availability().Calendar(ctx, item.ReservableID())
	if err != nil {
		return nil, err
	}
	if !cal.IsAvailable(stay) {
		return nil, ErrUnavailable
	}

	quote, err := h.Pricing.Quote(ctx, item, stay, cmd.Travelers, cmd.AddOns)
	if err != nil {
		return nil, err
	}

	charges := domainbooking.Charges{
		Subtotal: quote.Total,
		Discount: money.Money{Amount: 0, Currency: quote.Total.Currency},
		Total:    quote.Total,
	}
	var snapshot *domainbooking.CouponSnapshot
	var appliedCoupon *domaincoupon.Coupon
	if cmd.CouponCode != "" {
		appliedCoupon, err = unit.Coupons().ByCode(ctx, cmd.CouponCode)
		if err != nil {
			return nil, err
		}
		discount, err := appliedCoupon.DiscountFor(item.ReservableID(), quote.Subtotal, now)
		if err != nil {
			return nil, err
		}
		total, err := charges.Subtotal.Sub(discount)
		if err != nil {
			return nil, err
		}
		charges.Discount = discount
		charges.Total = total
		snapshot = &domainbooking.CouponSnapshot{
			CouponID: string(appliedCoupon.ID),
			Code:     appliedCoupon.Code,
			Discount: discount,
		}
	}

	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		TravelerID: cmd.TravelerID,
		Reservable: item,
		Range:      stay,
		Travelers:  cmd.Travelers,
		AddOns:     cmd.AddOns,
		Charges:    charges,
		Coupon:     snapshot,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	// A verified proof confirms the booking and takes the calendar. Anything
	// else, including a signature mismatch, leaves it pending and unpaid so
	// the client can retry payment; the request itself never fails here.
	if cmd.Payment != nil {
		proof := domainpayment.Proof{
			OrderID:   cmd.Payment.OrderID,
			PaymentID: cmd.Payment.PaymentID,
			Signature: cmd.Payment.Signature,
		}
		if domainpayment.VerifySignature(proof.OrderID, proof.PaymentID, proof.Signature, h.GatewaySecret) {
			if err := bk.Confirm(proof.OrderID, proof.PaymentID, now); err != nil {
				return nil, err
			}
			if _, err := cal.Reserve(domainavailability.BlockID(uuid.NewString()), stay, string(bk.ID), now); err != nil {
				if errors.Is(err, domainavailability.ErrConflict) {
					return nil, ErrUnavailable
				}
				return nil, err
			}
			// Consume the coupon before persisting the calendar. A race
			// loser on the usage limit must bail out before the reservation
			// block is written, or the dates stay held by a booking that
			// never existed.
			if appliedCoupon != nil {
				if err := unit.Coupons().ConsumeUse(ctx, appliedCoupon.ID); err != nil {
					return nil, err
				}
			}
			if err := unit.Availability().Save(ctx, cal); err != nil {
				if errors.Is(err, domainavailability.ErrConcurrentUpdate) {
					return nil, ErrUnavailable
				}
				return nil, err
			}
			h.fetchConfirmation(ctx, proof.PaymentID)
		} else if !proof.Empty() && h.Logger != nil {
			h.Logger.Warn("payment signature mismatch, booking left pending",
				"booking_id", bk.ID, "gateway_order_id", proof.OrderID)
		}
	}

	if err := unit.Booking().Save(ctx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateReservationResult{
		BookingID:     string(bk.ID),
		Status:        string(bk.State),
		PaymentStatus: string(bk.Payment.Status),
		Subtotal:      bk.Charges.Subtotal.Amount,
		Discount:      bk.Charges.Discount.Amount,
		Total:         bk.Charges.Total.Amount,
		Currency:      bk.Charges.Total.Currency,
	}, nil
}

// fetchConfirmation enriches logs with the gateway's own capture record.
// The gateway read is non-authoritative; any failure is swallowed.
func (h *CreateReservationHandler) fetchConfirmation(ctx context.Context, paymentID string) {
	if h.Gateway == nil {
		return
	}
	confirmation, err := h.Gateway.Confirmation(ctx, paymentID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("gateway confirmation fetch failed", "payment_id", paymentID, "error", err)
		}
		return
	}
	if h.Logger != nil {
		h.Logger.Debug("gateway confirmation",
			"payment_id", confirmation.PaymentID, "method", confirmation.Method, "amount", confirmation.Amount.Amount)
	}
}

func (h *CreateReservationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateReservationCommand, *CreateReservationResult] = (*CreateReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateReservationCommand)(nil)
