package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/events"
	"quietsummit/internal/domain/shared/money"
)

var (
	ErrInvalidTravelers  = errors.New("booking: travelers count must be positive")
	ErrOverCapacity      = errors.New("booking: travelers exceed listing capacity")
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	ErrAlreadyTerminal   = errors.New("booking: already in a terminal state")
	ErrBookingNotFound   = errors.New("booking: not found")
	ErrChargesMismatch   = errors.New("booking: total must equal subtotal minus discount")
	ErrNegativeDiscount  = errors.New("booking: discount cannot be negative")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCompleted BookingState = "COMPLETED"
	StateCancelled BookingState = "CANCELLED"
)

// ParseState validates an externally supplied state name.
func ParseState(raw string) (BookingState, bool) {
	switch BookingState(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatePending:
		return StatePending, true
	case StateConfirmed:
		return StateConfirmed, true
	case StateCompleted:
		return StateCompleted, true
	case StateCancelled:
		return StateCancelled, true
	default:
		return "", false
	}
}

func (s BookingState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentInfo records verified payment facts for the booking.
type PaymentInfo struct {
	Status           PaymentStatus
	GatewayOrderID   string
	GatewayPaymentID string
	PaidAt           time.Time
}

// CouponSnapshot freezes the applied coupon at booking time. Re-validating
// the coupon later never changes a past booking's recorded discount.
type CouponSnapshot struct {
	CouponID string
	Code     string
	Discount money.Money
}

// Charges carries the commercial breakdown. Total == Subtotal - Discount and
// Discount >= 0 hold for every persisted booking.
type Charges struct {
	Subtotal money.Money
	Discount money.Money
	Total    money.Money
}

func (c Charges) Validate() error {
	if c.Discount.IsNegative() {
		return ErrNegativeDiscount
	}
	expected, err := c.Subtotal.Sub(c.Discount)
	if err != nil {
		return err
	}
	if expected.Amount != c.Total.Amount || expected.Currency != c.Total.Currency {
		return ErrChargesMismatch
	}
	return nil
}

// Booking is the reservation lifecycle record. It is never physically
// deleted; cancellation is a state change so settlement and reviews keep
// their history.
type Booking struct {
	ID         BookingID
	TravelerID string
	ListingID  listings.ListingID
	HostID     listings.HostID
	Kind       listings.Kind
	Range      daterange.DateRange
	Travelers  int
	AddOns     []string
	Charges    Charges
	Coupon     *CouponSnapshot
	State      BookingState
	Payment    PaymentInfo
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type CreateParams struct {
	ID         BookingID
	TravelerID string
	Reservable listings.Reservable
	Range      daterange.DateRange
	Travelers  int
	AddOns     []string
	Charges    Charges
	Coupon     *CouponSnapshot
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Travelers <= 0 {
		return nil, ErrInvalidTravelers
	}
	if params.TravelerID == "" {
		return nil, errors.New("booking: traveler id required")
	}
	if params.Reservable == nil {
		return nil, listings.ErrListingNotFound
	}
	if params.Travelers > params.Reservable.Capacity() {
		return nil, ErrOverCapacity
	}
	if err := params.Charges.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		TravelerID: params.TravelerID,
		ListingID:  params.Reservable.ReservableID(),
		HostID:     params.Reservable.Owner(),
		Kind:       params.Reservable.ReservableKind(),
		Range:      params.Range,
		Travelers:  params.Travelers,
		AddOns:     append([]string(nil), params.AddOns...),
		Charges:    params.Charges,
		Coupon:     params.Coupon,
		State:      StatePending,
		Payment:    PaymentInfo{Status: PaymentPending},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingCreated{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		TravelerID: b.TravelerID,
		Range:      b.Range,
		Travelers:  b.Travelers,
		Total:      b.Charges.Total,
		At:         now,
	})
	return b, nil
}

// Confirm moves a pending booking to confirmed. When gateway identifiers are
// supplied the payment is marked paid; an operator confirm without them
// leaves the payment pending for later reconciliation.
func (b *Booking) Confirm(gatewayOrderID, gatewayPaymentID string, now time.Time) error {
	if b.State.Terminal() {
		return ErrAlreadyTerminal
	}
	if b.State != StatePending {
		return ErrInvalidTransition
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	if gatewayOrderID != "" && gatewayPaymentID != "" {
		b.Payment = PaymentInfo{
			Status:           PaymentPaid,
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: gatewayPaymentID,
			PaidAt:           b.UpdatedAt,
		}
	}
	b.Record(BookingConfirmed{
		BookingID: b.ID,
		ListingID: b.ListingID,
		HostID:    b.HostID,
		Range:     b.Range,
		Total:     b.Charges.Total,
		At:        b.UpdatedAt,
	})
	return nil
}

// Complete marks the stay as having happened; earnings recognize from here.
func (b *Booking) Complete(now time.Time) error {
	if b.State.Terminal() {
		return ErrAlreadyTerminal
	}
	if b.State != StateConfirmed {
		return ErrInvalidTransition
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, HostID: b.HostID, Total: b.Charges.Total, At: b.UpdatedAt})
	return nil
}

// Cancel terminates a pending or confirmed booking, appending the reason to
// the notes trail.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.State.Terminal() {
		return ErrAlreadyTerminal
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	if reason != "" {
		if b.Notes != "" {
			b.Notes += "\n"
		}
		b.Notes += "cancelled: " + reason
	}
	if b.Payment.Status == PaymentPaid {
		b.Payment.Status = PaymentRefunded
	}
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Repository persists bookings. Save must be conditional on the version read
// and report a conflict otherwise.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByTraveler(ctx context.Context, travelerID string) ([]*Booking, error)
	ListByHost(ctx context.Context, hostID listings.HostID) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
}
