package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

var bookingNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testListing(t *testing.T) *listings.Listing {
	t.Helper()
	item, err := listings.NewListing(listings.CreateListingParams{
		ID:           "listing-1",
		Host:         "host-1",
		Title:        "Lakeside cabin",
		MaxTravelers: 4,
		Rate:         money.Must(15000, "INR"),
		Now:          bookingNow,
	})
	require.NoError(t, err)
	return item
}

func testCharges() Charges {
	return Charges{
		Subtotal: money.Must(31500, "INR"),
		Discount: money.Must(0, "INR"),
		Total:    money.Must(31500, "INR"),
	}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := NewBooking(CreateParams{
		ID:         "booking-1",
		TravelerID: "traveler-1",
		Reservable: testListing(t),
		Range:      dr,
		Travelers:  2,
		Charges:    testCharges(),
		CreatedAt:  bookingNow,
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingValidation(t *testing.T) {
	item := testListing(t)
	dr, err := daterange.New(
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	_, err = NewBooking(CreateParams{ID: "b", TravelerID: "t", Reservable: item, Range: dr, Travelers: 0, Charges: testCharges(), CreatedAt: bookingNow})
	require.ErrorIs(t, err, ErrInvalidTravelers)

	_, err = NewBooking(CreateParams{ID: "b", TravelerID: "t", Reservable: item, Range: dr, Travelers: 5, Charges: testCharges(), CreatedAt: bookingNow})
	require.ErrorIs(t, err, ErrOverCapacity)

	_, err = NewBooking(CreateParams{ID: "b", TravelerID: "t", Reservable: nil, Range: dr, Travelers: 2, Charges: testCharges(), CreatedAt: bookingNow})
	require.ErrorIs(t, err, listings.ErrListingNotFound)
}

func TestNewBookingRecordsCreatedEvent(t *testing.T) {
	b := newTestBooking(t)
	require.Equal(t, StatePending, b.State)
	require.Equal(t, PaymentPending, b.Payment.Status)
	require.Equal(t, listings.HostID("host-1"), b.HostID)

	evts := b.PendingEvents()
	require.Len(t, evts, 1)
	require.Equal(t, EventBookingCreated, evts[0].EventName())
}

func TestChargesValidate(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		discount int64
		total    int64
		wantErr  error
	}{
		{"no discount", 30000, 0, 30000, nil},
		{"with discount", 30000, 3000, 27000, nil},
		{"mismatched total", 30000, 3000, 30000, ErrChargesMismatch},
		{"negative discount", 30000, -100, 30100, ErrNegativeDiscount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Charges{
				Subtotal: money.Must(tt.subtotal, "INR"),
				Discount: money.Must(tt.discount, "INR"),
				Total:    money.Must(tt.total, "INR"),
			}
			err := c.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfirmWithGatewayIdentifiersMarksPaid(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Confirm("order_1", "pay_1", bookingNow.Add(time.Minute)))

	require.Equal(t, StateConfirmed, b.State)
	require.Equal(t, PaymentPaid, b.Payment.Status)
	require.Equal(t, "order_1", b.Payment.GatewayOrderID)
	require.Equal(t, "pay_1", b.Payment.GatewayPaymentID)
	require.False(t, b.Payment.PaidAt.IsZero())
}

func TestConfirmWithoutIdentifiersLeavesPaymentPending(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Confirm("", "", bookingNow))
	require.Equal(t, StateConfirmed, b.State)
	require.Equal(t, PaymentPending, b.Payment.Status)
}

func TestStateMachineTransitions(t *testing.T) {
	t.Run("complete requires confirmed", func(t *testing.T) {
		b := newTestBooking(t)
		require.ErrorIs(t, b.Complete(bookingNow), ErrInvalidTransition)
		require.NoError(t, b.Confirm("", "", bookingNow))
		require.NoError(t, b.Complete(bookingNow))
		require.Equal(t, StateCompleted, b.State)
	})

	t.Run("terminal states refuse further transitions", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Cancel("changed plans", bookingNow))
		require.ErrorIs(t, b.Confirm("", "", bookingNow), ErrAlreadyTerminal)
		require.ErrorIs(t, b.Complete(bookingNow), ErrAlreadyTerminal)
		require.ErrorIs(t, b.Cancel("again", bookingNow), ErrAlreadyTerminal)
	})

	t.Run("double confirm is rejected", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.Confirm("", "", bookingNow))
		require.ErrorIs(t, b.Confirm("", "", bookingNow), ErrInvalidTransition)
	})
}

func TestCancelRefundsPaidBookings(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Confirm("order_1", "pay_1", bookingNow))
	require.NoError(t, b.Cancel("host asked", bookingNow.Add(time.Hour)))

	require.Equal(t, StateCancelled, b.State)
	require.Equal(t, PaymentRefunded, b.Payment.Status)
	require.Contains(t, b.Notes, "cancelled: host asked")
}

func TestParseState(t *testing.T) {
	state, ok := ParseState(" confirmed ")
	require.True(t, ok)
	require.Equal(t, StateConfirmed, state)

	_, ok = ParseState("unknown")
	require.False(t, ok)
}
