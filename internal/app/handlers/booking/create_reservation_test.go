package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainavailability "quietsummit/internal/domain/availability"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
	domainlistings "quietsummit/internal/domain/listings"
	domainpayment "quietsummit/internal/domain/payment"
	domainpricing "quietsummit/internal/domain/pricing"
	domainrange "quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
	infrapricing "quietsummit/internal/infra/pricing"
	"quietsummit/internal/infra/storage/memory"
)

const reservationSecret = "reservation-test-secret"

type reservationFixture struct {
	handler  *CreateReservationHandler
	factory  memory.Factory
	listings *memory.ListingRepository
	calendar *memory.CalendarRepository
	bookings *memory.BookingRepository
	coupons  *memory.CouponRepository
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	f := &reservationFixture{
		listings: memory.NewListingRepository(),
		calendar: memory.NewCalendarRepository(),
		bookings: memory.NewBookingRepository(),
		coupons:  memory.NewCouponRepository(),
	}
	f.factory = memory.Factory{
		ListingsRepo:     f.listings,
		AvailabilityRepo: f.calendar,
		BookingRepo:      f.bookings,
		CouponRepo:       f.coupons,
		PayoutRepo:       memory.NewPayoutRepository(),
	}
	factory := f.factory
	engine := domainpricing.Engine{
		TaxBasisPoints: 500,
		AddOnPrices:    domainpricing.DefaultAddOns("INR"),
		Currency:       "INR",
	}
	f.handler = &CreateReservationHandler{
		UoWFactory:    factory,
		Pricing:       infrapricing.Adapter{Calculator: engine},
		GatewaySecret: reservationSecret,
		Outbox:        memory.NewOutbox(),
	}
	return f
}

func (f *reservationFixture) seedListing(t *testing.T, id string, rate int64) {
	t.Helper()
	now := time.Now().UTC()
	item, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:           domainlistings.ListingID(id),
		Host:         "host-1",
		Title:        "Canal house",
		MaxTravelers: 4,
		Rate:         money.Must(rate, "INR"),
		Now:          now,
	})
	require.NoError(t, err)
	item.Approve(now)
	item.Activate(now)
	require.NoError(t, f.listings.Save(context.Background(), item))
}

func (f *reservationFixture) seedCoupon(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	c, err := domaincoupon.New(domaincoupon.CreateParams{
		ID:          "coupon-1",
		Code:        "SAVE10",
		Type:        domaincoupon.TypePercentage,
		Value:       10,
		MaxDiscount: money.Must(2000, "INR"),
		ValidFrom:   now.AddDate(0, 0, -1),
		ValidUntil:  now.AddDate(0, 1, 0),
		UsageLimit:  5,
		Now:         now,
	})
	require.NoError(t, err)
	require.NoError(t, f.coupons.Save(context.Background(), c))
}

func reservationCommand(proof *PaymentProofInput) CreateReservationCommand {
	checkIn := time.Now().UTC().AddDate(0, 0, 7)
	return CreateReservationCommand{
		CommandID:  "booking-1",
		TravelerID: "traveler-1",
		ListingID:  "listing-1",
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 3),
		Travelers:  2,
		Payment:    proof,
	}
}

func signedProof(orderID, paymentID string) *PaymentProofInput {
	return &PaymentProofInput{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: domainpayment.Sign(orderID, paymentID, reservationSecret),
	}
}

func TestCreateReservationConfirmedWithValidProof(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	res, err := f.handler.Handle(context.Background(), reservationCommand(signedProof("order_1", "pay_1")))
	require.NoError(t, err)

	require.Equal(t, "booking-1", res.BookingID)
	require.Equal(t, string(domainbooking.StateConfirmed), res.Status)
	require.Equal(t, string(domainbooking.PaymentPaid), res.PaymentStatus)
	require.Equal(t, int64(31500), res.Subtotal)
	require.Equal(t, int64(0), res.Discount)
	require.Equal(t, int64(31500), res.Total)

	cal, err := f.calendar.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	require.True(t, cal.ReservedFor("booking-1"))
}

func TestCreateReservationWithoutProofStaysPending(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	res, err := f.handler.Handle(context.Background(), reservationCommand(nil))
	require.NoError(t, err)

	require.Equal(t, string(domainbooking.StatePending), res.Status)
	require.Equal(t, string(domainbooking.PaymentPending), res.PaymentStatus)

	// pending bookings do not hold the calendar
	cal, err := f.calendar.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	require.False(t, cal.ReservedFor("booking-1"))
}

func TestCreateReservationBadSignatureStaysPending(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	proof := &PaymentProofInput{OrderID: "order_1", PaymentID: "pay_1", Signature: "forged"}
	res, err := f.handler.Handle(context.Background(), reservationCommand(proof))
	require.NoError(t, err)

	require.Equal(t, string(domainbooking.StatePending), res.Status)
	require.Equal(t, string(domainbooking.PaymentPending), res.PaymentStatus)
}

func TestCreateReservationRejectsBlockedDates(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	cmd := reservationCommand(signedProof("order_1", "pay_1"))
	cal, err := f.calendar.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	require.NoError(t, err)
	_, err = cal.Block("b1", dr, domainavailability.ReasonMaintenance, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.calendar.Save(context.Background(), cal))

	_, err = f.handler.Handle(context.Background(), cmd)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateReservationAppliesCoupon(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)
	f.seedCoupon(t)

	cmd := reservationCommand(signedProof("order_1", "pay_1"))
	cmd.CouponCode = "save10"

	res, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	// 10% of the 30000 subtotal clamps to the 2000 cap
	require.Equal(t, int64(31500), res.Subtotal)
	require.Equal(t, int64(2000), res.Discount)
	require.Equal(t, int64(29500), res.Total)

	stored, err := f.coupons.ByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.Equal(t, 1, stored.UsedCount)

	bk, err := f.bookings.ByID(context.Background(), "booking-1")
	require.NoError(t, err)
	require.NotNil(t, bk.Coupon)
	require.Equal(t, "SAVE10", bk.Coupon.Code)
}

func TestCreateReservationPendingDoesNotConsumeCoupon(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)
	f.seedCoupon(t)

	cmd := reservationCommand(nil)
	cmd.CouponCode = "SAVE10"

	res, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, int64(2000), res.Discount)

	stored, err := f.coupons.ByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.Equal(t, 0, stored.UsedCount)
}

// exhaustedCoupons stands in for the race loser whose usage-count increment
// loses to a concurrent redeemer after validation already passed.
type exhaustedCoupons struct {
	domaincoupon.Repository
}

func (exhaustedCoupons) ConsumeUse(ctx context.Context, id domaincoupon.CouponID) error {
	return domaincoupon.ErrUsageLimitReached
}

func TestCreateReservationCouponRaceLoserReleasesDates(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)
	f.seedCoupon(t)

	factory := f.factory
	factory.CouponRepo = exhaustedCoupons{Repository: f.coupons}
	handler := &CreateReservationHandler{
		UoWFactory:    factory,
		Pricing:       f.handler.Pricing,
		GatewaySecret: reservationSecret,
		Outbox:        memory.NewOutbox(),
	}

	cmd := reservationCommand(signedProof("order_1", "pay_1"))
	cmd.CouponCode = "SAVE10"

	_, err := handler.Handle(context.Background(), cmd)
	require.ErrorIs(t, err, domaincoupon.ErrUsageLimitReached)

	// the failed create must not keep holding the dates
	cal, err := f.calendar.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	require.False(t, cal.ReservedFor("booking-1"))

	_, err = f.bookings.ByID(context.Background(), "booking-1")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCreateReservationConcurrentSameDatesOneWinner(t *testing.T) {
	for round := 0; round < 25; round++ {
		f := newReservationFixture(t)
		f.seedListing(t, "listing-1", 15000)

		first := reservationCommand(signedProof("order_a", "pay_a"))
		first.CommandID = "booking-a"
		second := reservationCommand(signedProof("order_b", "pay_b"))
		second.CommandID = "booking-b"
		second.TravelerID = "traveler-2"

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, cmd := range []CreateReservationCommand{first, second} {
			wg.Add(1)
			go func(i int, cmd CreateReservationCommand) {
				defer wg.Done()
				_, errs[i] = f.handler.Handle(context.Background(), cmd)
			}(i, cmd)
		}
		wg.Wait()

		var confirmed, lost int
		for _, err := range errs {
			switch {
			case err == nil:
				confirmed++
			default:
				require.ErrorIs(t, err, ErrUnavailable)
				lost++
			}
		}
		require.Equal(t, 1, confirmed, "round %d", round)
		require.Equal(t, 1, lost, "round %d", round)

		cal, err := f.calendar.Calendar(context.Background(), "listing-1")
		require.NoError(t, err)
		winner := "booking-a"
		if errs[0] != nil {
			winner = "booking-b"
		}
		require.True(t, cal.ReservedFor(winner), "round %d", round)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	t.Run("past check-in", func(t *testing.T) {
		cmd := reservationCommand(nil)
		cmd.CheckIn = time.Now().UTC().AddDate(0, 0, -3)
		cmd.CheckOut = time.Now().UTC().AddDate(0, 0, -1)
		_, err := f.handler.Handle(context.Background(), cmd)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "check_in", verr.Field)
	})

	t.Run("over capacity", func(t *testing.T) {
		cmd := reservationCommand(nil)
		cmd.Travelers = 9
		_, err := f.handler.Handle(context.Background(), cmd)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "travelers", verr.Field)
	})

	t.Run("unknown listing", func(t *testing.T) {
		cmd := reservationCommand(nil)
		cmd.ListingID = "listing-missing"
		_, err := f.handler.Handle(context.Background(), cmd)
		require.ErrorIs(t, err, domainlistings.ErrListingNotFound)
	})
}
