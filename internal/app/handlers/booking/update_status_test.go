package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"quietsummit/internal/app/policies"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
	"quietsummit/internal/infra/storage/memory"
)

func newUpdateStatusHandler(f *reservationFixture) *UpdateStatusHandler {
	return &UpdateStatusHandler{
		UoWFactory: f.factory,
		Outbox:     memory.NewOutbox(),
	}
}

func hostPrincipal() policies.Principal {
	return policies.Principal{ID: "host-1", Roles: []string{"host"}}
}

func TestConfirmPendingBookingConsumesCoupon(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)
	f.seedCoupon(t)

	cmd := reservationCommand(nil)
	cmd.CouponCode = "SAVE10"
	_, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	stored, err := f.coupons.ByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.Equal(t, 0, stored.UsedCount)

	view, err := newUpdateStatusHandler(f).Handle(context.Background(), UpdateStatusCommand{
		BookingID: "booking-1",
		NewStatus: "confirmed",
		Principal: hostPrincipal(),
	})
	require.NoError(t, err)
	require.Equal(t, string(domainbooking.StateConfirmed), view.Status)

	// the late confirm redeems the coupon exactly once
	stored, err = f.coupons.ByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.Equal(t, 1, stored.UsedCount)

	cal, err := f.calendar.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	require.True(t, cal.ReservedFor("booking-1"))
}

func TestConfirmPendingBookingRespectsCouponCap(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	now := reservationCommand(nil).CheckIn.AddDate(0, 0, -7)
	c, err := domaincoupon.New(domaincoupon.CreateParams{
		ID:         "coupon-last",
		Code:       "LASTONE",
		Type:       domaincoupon.TypeFixed,
		Value:      1500,
		ValidFrom:  now.AddDate(0, 0, -1),
		ValidUntil: now.AddDate(0, 1, 0),
		UsageLimit: 1,
		Now:        now,
	})
	require.NoError(t, err)
	require.NoError(t, f.coupons.Save(context.Background(), c))

	cmd := reservationCommand(nil)
	cmd.CouponCode = "LASTONE"
	_, err = f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	// another booking takes the last use before the pending one confirms
	require.NoError(t, f.coupons.ConsumeUse(context.Background(), "coupon-last"))

	_, err = newUpdateStatusHandler(f).Handle(context.Background(), UpdateStatusCommand{
		BookingID: "booking-1",
		NewStatus: "confirmed",
		Principal: hostPrincipal(),
	})
	require.ErrorIs(t, err, domaincoupon.ErrUsageLimitReached)

	// the failed confirm leaves neither a reservation block nor a state change
	cal, err := f.calendar.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	require.False(t, cal.ReservedFor("booking-1"))

	bk, err := f.bookings.ByID(context.Background(), "booking-1")
	require.NoError(t, err)
	require.Equal(t, domainbooking.StatePending, bk.State)

	stored, err := f.coupons.ByCode(context.Background(), "LASTONE")
	require.NoError(t, err)
	require.Equal(t, 1, stored.UsedCount)
}

func TestConfirmThenCompleteTransitions(t *testing.T) {
	f := newReservationFixture(t)
	f.seedListing(t, "listing-1", 15000)

	_, err := f.handler.Handle(context.Background(), reservationCommand(nil))
	require.NoError(t, err)

	h := newUpdateStatusHandler(f)
	view, err := h.Handle(context.Background(), UpdateStatusCommand{
		BookingID: "booking-1",
		NewStatus: "confirmed",
		Principal: hostPrincipal(),
	})
	require.NoError(t, err)
	require.Equal(t, string(domainbooking.StateConfirmed), view.Status)

	view, err = h.Handle(context.Background(), UpdateStatusCommand{
		BookingID: "booking-1",
		NewStatus: "completed",
		Principal: hostPrincipal(),
	})
	require.NoError(t, err)
	require.Equal(t, string(domainbooking.StateCompleted), view.Status)
}
