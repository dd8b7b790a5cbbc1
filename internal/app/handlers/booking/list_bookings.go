package booking

import (
	"context"
	"strings"

	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/queries"
	"quietsummit/internal/app/uow"
	domainlistings "quietsummit/internal/domain/listings"
)

const (
	listTravelerBookingsKey = "booking.list_by_traveler"
	listHostBookingsKey     = "booking.list_by_host"
)

type ListTravelerBookingsQuery struct {
	TravelerID string
}

func (q ListTravelerBookingsQuery) Key() string { return listTravelerBookingsKey }

type ListTravelerBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListTravelerBookingsHandler) Handle(ctx context.Context, q ListTravelerBookingsQuery) (dto.BookingCollection, error) {
	travelerID := strings.TrimSpace(q.TravelerID)
	if travelerID == "" {
		return dto.BookingCollection{}, invalidField("traveler_id", "required")
	}
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Booking().ListByTraveler(ctx, travelerID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookings(items), nil
}

type ListHostBookingsQuery struct {
	HostID string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.BookingCollection{}, invalidField("host_id", "required")
	}
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Booking().ListByHost(ctx, domainlistings.HostID(hostID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookings(items), nil
}

var _ queries.Handler[ListTravelerBookingsQuery, dto.BookingCollection] = (*ListTravelerBookingsHandler)(nil)
var _ queries.Handler[ListHostBookingsQuery, dto.BookingCollection] = (*ListHostBookingsHandler)(nil)
