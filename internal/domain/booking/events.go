package booking

import (
	"time"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
)

type BookingCreated struct {
	BookingID  BookingID
	ListingID  listings.ListingID
	TravelerID string
	Range      daterange.DateRange
	Travelers  int
	Total      money.Money
	At         time.Time
}

func (e BookingCreated) EventName() string     { return EventBookingCreated }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	ListingID listings.ListingID
	HostID    listings.HostID
	Range     daterange.DateRange
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return EventBookingConfirmed }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	HostID    listings.HostID
	Total     money.Money
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return EventBookingCompleted }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	ListingID listings.ListingID
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return EventBookingCancelled }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
