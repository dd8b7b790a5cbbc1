package listings

import (
	"context"
	"errors"
	"time"

	"quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

var (
	ErrListingNotFound = errors.New("listings: not found")
	ErrNotBookable     = errors.New("listings: not open for reservations")
	ErrInvalidCapacity = errors.New("listings: traveler capacity must be positive")
	ErrInvalidRate     = errors.New("listings: per-traveler rate must be positive")
)

type ListingID string

type HostID string

// Kind tags the two reservable variants.
type Kind string

const (
	KindProperty Kind = "property"
	KindTrip     Kind = "trip"
)

type State string

const (
	StateDraft State = "DRAFT"
	// StateApproved means moderation passed but the listing has not been
	// switched live yet. The reconcile pass promotes approved listings to
	// active; reads never do.
	StateApproved  State = "APPROVED"
	StateActive    State = "ACTIVE"
	StateSuspended State = "SUSPENDED"
)

// Reservable is the common contract a booking references: either a property
// listing reserved for an arbitrary date range, or a trip package with a
// fixed departure.
type Reservable interface {
	ReservableID() ListingID
	Owner() HostID
	ReservableKind() Kind
	Capacity() int
	RatePerTraveler() money.Money
	Bookable() bool
	// StayRange resolves the dates a reservation would occupy. Properties
	// take the requested range as-is; trips ignore it and return the fixed
	// departure window.
	StayRange(requested daterange.DateRange) (daterange.DateRange, error)
}

// Listing is a bookable property.
type Listing struct {
	ID           ListingID
	Host         HostID
	Title        string
	State        State
	MaxTravelers int
	Rate         money.Money
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

type CreateListingParams struct {
	ID           ListingID
	Host         HostID
	Title        string
	MaxTravelers int
	Rate         money.Money
	Now          time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if params.MaxTravelers <= 0 {
		return nil, ErrInvalidCapacity
	}
	if params.Rate.Amount <= 0 {
		return nil, ErrInvalidRate
	}
	now := params.Now.UTC()
	return &Listing{
		ID:           params.ID,
		Host:         params.Host,
		Title:        params.Title,
		State:        StateDraft,
		MaxTravelers: params.MaxTravelers,
		Rate:         params.Rate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (l *Listing) ReservableID() ListingID      { return l.ID }
func (l *Listing) Owner() HostID                { return l.Host }
func (l *Listing) ReservableKind() Kind         { return KindProperty }
func (l *Listing) Capacity() int                { return l.MaxTravelers }
func (l *Listing) RatePerTraveler() money.Money { return l.Rate }
func (l *Listing) Bookable() bool               { return l.State == StateActive }

func (l *Listing) StayRange(requested daterange.DateRange) (daterange.DateRange, error) {
	if requested.IsZero() {
		return daterange.DateRange{}, daterange.ErrInvalidRange
	}
	return requested, nil
}

// Approve marks moderation as passed; the listing stays offline until the
// reconcile pass activates it.
func (l *Listing) Approve(now time.Time) {
	l.State = StateApproved
	l.UpdatedAt = now.UTC()
}

// Activate switches the listing live.
func (l *Listing) Activate(now time.Time) {
	l.State = StateActive
	l.UpdatedAt = now.UTC()
}

// Suspend takes the listing off the marketplace.
func (l *Listing) Suspend(now time.Time) {
	l.State = StateSuspended
	l.UpdatedAt = now.UTC()
}

// TripPackage is a bookable trip with a fixed departure date.
type TripPackage struct {
	ID           ListingID
	Host         HostID
	Title        string
	State        State
	Departure    time.Time
	DurationDays int
	MaxTravelers int
	Rate         money.Money
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

type CreateTripParams struct {
	ID           ListingID
	Host         HostID
	Title        string
	Departure    time.Time
	DurationDays int
	MaxTravelers int
	Rate         money.Money
	Now          time.Time
}

var ErrInvalidDuration = errors.New("listings: trip duration must be positive")

func NewTripPackage(params CreateTripParams) (*TripPackage, error) {
	if params.MaxTravelers <= 0 {
		return nil, ErrInvalidCapacity
	}
	if params.Rate.Amount <= 0 {
		return nil, ErrInvalidRate
	}
	if params.DurationDays <= 0 {
		return nil, ErrInvalidDuration
	}
	now := params.Now.UTC()
	return &TripPackage{
		ID:           params.ID,
		Host:         params.Host,
		Title:        params.Title,
		State:        StateDraft,
		Departure:    daterange.Day(params.Departure),
		DurationDays: params.DurationDays,
		MaxTravelers: params.MaxTravelers,
		Rate:         params.Rate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (t *TripPackage) ReservableID() ListingID      { return t.ID }
func (t *TripPackage) Owner() HostID                { return t.Host }
func (t *TripPackage) ReservableKind() Kind         { return KindTrip }
func (t *TripPackage) Capacity() int                { return t.MaxTravelers }
func (t *TripPackage) RatePerTraveler() money.Money { return t.Rate }
func (t *TripPackage) Bookable() bool               { return t.State == StateActive }

// StayRange ignores the requested dates: a trip always occupies the window
// starting at its departure.
func (t *TripPackage) StayRange(daterange.DateRange) (daterange.DateRange, error) {
	return daterange.New(t.Departure, t.Departure.AddDate(0, 0, t.DurationDays))
}

func (t *TripPackage) Approve(now time.Time) {
	t.State = StateApproved
	t.UpdatedAt = now.UTC()
}

func (t *TripPackage) Activate(now time.Time) {
	t.State = StateActive
	t.UpdatedAt = now.UTC()
}

// Repository stores both reservable variants behind the common contract.
type Repository interface {
	ByID(ctx context.Context, id ListingID) (Reservable, error)
	Save(ctx context.Context, item Reservable) error
	// ListApproved returns reservables awaiting activation, for the
	// reconcile pass.
	ListApproved(ctx context.Context) ([]Reservable, error)
}
