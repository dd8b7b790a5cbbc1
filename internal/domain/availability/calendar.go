package availability

import (
	"context"
	"errors"
	"time"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/daterange"
)

var (
	ErrConflict         = errors.New("availability: dates conflict with an existing reservation")
	ErrPastDate         = errors.New("availability: cannot block dates in the past")
	ErrBlockNotFound    = errors.New("availability: block not found")
	ErrReservationBlock = errors.New("availability: reservation blocks are released through cancellation only")
	ErrConcurrentUpdate = errors.New("availability: calendar changed concurrently")
)

type BlockID string

// BlockReason distinguishes reservation-derived blocks from host-managed ones.
// Only non-booked blocks may be removed through Unblock.
type BlockReason string

const (
	ReasonBooked      BlockReason = "booked"
	ReasonMaintenance BlockReason = "maintenance"
	ReasonPersonal    BlockReason = "personal"
	ReasonOther       BlockReason = "other"
)

func ParseReason(raw string) (BlockReason, bool) {
	switch BlockReason(raw) {
	case ReasonMaintenance, ReasonPersonal, ReasonOther:
		return BlockReason(raw), true
	default:
		return "", false
	}
}

// Block is one unavailable interval on a listing's calendar.
type Block struct {
	ID        BlockID
	Range     daterange.DateRange
	Reason    BlockReason
	BookingID string
	CreatedAt time.Time
}

// Calendar owns all blocked ranges of one listing. Host blocks may overlap
// each other; nothing may overlap a reservation block.
type Calendar struct {
	ListingID listings.ListingID
	Blocks    []Block
	Version   int64
}

func NewCalendar(listingID listings.ListingID) *Calendar {
	return &Calendar{ListingID: listingID}
}

// IsAvailable reports whether no block of any reason overlaps the range.
func (c *Calendar) IsAvailable(dr daterange.DateRange) bool {
	for _, b := range c.Blocks {
		if b.Range.Overlaps(dr) {
			return false
		}
	}
	return true
}

// Block records a host-managed unavailable interval. Overlapping another
// host block is allowed; overlapping a reservation block is not.
func (c *Calendar) Block(id BlockID, dr daterange.DateRange, reason BlockReason, now time.Time) (Block, error) {
	if reason == ReasonBooked {
		return Block{}, ErrReservationBlock
	}
	if err := rejectPast(dr, now); err != nil {
		return Block{}, err
	}
	for _, b := range c.Blocks {
		if b.Reason == ReasonBooked && b.Range.Overlaps(dr) {
			return Block{}, ErrConflict
		}
	}
	block := Block{ID: id, Range: dr, Reason: reason, CreatedAt: now.UTC()}
	c.Blocks = append(c.Blocks, block)
	return block, nil
}

// Reserve registers a reservation-origin block. Unlike host blocks it
// conflicts with every existing block, whatever its reason.
func (c *Calendar) Reserve(id BlockID, dr daterange.DateRange, bookingID string, now time.Time) (Block, error) {
	if err := rejectPast(dr, now); err != nil {
		return Block{}, err
	}
	if !c.IsAvailable(dr) {
		return Block{}, ErrConflict
	}
	block := Block{ID: id, Range: dr, Reason: ReasonBooked, BookingID: bookingID, CreatedAt: now.UTC()}
	c.Blocks = append(c.Blocks, block)
	return block, nil
}

// Unblock removes a host-managed block. Reservation blocks are refused.
func (c *Calendar) Unblock(id BlockID) error {
	for i, b := range c.Blocks {
		if b.ID != id {
			continue
		}
		if b.Reason == ReasonBooked {
			return ErrReservationBlock
		}
		c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
		return nil
	}
	return ErrBlockNotFound
}

// Release drops the reservation block tied to a booking, if any. Used by
// cancellation; it is not an error when no block was registered (pending
// bookings never held the calendar).
func (c *Calendar) Release(bookingID string) bool {
	for i, b := range c.Blocks {
		if b.Reason == ReasonBooked && b.BookingID == bookingID {
			c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
			return true
		}
	}
	return false
}

// ReservedFor reports whether a reservation block exists for the booking.
func (c *Calendar) ReservedFor(bookingID string) bool {
	for _, b := range c.Blocks {
		if b.Reason == ReasonBooked && b.BookingID == bookingID {
			return true
		}
	}
	return false
}

// BlocksWithin returns blocks intersecting the query window, for calendar
// rendering.
func (c *Calendar) BlocksWithin(window daterange.DateRange) []Block {
	var out []Block
	for _, b := range c.Blocks {
		if b.Range.Overlaps(window) {
			out = append(out, b)
		}
	}
	return out
}

// ToggleDay flips one day between blocked and available. Toggling to
// available removes only an exact single-day host block matching that date;
// a multi-day range spanning the day is left intact rather than split.
func (c *Calendar) ToggleDay(id BlockID, day time.Time, reason BlockReason, now time.Time) (blocked bool, err error) {
	single := daterange.SingleDay(day)
	for _, b := range c.Blocks {
		if b.Reason != ReasonBooked && b.Range.Equal(single) {
			if err := c.Unblock(b.ID); err != nil {
				return false, err
			}
			return false, nil
		}
	}
	if _, err := c.Block(id, single, reason, now); err != nil {
		return false, err
	}
	return true, nil
}

func rejectPast(dr daterange.DateRange, now time.Time) error {
	if dr.CheckIn.Before(daterange.Day(now)) {
		return ErrPastDate
	}
	return nil
}

// Repository loads and persists calendars. Save must be conditional on the
// version read, so two writers racing on the same listing cannot both
// succeed; the loser observes ErrConcurrentUpdate.
type Repository interface {
	Calendar(ctx context.Context, listingID listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, cal *Calendar) error
}
