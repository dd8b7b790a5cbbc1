package daterange

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out must be strictly after check-in")

// DateRange is a half-open interval [CheckIn, CheckOut) at day granularity.
// A check-out equal to another range's check-in is not an overlap.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a validated range. Both bounds are truncated to UTC midnight.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !dr.CheckOut.After(dr.CheckIn) {
		return DateRange{}, ErrInvalidRange
	}
	return dr, nil
}

// SingleDay builds the one-night range [day, day+1).
func SingleDay(day time.Time) DateRange {
	start := Day(day)
	return DateRange{CheckIn: start, CheckOut: start.AddDate(0, 0, 1)}
}

// Day truncates a timestamp to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights covered by the range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges intersect.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Equal reports bound-for-bound equality.
func (r DateRange) Equal(other DateRange) bool {
	return r.CheckIn.Equal(other.CheckIn) && r.CheckOut.Equal(other.CheckOut)
}

// IsZero reports whether the range is uninitialized.
func (r DateRange) IsZero() bool {
	return r.CheckIn.IsZero() && r.CheckOut.IsZero()
}

// Key returns a stable normalized identifier for the range, usable as part of
// a storage uniqueness constraint.
func (r DateRange) Key() string {
	return fmt.Sprintf("%s_%s", r.CheckIn.Format("20060102"), r.CheckOut.Format("20060102"))
}
