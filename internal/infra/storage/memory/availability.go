package memory

import (
	"context"
	"sync"

	domainavailability "quietsummit/internal/domain/availability"
	domainlistings "quietsummit/internal/domain/listings"
)

// CalendarRepository keeps calendars in memory. Loads return deep copies and
// Save compares versions, so two writers racing on the same listing behave
// like they would against a real conditional update.
type CalendarRepository struct {
	mu    sync.Mutex
	items map[domainlistings.ListingID]*domainavailability.Calendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{
		items: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

// Calendar returns a copy of the stored calendar, or a fresh empty one for
// listings never blocked before.
func (r *CalendarRepository) Calendar(ctx context.Context, listingID domainlistings.ListingID) (*domainavailability.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[listingID]
	if !ok {
		return domainavailability.NewCalendar(listingID), nil
	}
	return copyCalendar(stored), nil
}

// Save stores the calendar only when its version still matches the stored
// one, then bumps it. The loser of a race observes ErrConcurrentUpdate.
func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[cal.ListingID]
	if ok && stored.Version != cal.Version {
		return domainavailability.ErrConcurrentUpdate
	}
	next := copyCalendar(cal)
	next.Version = cal.Version + 1
	r.items[cal.ListingID] = next
	cal.Version = next.Version
	return nil
}

func copyCalendar(cal *domainavailability.Calendar) *domainavailability.Calendar {
	out := &domainavailability.Calendar{
		ListingID: cal.ListingID,
		Blocks:    append([]domainavailability.Block(nil), cal.Blocks...),
		Version:   cal.Version,
	}
	return out
}

var _ domainavailability.Repository = (*CalendarRepository)(nil)
