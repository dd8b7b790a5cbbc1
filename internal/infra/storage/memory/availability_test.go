package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainavailability "quietsummit/internal/domain/availability"
	"quietsummit/internal/domain/shared/daterange"
)

func futureRange(t *testing.T, daysAhead, nights int) daterange.DateRange {
	t.Helper()
	from := time.Now().UTC().AddDate(0, 0, daysAhead)
	dr, err := daterange.New(from, from.AddDate(0, 0, nights))
	require.NoError(t, err)
	return dr
}

func TestCalendarReturnsFreshCopyForUnknownListing(t *testing.T) {
	repo := NewCalendarRepository()
	cal, err := repo.Calendar(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Empty(t, cal.Blocks)
	require.Zero(t, cal.Version)
}

func TestSaveBumpsVersionAndIsolatesCopies(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()

	cal, err := repo.Calendar(ctx, "listing-1")
	require.NoError(t, err)
	_, err = cal.Block("b1", futureRange(t, 5, 2), domainavailability.ReasonPersonal, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cal))
	require.Equal(t, int64(1), cal.Version)

	// mutating the caller's copy does not leak into the store
	cal.Blocks = nil
	stored, err := repo.Calendar(ctx, "listing-1")
	require.NoError(t, err)
	require.Len(t, stored.Blocks, 1)
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()

	first, err := repo.Calendar(ctx, "listing-1")
	require.NoError(t, err)
	second, err := repo.Calendar(ctx, "listing-1")
	require.NoError(t, err)

	_, err = first.Block("b1", futureRange(t, 5, 2), domainavailability.ReasonPersonal, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = second.Block("b2", futureRange(t, 10, 2), domainavailability.ReasonOther, time.Now().UTC())
	require.NoError(t, err)
	require.ErrorIs(t, repo.Save(ctx, second), domainavailability.ErrConcurrentUpdate)
}

// Two writers loading the same version race on Save; exactly one may win.
func TestConcurrentSaveSingleWinner(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()

	const writers = 16
	calendars := make([]*domainavailability.Calendar, writers)
	for i := range calendars {
		cal, err := repo.Calendar(ctx, "listing-1")
		require.NoError(t, err)
		_, err = cal.Reserve("r", futureRange(t, 5, 2), "booking-1", time.Now().UTC())
		require.NoError(t, err)
		calendars[i] = cal
	}

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := range calendars {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Save(ctx, calendars[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, domainavailability.ErrConcurrentUpdate)
	}
	require.Equal(t, 1, wins)
}
