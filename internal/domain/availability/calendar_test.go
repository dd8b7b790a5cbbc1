package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quietsummit/internal/domain/shared/daterange"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, from, to string) daterange.DateRange {
	t.Helper()
	checkIn, err := time.Parse("2006-01-02", from)
	require.NoError(t, err)
	checkOut, err := time.Parse("2006-01-02", to)
	require.NoError(t, err)
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func TestHostBlocksMayOverlapEachOther(t *testing.T) {
	cal := NewCalendar("listing-1")

	_, err := cal.Block("b1", mustRange(t, "2026-03-10", "2026-03-15"), ReasonMaintenance, testNow)
	require.NoError(t, err)

	// a second host block over the same dates is fine
	_, err = cal.Block("b2", mustRange(t, "2026-03-12", "2026-03-18"), ReasonPersonal, testNow)
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 2)
}

func TestReserveConflictsWithAnyBlock(t *testing.T) {
	cal := NewCalendar("listing-1")
	_, err := cal.Block("b1", mustRange(t, "2026-03-10", "2026-03-15"), ReasonMaintenance, testNow)
	require.NoError(t, err)

	_, err = cal.Reserve("r1", mustRange(t, "2026-03-12", "2026-03-16"), "booking-1", testNow)
	require.ErrorIs(t, err, ErrConflict)

	// back to back against the host block is allowed
	_, err = cal.Reserve("r2", mustRange(t, "2026-03-15", "2026-03-20"), "booking-2", testNow)
	require.NoError(t, err)
	require.True(t, cal.ReservedFor("booking-2"))
}

func TestHostBlockConflictsOnlyWithBookedBlocks(t *testing.T) {
	cal := NewCalendar("listing-1")
	_, err := cal.Reserve("r1", mustRange(t, "2026-03-10", "2026-03-15"), "booking-1", testNow)
	require.NoError(t, err)

	_, err = cal.Block("b1", mustRange(t, "2026-03-14", "2026-03-18"), ReasonOther, testNow)
	require.ErrorIs(t, err, ErrConflict)

	_, err = cal.Block("b2", mustRange(t, "2026-03-15", "2026-03-18"), ReasonOther, testNow)
	require.NoError(t, err)
}

func TestBlockRejectsBookedReasonAndPastDates(t *testing.T) {
	cal := NewCalendar("listing-1")

	_, err := cal.Block("b1", mustRange(t, "2026-03-10", "2026-03-12"), ReasonBooked, testNow)
	require.ErrorIs(t, err, ErrReservationBlock)

	_, err = cal.Block("b2", mustRange(t, "2026-02-20", "2026-02-25"), ReasonPersonal, testNow)
	require.ErrorIs(t, err, ErrPastDate)

	// check-in on the current day is not past
	_, err = cal.Block("b3", mustRange(t, "2026-03-01", "2026-03-03"), ReasonPersonal, testNow)
	require.NoError(t, err)
}

func TestUnblockRefusesReservationBlocks(t *testing.T) {
	cal := NewCalendar("listing-1")
	block, err := cal.Block("b1", mustRange(t, "2026-03-10", "2026-03-12"), ReasonPersonal, testNow)
	require.NoError(t, err)
	_, err = cal.Reserve("r1", mustRange(t, "2026-03-20", "2026-03-25"), "booking-1", testNow)
	require.NoError(t, err)

	require.ErrorIs(t, cal.Unblock("r1"), ErrReservationBlock)
	require.ErrorIs(t, cal.Unblock("missing"), ErrBlockNotFound)
	require.NoError(t, cal.Unblock(block.ID))
	require.Len(t, cal.Blocks, 1)
}

func TestReleaseDropsOnlyTheBookingsBlock(t *testing.T) {
	cal := NewCalendar("listing-1")
	_, err := cal.Reserve("r1", mustRange(t, "2026-03-10", "2026-03-15"), "booking-1", testNow)
	require.NoError(t, err)

	require.False(t, cal.Release("booking-unknown"))
	require.True(t, cal.Release("booking-1"))
	require.False(t, cal.ReservedFor("booking-1"))
	require.True(t, cal.IsAvailable(mustRange(t, "2026-03-10", "2026-03-15")))
}

func TestToggleDayFlipsSingleDayBlocks(t *testing.T) {
	cal := NewCalendar("listing-1")

	blocked, err := cal.ToggleDay("t1", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), ReasonPersonal, testNow)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Len(t, cal.Blocks, 1)

	blocked, err = cal.ToggleDay("t2", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), ReasonPersonal, testNow)
	require.NoError(t, err)
	require.False(t, blocked)
	require.Empty(t, cal.Blocks)
}

func TestToggleDayLeavesMultiDayRangesIntact(t *testing.T) {
	cal := NewCalendar("listing-1")
	_, err := cal.Block("b1", mustRange(t, "2026-03-10", "2026-03-15"), ReasonMaintenance, testNow)
	require.NoError(t, err)

	blocked, err := cal.ToggleDay("t1", time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), ReasonPersonal, testNow)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Len(t, cal.Blocks, 2)
}

func TestBlocksWithin(t *testing.T) {
	cal := NewCalendar("listing-1")
	_, err := cal.Block("b1", mustRange(t, "2026-03-10", "2026-03-15"), ReasonMaintenance, testNow)
	require.NoError(t, err)
	_, err = cal.Block("b2", mustRange(t, "2026-04-01", "2026-04-05"), ReasonPersonal, testNow)
	require.NoError(t, err)

	within := cal.BlocksWithin(mustRange(t, "2026-03-01", "2026-03-31"))
	require.Len(t, within, 1)
	require.Equal(t, BlockID("b1"), within[0].ID)
}

func TestParseReason(t *testing.T) {
	for _, valid := range []string{"maintenance", "personal", "other"} {
		reason, ok := ParseReason(valid)
		require.True(t, ok)
		require.Equal(t, BlockReason(valid), reason)
	}
	_, ok := ParseReason("booked")
	require.False(t, ok)
	_, ok = ParseReason("")
	require.False(t, ok)
}
