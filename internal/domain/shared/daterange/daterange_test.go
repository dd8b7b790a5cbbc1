package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedAndEmptyRanges(t *testing.T) {
	_, err := New(date(2026, 3, 10), date(2026, 3, 10))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2026, 3, 10), date(2026, 3, 9))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewTruncatesToUTCMidnight(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	checkIn := time.Date(2026, 3, 10, 14, 30, 0, 0, ist)
	checkOut := time.Date(2026, 3, 12, 11, 0, 0, 0, ist)

	dr, err := New(checkIn, checkOut)
	require.NoError(t, err)
	require.Equal(t, date(2026, 3, 10), dr.CheckIn)
	require.Equal(t, date(2026, 3, 12), dr.CheckOut)
	require.Equal(t, 2, dr.Nights())
}

func TestOverlapsHalfOpen(t *testing.T) {
	base, err := New(date(2026, 3, 10), date(2026, 3, 15))
	require.NoError(t, err)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{"identical", date(2026, 3, 10), date(2026, 3, 15), true},
		{"contained", date(2026, 3, 11), date(2026, 3, 13), true},
		{"overlaps start", date(2026, 3, 8), date(2026, 3, 11), true},
		{"overlaps end", date(2026, 3, 14), date(2026, 3, 18), true},
		{"checkout on checkin day", date(2026, 3, 5), date(2026, 3, 10), false},
		{"checkin on checkout day", date(2026, 3, 15), date(2026, 3, 20), false},
		{"disjoint before", date(2026, 3, 1), date(2026, 3, 5), false},
		{"disjoint after", date(2026, 3, 20), date(2026, 3, 25), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := New(tt.checkIn, tt.checkOut)
			require.NoError(t, err)
			require.Equal(t, tt.want, base.Overlaps(other))
			require.Equal(t, tt.want, other.Overlaps(base))
		})
	}
}

func TestSingleDay(t *testing.T) {
	dr := SingleDay(time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC))
	require.Equal(t, date(2026, 3, 10), dr.CheckIn)
	require.Equal(t, date(2026, 3, 11), dr.CheckOut)
	require.Equal(t, 1, dr.Nights())
}

func TestKeyIsStable(t *testing.T) {
	dr, err := New(date(2026, 3, 10), date(2026, 3, 15))
	require.NoError(t, err)
	require.Equal(t, "20260310_20260315", dr.Key())
}
