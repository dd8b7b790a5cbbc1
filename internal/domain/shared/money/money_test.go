package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(1500, "inr")
	require.NoError(t, err)
	require.Equal(t, "INR", m.Currency)
	require.Equal(t, int64(1500), m.Amount)

	_, err = New(100, "RUPEES")
	require.ErrorIs(t, err, ErrInvalidCurrency)
	_, err = New(100, "")
	require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestArithmeticRequiresMatchingCurrency(t *testing.T) {
	a := Must(1000, "INR")
	b := Must(250, "USD")

	_, err := a.Add(b)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.Sub(b)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = Min(a, b)
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := a.Add(Must(500, "INR"))
	require.NoError(t, err)
	require.Equal(t, Must(1500, "INR"), sum)

	diff, err := a.Sub(Must(1500, "INR"))
	require.NoError(t, err)
	require.Equal(t, int64(-500), diff.Amount)
	require.True(t, diff.IsNegative())
}

func TestPercentRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent int64
		want    int64
	}{
		{"exact", 30000, 10, 3000},
		{"rounds up at half", 1050, 10, 105},
		{"rounds half up", 999, 5, 50},
		{"rounds down below half", 101, 1, 1},
		{"zero percent", 30000, 0, 0},
		{"negative amount clamps to zero", -500, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Must(tt.amount, "INR").Percent(tt.percent)
			require.Equal(t, tt.want, got.Amount)
			require.Equal(t, "INR", got.Currency)
		})
	}
}

func TestBasisPointsRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bp     int64
		want   int64
	}{
		{"500bp of 30000", 30000, 500, 1500},
		{"rounds half up", 999, 500, 50},
		{"tiny amount", 1, 500, 0},
		{"zero bp", 30000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Must(tt.amount, "INR").BasisPoints(tt.bp)
			require.Equal(t, tt.want, got.Amount)
		})
	}
}

func TestMin(t *testing.T) {
	small := Must(100, "INR")
	big := Must(500, "INR")

	got, err := Min(big, small)
	require.NoError(t, err)
	require.Equal(t, small, got)

	got, err = Min(small, big)
	require.NoError(t, err)
	require.Equal(t, small, got)
}
