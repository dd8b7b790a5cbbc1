package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quietsummit/internal/domain/shared/money"
)

var payoutNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func pendingPayout(t *testing.T, amount int64) *Payout {
	t.Helper()
	p, err := NewPayout(CreateParams{
		ID:     "payout-1",
		HostID: "host-1",
		Amount: money.Must(amount, "INR"),
		Method: "bank_transfer",
		Now:    payoutNow,
	})
	require.NoError(t, err)
	return p
}

func TestNewPayoutValidation(t *testing.T) {
	_, err := NewPayout(CreateParams{ID: "p", HostID: "host-1", Amount: money.Must(0, "INR"), Now: payoutNow})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPayout(CreateParams{ID: "p", HostID: "", Amount: money.Must(100, "INR"), Now: payoutNow})
	require.Error(t, err)

	p := pendingPayout(t, 5000)
	require.Equal(t, PayoutPending, p.Status)
	require.Equal(t, payoutNow, p.RequestedAt)
}

func TestApproveRequiresReference(t *testing.T) {
	p := pendingPayout(t, 5000)
	require.ErrorIs(t, p.Approve("", payoutNow), ErrReferenceRequired)

	require.NoError(t, p.Approve("txn_123", payoutNow.Add(time.Hour)))
	require.Equal(t, PayoutCompleted, p.Status)
	require.Equal(t, "txn_123", p.ReferenceID)
	require.False(t, p.ProcessedAt.IsZero())

	require.ErrorIs(t, p.Approve("txn_456", payoutNow), ErrPayoutResolved)
	require.ErrorIs(t, p.Reject(payoutNow), ErrPayoutResolved)
}

func TestRejectMarksFailed(t *testing.T) {
	p := pendingPayout(t, 5000)
	require.NoError(t, p.Reject(payoutNow))
	require.Equal(t, PayoutFailed, p.Status)
	require.ErrorIs(t, p.Reject(payoutNow), ErrPayoutResolved)
}

func TestComputeBalance(t *testing.T) {
	earnings := money.Must(100000, "INR")

	completed := pendingPayout(t, 30000)
	require.NoError(t, completed.Approve("txn_1", payoutNow))
	pending := pendingPayout(t, 20000)
	failed := pendingPayout(t, 40000)
	require.NoError(t, failed.Reject(payoutNow))
	processing := pendingPayout(t, 10000)
	processing.Status = PayoutProcessing

	balance, err := ComputeBalance(earnings, []*Payout{completed, pending, failed, processing})
	require.NoError(t, err)

	require.Equal(t, int64(100000), balance.TotalEarnings.Amount)
	require.Equal(t, int64(30000), balance.TotalWithdrawn.Amount)
	require.Equal(t, int64(30000), balance.PendingWithdrawal.Amount)
	require.Equal(t, int64(40000), balance.AvailableBalance.Amount)
}

func TestComputeBalanceWithNoPayouts(t *testing.T) {
	balance, err := ComputeBalance(money.Must(50000, "INR"), nil)
	require.NoError(t, err)
	require.Equal(t, int64(50000), balance.AvailableBalance.Amount)
	require.Equal(t, int64(0), balance.TotalWithdrawn.Amount)
}

func TestComputeBalanceCanGoNegative(t *testing.T) {
	// a rejected booking after a completed payout can leave the ledger below zero
	completed := pendingPayout(t, 30000)
	require.NoError(t, completed.Approve("txn_1", payoutNow))

	balance, err := ComputeBalance(money.Must(10000, "INR"), []*Payout{completed})
	require.NoError(t, err)
	require.Equal(t, int64(-20000), balance.AvailableBalance.Amount)
	require.True(t, balance.AvailableBalance.IsNegative())
}
