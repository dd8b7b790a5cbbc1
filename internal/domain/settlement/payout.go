package settlement

import (
	"context"
	"errors"
	"time"

	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/money"
)

var (
	ErrInsufficientBalance = errors.New("settlement: amount exceeds available balance")
	ErrInvalidAmount       = errors.New("settlement: payout amount must be positive")
	ErrPayoutNotFound      = errors.New("settlement: payout not found")
	ErrPayoutResolved      = errors.New("settlement: payout already resolved")
	ErrReferenceRequired   = errors.New("settlement: reference id required to approve")
)

type PayoutID string

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
)

// Payout is a host's request to withdraw earned balance.
type Payout struct {
	ID          PayoutID
	HostID      listings.HostID
	Amount      money.Money
	Method      string
	Details     string
	Status      PayoutStatus
	ReferenceID string
	RequestedAt time.Time
	ProcessedAt time.Time
	Version     int64
}

type CreateParams struct {
	ID      PayoutID
	HostID  listings.HostID
	Amount  money.Money
	Method  string
	Details string
	Now     time.Time
}

func NewPayout(params CreateParams) (*Payout, error) {
	if params.Amount.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if params.HostID == "" {
		return nil, errors.New("settlement: host id required")
	}
	return &Payout{
		ID:          params.ID,
		HostID:      params.HostID,
		Amount:      params.Amount,
		Method:      params.Method,
		Details:     params.Details,
		Status:      PayoutPending,
		RequestedAt: params.Now.UTC(),
	}, nil
}

// Approve completes the payout; the gateway transfer reference is mandatory.
func (p *Payout) Approve(referenceID string, now time.Time) error {
	if p.Status == PayoutCompleted || p.Status == PayoutFailed {
		return ErrPayoutResolved
	}
	if referenceID == "" {
		return ErrReferenceRequired
	}
	p.Status = PayoutCompleted
	p.ReferenceID = referenceID
	p.ProcessedAt = now.UTC()
	return nil
}

// Reject fails the payout. Failed payouts drop out of both withdrawn and
// pending sums, so the balance restores through the formula alone.
func (p *Payout) Reject(now time.Time) error {
	if p.Status == PayoutCompleted || p.Status == PayoutFailed {
		return ErrPayoutResolved
	}
	p.Status = PayoutFailed
	p.ProcessedAt = now.UTC()
	return nil
}

// Balance is the settlement view of one host's ledger.
type Balance struct {
	TotalEarnings     money.Money
	TotalWithdrawn    money.Money
	PendingWithdrawal money.Money
	AvailableBalance  money.Money
}

// ComputeBalance folds completed-booking earnings and the host's payout
// history into a balance. Completed payouts count as withdrawn, pending and
// processing ones reduce availability, failed ones are ignored.
func ComputeBalance(earnings money.Money, payouts []*Payout) (Balance, error) {
	withdrawn := money.Money{Amount: 0, Currency: earnings.Currency}
	pending := money.Money{Amount: 0, Currency: earnings.Currency}
	for _, p := range payouts {
		var err error
		switch p.Status {
		case PayoutCompleted:
			withdrawn, err = withdrawn.Add(p.Amount)
		case PayoutPending, PayoutProcessing:
			pending, err = pending.Add(p.Amount)
		}
		if err != nil {
			return Balance{}, err
		}
	}
	available, err := earnings.Sub(withdrawn)
	if err != nil {
		return Balance{}, err
	}
	available, err = available.Sub(pending)
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		TotalEarnings:     earnings,
		TotalWithdrawn:    withdrawn,
		PendingWithdrawal: pending,
		AvailableBalance:  available,
	}, nil
}

// Repository persists payouts. WithHostLock serializes payout creation per
// host so two concurrent requests cannot both pass the balance check against
// a stale total.
type Repository interface {
	ByID(ctx context.Context, id PayoutID) (*Payout, error)
	Save(ctx context.Context, p *Payout) error
	ListByHost(ctx context.Context, hostID listings.HostID) ([]*Payout, error)
	WithHostLock(ctx context.Context, hostID listings.HostID, fn func(ctx context.Context) error) error
}
