package dto

import (
	"time"

	domainsettlement "quietsummit/internal/domain/settlement"
)

type BalanceView struct {
	HostID            string   `json:"host_id"`
	TotalEarnings     MoneyDTO `json:"total_earnings"`
	TotalWithdrawn    MoneyDTO `json:"total_withdrawn"`
	PendingWithdrawal MoneyDTO `json:"pending_withdrawal"`
	AvailableBalance  MoneyDTO `json:"available_balance"`
}

func MapBalance(hostID string, b domainsettlement.Balance) BalanceView {
	return BalanceView{
		HostID:            hostID,
		TotalEarnings:     MapMoney(b.TotalEarnings),
		TotalWithdrawn:    MapMoney(b.TotalWithdrawn),
		PendingWithdrawal: MapMoney(b.PendingWithdrawal),
		AvailableBalance:  MapMoney(b.AvailableBalance),
	}
}

type PayoutView struct {
	ID          string     `json:"id"`
	HostID      string     `json:"host_id"`
	Amount      MoneyDTO   `json:"amount"`
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	ReferenceID string     `json:"reference_id,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func MapPayout(p *domainsettlement.Payout) PayoutView {
	view := PayoutView{
		ID:          string(p.ID),
		HostID:      string(p.HostID),
		Amount:      MapMoney(p.Amount),
		Method:      p.Method,
		Status:      string(p.Status),
		ReferenceID: p.ReferenceID,
		RequestedAt: p.RequestedAt,
	}
	if !p.ProcessedAt.IsZero() {
		processed := p.ProcessedAt
		view.ProcessedAt = &processed
	}
	return view
}
