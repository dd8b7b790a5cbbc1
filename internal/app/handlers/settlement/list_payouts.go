package settlement

import (
	"context"
	"strings"

	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/queries"
	"quietsummit/internal/app/uow"
	domainlistings "quietsummit/internal/domain/listings"
)

const listPayoutsKey = "settlement.list_payouts"

type ListPayoutsQuery struct {
	HostID    string
	Principal policies.Principal
}

func (q ListPayoutsQuery) Key() string { return listPayoutsKey }

type PayoutCollection struct {
	Items []dto.PayoutView `json:"items"`
}

type ListPayoutsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPayoutsHandler) Handle(ctx context.Context, q ListPayoutsQuery) (PayoutCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return PayoutCollection{}, invalidField("host_id", "required")
	}
	if err := policies.Authorize(q.Principal, hostID); err != nil {
		return PayoutCollection{}, err
	}

	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return PayoutCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	payouts, err := unit.Payouts().ListByHost(ctx, domainlistings.HostID(hostID))
	if err != nil {
		return PayoutCollection{}, err
	}
	out := PayoutCollection{Items: make([]dto.PayoutView, 0, len(payouts))}
	for _, p := range payouts {
		out.Items = append(out.Items, dto.MapPayout(p))
	}
	return out, nil
}

var _ queries.Handler[ListPayoutsQuery, PayoutCollection] = (*ListPayoutsHandler)(nil)
