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
	domainsettlement "quietsummit/internal/domain/settlement"
)

const getBalanceKey = "settlement.balance"

// GetBalanceQuery reports a host's ledger: earnings, withdrawn, pending and
// what remains available. Hosts see their own balance; admins see anyone's.
type GetBalanceQuery struct {
	HostID    string
	Principal policies.Principal
}

func (q GetBalanceQuery) Key() string { return getBalanceKey }

type GetBalanceHandler struct {
	UoWFactory uow.UoWFactory
	Currency   string
}

func (h *GetBalanceHandler) Handle(ctx context.Context, q GetBalanceQuery) (dto.BalanceView, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.BalanceView{}, invalidField("host_id", "required")
	}
	if err := policies.Authorize(q.Principal, hostID); err != nil {
		return dto.BalanceView{}, err
	}

	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BalanceView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	earnings, err := hostEarnings(ctx, unit, domainlistings.HostID(hostID), h.Currency)
	if err != nil {
		return dto.BalanceView{}, err
	}
	payouts, err := unit.Payouts().ListByHost(ctx, domainlistings.HostID(hostID))
	if err != nil {
		return dto.BalanceView{}, err
	}
	balance, err := domainsettlement.ComputeBalance(earnings, payouts)
	if err != nil {
		return dto.BalanceView{}, err
	}
	return dto.MapBalance(hostID, balance), nil
}

var _ queries.Handler[GetBalanceQuery, dto.BalanceView] = (*GetBalanceHandler)(nil)
