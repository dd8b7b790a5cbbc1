package settlement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainlistings "quietsummit/internal/domain/listings"
	domainsettlement "quietsummit/internal/domain/settlement"
	"quietsummit/internal/domain/shared/money"
)

const requestPayoutKey = "settlement.request_payout"

type RequestPayoutCommand struct {
	HostID    string
	Amount    int64
	Method    string
	Details   string
	Principal policies.Principal
}

func (c RequestPayoutCommand) Key() string { return requestPayoutKey }

// RequestPayoutHandler creates a pending payout after checking it fits the
// available balance. The check and the insert run under the host's payout
// lock with a fresh balance read, so concurrent requests cannot both drain
// the same funds.
type RequestPayoutHandler struct {
	UoWFactory uow.UoWFactory
	Currency   string
	Now        func() time.Time
}

func (h *RequestPayoutHandler) Handle(ctx context.Context, cmd RequestPayoutCommand) (dto.PayoutView, error) {
	hostID := strings.TrimSpace(cmd.HostID)
	if hostID == "" {
		return dto.PayoutView{}, invalidField("host_id", "required")
	}
	if cmd.Amount <= 0 {
		return dto.PayoutView{}, domainsettlement.ErrInvalidAmount
	}
	if strings.TrimSpace(cmd.Method) == "" {
		return dto.PayoutView{}, invalidField("method", "required")
	}
	if err := policies.Authorize(cmd.Principal, hostID); err != nil {
		return dto.PayoutView{}, err
	}

	unit, ctx, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PayoutView{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	host := domainlistings.HostID(hostID)
	var created *domainsettlement.Payout
	err = unit.Payouts().WithHostLock(ctx, host, func(ctx context.Context) error {
		earnings, err := hostEarnings(ctx, unit, host, h.Currency)
		if err != nil {
			return err
		}
		payouts, err := unit.Payouts().ListByHost(ctx, host)
		if err != nil {
			return err
		}
		balance, err := domainsettlement.ComputeBalance(earnings, payouts)
		if err != nil {
			return err
		}
		amount := money.Money{Amount: cmd.Amount, Currency: h.Currency}
		if amount.Amount > balance.AvailableBalance.Amount {
			return domainsettlement.ErrInsufficientBalance
		}
		payout, err := domainsettlement.NewPayout(domainsettlement.CreateParams{
			ID:      domainsettlement.PayoutID(uuid.NewString()),
			HostID:  host,
			Amount:  amount,
			Method:  cmd.Method,
			Details: cmd.Details,
			Now:     h.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Payouts().Save(ctx, payout); err != nil {
			return err
		}
		created = payout
		return nil
	})
	if err != nil {
		return dto.PayoutView{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.PayoutView{}, err
		}
		committed = true
	}
	return dto.MapPayout(created), nil
}

func (h *RequestPayoutHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestPayoutCommand, dto.PayoutView] = (*RequestPayoutHandler)(nil)
