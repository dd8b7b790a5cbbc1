package settlement

import (
	"context"
	"strings"
	"time"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	handlersupport "quietsummit/internal/app/handlers/support"
	"quietsummit/internal/app/policies"
	"quietsummit/internal/app/uow"
	domainsettlement "quietsummit/internal/domain/settlement"
)

const resolvePayoutKey = "settlement.resolve_payout"

type ResolvePayoutCommand struct {
	PayoutID    string
	Approve     bool
	ReferenceID string
	Principal   policies.Principal
}

func (c ResolvePayoutCommand) Key() string { return resolvePayoutKey }

// ResolvePayoutHandler is the back-office step: an admin approves a payout
// with the gateway transfer reference, or rejects it. Rejection restores the
// host's available balance through the ledger formula alone.
type ResolvePayoutHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *ResolvePayoutHandler) Handle(ctx context.Context, cmd ResolvePayoutCommand) (dto.PayoutView, error) {
	payoutID := strings.TrimSpace(cmd.PayoutID)
	if payoutID == "" {
		return dto.PayoutView{}, invalidField("payout_id", "required")
	}
	if !cmd.Principal.IsAdmin() {
		return dto.PayoutView{}, policies.ErrForbidden
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

	payout, err := unit.Payouts().ByID(ctx, domainsettlement.PayoutID(payoutID))
	if err != nil {
		return dto.PayoutView{}, err
	}
	if cmd.Approve {
		err = payout.Approve(strings.TrimSpace(cmd.ReferenceID), h.now())
	} else {
		err = payout.Reject(h.now())
	}
	if err != nil {
		return dto.PayoutView{}, err
	}
	if err := unit.Payouts().Save(ctx, payout); err != nil {
		return dto.PayoutView{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.PayoutView{}, err
		}
		committed = true
	}
	return dto.MapPayout(payout), nil
}

func (h *ResolvePayoutHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[ResolvePayoutCommand, dto.PayoutView] = (*ResolvePayoutHandler)(nil)
