package reconcile

import (
	"context"
	"log/slog"
	"time"

	"quietsummit/internal/app/uow"
	"quietsummit/internal/domain/listings"
)

// Reconciler periodically activates listings left in the approved state.
// Approval and activation are separate steps, so a listing approved by an
// operator goes live on the next pass rather than inline in some read path.
type Reconciler struct {
	UoWFactory uow.UoWFactory
	Interval   time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// Run blocks until the context is cancelled, executing one pass per tick.
// A pass failure is logged and retried on the next tick.
func (r *Reconciler) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil && r.Logger != nil {
				r.Logger.Error("reconcile pass failed", "error", err)
			}
		}
	}
}

// RunOnce activates every approved listing in a single transaction.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	unit, err := r.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	approved, err := unit.Listings().ListApproved(execCtx)
	if err != nil {
		return err
	}
	now := r.now()
	activated := 0
	for _, item := range approved {
		switch v := item.(type) {
		case *listings.Listing:
			v.Activate(now)
		case *listings.TripPackage:
			v.Activate(now)
		default:
			continue
		}
		if err := unit.Listings().Save(execCtx, item); err != nil {
			return err
		}
		activated++
	}
	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	if activated > 0 && r.Logger != nil {
		r.Logger.Info("activated approved listings", "count", activated)
	}
	return nil
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}
