package uow

import (
	"context"

	domainavailability "quietsummit/internal/domain/availability"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
	domainlistings "quietsummit/internal/domain/listings"
	domainpricing "quietsummit/internal/domain/pricing"
	domainsettlement "quietsummit/internal/domain/settlement"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Availability() domainavailability.Repository
	Booking() domainbooking.Repository
	Coupons() domaincoupon.Repository
	Payouts() domainsettlement.Repository
	Pricing() domainpricing.Calculator

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
