package memory

import (
	"context"
	"errors"

	"quietsummit/internal/app/uow"
	domainavailability "quietsummit/internal/domain/availability"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
	domainlistings "quietsummit/internal/domain/listings"
	domainpricing "quietsummit/internal/domain/pricing"
	domainsettlement "quietsummit/internal/domain/settlement"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo     domainlistings.Repository
	AvailabilityRepo domainavailability.Repository
	BookingRepo      domainbooking.Repository
	CouponRepo       domaincoupon.Repository
	PayoutRepo       domainsettlement.Repository
	PricingSvc       domainpricing.Calculator
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.AvailabilityRepo == nil || f.BookingRepo == nil ||
		f.CouponRepo == nil || f.PayoutRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:     f.ListingsRepo,
		availability: f.AvailabilityRepo,
		booking:      f.BookingRepo,
		coupons:      f.CouponRepo,
		payouts:      f.PayoutRepo,
		pricing:      f.PricingSvc,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings     domainlistings.Repository
	availability domainavailability.Repository
	booking      domainbooking.Repository
	coupons      domaincoupon.Repository
	payouts      domainsettlement.Repository
	pricing      domainpricing.Calculator
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.availability
}

func (u *Unit) Booking() domainbooking.Repository {
	return u.booking
}

func (u *Unit) Coupons() domaincoupon.Repository {
	return u.coupons
}

func (u *Unit) Payouts() domainsettlement.Repository {
	return u.payouts
}

func (u *Unit) Pricing() domainpricing.Calculator {
	return u.pricing
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
