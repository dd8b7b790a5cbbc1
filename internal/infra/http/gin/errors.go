package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "quietsummit/internal/app/handlers/availability"
	bookingapp "quietsummit/internal/app/handlers/booking"
	pricingapp "quietsummit/internal/app/handlers/pricing"
	settlementapp "quietsummit/internal/app/handlers/settlement"
	"quietsummit/internal/app/policies"
	domainavailability "quietsummit/internal/domain/availability"
	domainbooking "quietsummit/internal/domain/booking"
	domaincoupon "quietsummit/internal/domain/coupon"
	domainlistings "quietsummit/internal/domain/listings"
	domainpricing "quietsummit/internal/domain/pricing"
	domainsettlement "quietsummit/internal/domain/settlement"
	"quietsummit/internal/domain/shared/daterange"
)

// respondError maps domain errors onto HTTP statuses. Anything unmapped is a
// plain 500 with a generic body so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var bookingValidation *bookingapp.ValidationError
	var availabilityValidation *availabilityapp.ValidationError
	var pricingValidation *pricingapp.ValidationError
	var settlementValidation *settlementapp.ValidationError
	switch {
	case errors.As(err, &bookingValidation),
		errors.As(err, &availabilityValidation),
		errors.As(err, &pricingValidation),
		errors.As(err, &settlementValidation):
		return http.StatusBadRequest
	case errors.Is(err, policies.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, policies.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainlistings.ErrListingNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainsettlement.ErrPayoutNotFound),
		errors.Is(err, domainavailability.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, bookingapp.ErrUnavailable),
		errors.Is(err, domainavailability.ErrConflict),
		errors.Is(err, domainavailability.ErrConcurrentUpdate),
		errors.Is(err, domainavailability.ErrReservationBlock),
		errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainbooking.ErrAlreadyTerminal),
		errors.Is(err, domainsettlement.ErrPayoutResolved):
		return http.StatusConflict
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainavailability.ErrPastDate),
		errors.Is(err, domainbooking.ErrInvalidTravelers),
		errors.Is(err, domainbooking.ErrOverCapacity),
		errors.Is(err, domainsettlement.ErrInvalidAmount),
		errors.Is(err, domainsettlement.ErrReferenceRequired),
		errors.Is(err, domainpricing.ErrUnknownAddOn):
		return http.StatusBadRequest
	case errors.Is(err, domaincoupon.ErrInvalidCode),
		errors.Is(err, domaincoupon.ErrExpired),
		errors.Is(err, domaincoupon.ErrUsageLimitReached),
		errors.Is(err, domaincoupon.ErrBelowMinPurchase),
		errors.Is(err, domaincoupon.ErrNotApplicable),
		errors.Is(err, domainlistings.ErrNotBookable),
		errors.Is(err, domainsettlement.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
