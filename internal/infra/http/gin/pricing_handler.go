package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"quietsummit/internal/app/dto"
	pricingapp "quietsummit/internal/app/handlers/pricing"
	"quietsummit/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
	q := pricingapp.QuoteQuery{
		ListingID: c.Param("id"),
		AddOns:    c.QueryArray("add_on"),
	}
	var err error
	q.CheckIn, q.CheckOut, q.Travelers, err = quoteParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := queries.Ask[pricingapp.QuoteQuery, dto.QuoteView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h PricingHandler) PreviewCoupon(c *gin.Context) {
	q := pricingapp.PreviewCouponQuery{
		ListingID:  c.Param("id"),
		AddOns:     c.QueryArray("add_on"),
		CouponCode: c.Query("coupon"),
	}
	var err error
	q.CheckIn, q.CheckOut, q.Travelers, err = quoteParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preview, err := queries.Ask[pricingapp.PreviewCouponQuery, dto.CouponPreview](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func quoteParams(c *gin.Context) (checkIn, checkOut time.Time, travelers int, err error) {
	checkIn, err = time.Parse(time.RFC3339, c.Query("check_in"))
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	checkOut, err = time.Parse(time.RFC3339, c.Query("check_out"))
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	travelers, err = strconv.Atoi(c.DefaultQuery("travelers", "1"))
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	return checkIn, checkOut, travelers, nil
}

var _ PricingHTTP = PricingHandler{}
