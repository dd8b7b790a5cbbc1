package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	bookingapp "quietsummit/internal/app/handlers/booking"
	"quietsummit/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type paymentProofRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type createReservationRequest struct {
	ListingID  string               `json:"listing_id"`
	CheckIn    time.Time            `json:"check_in"`
	CheckOut   time.Time            `json:"check_out"`
	Travelers  int                  `json:"travelers"`
	AddOns     []string             `json:"add_ons"`
	CouponCode string               `json:"coupon_code"`
	Payment    *paymentProofRequest `json:"payment"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateReservationCommand{
		CommandID:       generateCommandID(),
		TravelerID:      user.ID,
		ListingID:       req.ListingID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Travelers:       req.Travelers,
		AddOns:          req.AddOns,
		CouponCode:      req.CouponCode,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if req.Payment != nil {
		cmd.Payment = &bookingapp.PaymentProofInput{
			OrderID:   req.Payment.OrderID,
			PaymentID: req.Payment.PaymentID,
			Signature: req.Payment.Signature,
		}
	}
	result, err := commands.Dispatch[bookingapp.CreateReservationCommand, *bookingapp.CreateReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := bookingapp.GetBookingQuery{BookingID: c.Param("id"), Principal: user}
	view, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CancelBookingCommand{
		BookingID: c.Param("id"),
		Reason:    req.Reason,
		Principal: user,
	}
	view, err := commands.Dispatch[bookingapp.CancelBookingCommand, dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.UpdateStatusCommand{
		BookingID: c.Param("id"),
		NewStatus: req.Status,
		Principal: user,
	}
	view, err := commands.Dispatch[bookingapp.UpdateStatusCommand, dto.BookingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := bookingapp.ListTravelerBookingsQuery{TravelerID: user.ID}
	out, err := queries.Ask[bookingapp.ListTravelerBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h BookingHandler) ListHost(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	q := bookingapp.ListHostBookingsQuery{HostID: user.ID}
	out, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
