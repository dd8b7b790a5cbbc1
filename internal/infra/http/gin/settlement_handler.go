package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	settlementapp "quietsummit/internal/app/handlers/settlement"
	"quietsummit/internal/app/queries"
)

type SettlementHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h SettlementHandler) Balance(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	hostID := c.DefaultQuery("host_id", user.ID)
	q := settlementapp.GetBalanceQuery{HostID: hostID, Principal: user}
	view, err := queries.Ask[settlementapp.GetBalanceQuery, dto.BalanceView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type requestPayoutRequest struct {
	Amount  int64  `json:"amount"`
	Method  string `json:"method"`
	Details string `json:"details"`
}

func (h SettlementHandler) RequestPayout(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req requestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := settlementapp.RequestPayoutCommand{
		HostID:    user.ID,
		Amount:    req.Amount,
		Method:    req.Method,
		Details:   req.Details,
		Principal: user,
	}
	view, err := commands.Dispatch[settlementapp.RequestPayoutCommand, dto.PayoutView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h SettlementHandler) ListPayouts(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	hostID := c.DefaultQuery("host_id", user.ID)
	q := settlementapp.ListPayoutsQuery{HostID: hostID, Principal: user}
	out, err := queries.Ask[settlementapp.ListPayoutsQuery, settlementapp.PayoutCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type resolvePayoutRequest struct {
	Approve     bool   `json:"approve"`
	ReferenceID string `json:"reference_id"`
}

func (h SettlementHandler) ResolvePayout(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req resolvePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := settlementapp.ResolvePayoutCommand{
		PayoutID:    c.Param("id"),
		Approve:     req.Approve,
		ReferenceID: req.ReferenceID,
		Principal:   user,
	}
	view, err := commands.Dispatch[settlementapp.ResolvePayoutCommand, dto.PayoutView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

var _ SettlementHTTP = SettlementHandler{}
