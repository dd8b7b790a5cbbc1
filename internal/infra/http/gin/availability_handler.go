package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"quietsummit/internal/app/commands"
	"quietsummit/internal/app/dto"
	availabilityapp "quietsummit/internal/app/handlers/availability"
	"quietsummit/internal/app/queries"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	q := availabilityapp.GetCalendarQuery{ListingID: c.Param("id")}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		q.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		q.To = t
	}
	cal, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

type blockDatesRequest struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := availabilityapp.BlockDatesCommand{
		ListingID: c.Param("id"),
		From:      req.From,
		To:        req.To,
		Reason:    req.Reason,
		Principal: user,
	}
	block, err := commands.Dispatch[availabilityapp.BlockDatesCommand, dto.CalendarBlock](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h AvailabilityHandler) Unblock(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := availabilityapp.UnblockDatesCommand{
		ListingID: c.Param("id"),
		BlockID:   c.Param("blockId"),
		Principal: user,
	}
	if _, err := commands.Dispatch[availabilityapp.UnblockDatesCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type toggleDayRequest struct {
	Day    time.Time `json:"day"`
	Reason string    `json:"reason"`
}

func (h AvailabilityHandler) ToggleDay(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req toggleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := availabilityapp.ToggleDayCommand{
		ListingID: c.Param("id"),
		Day:       req.Day,
		Reason:    req.Reason,
		Principal: user,
	}
	result, err := commands.Dispatch[availabilityapp.ToggleDayCommand, availabilityapp.ToggleDayResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
