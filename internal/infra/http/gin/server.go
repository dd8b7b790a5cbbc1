package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"quietsummit/internal/infra/config"
	"quietsummit/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Cancel(c *gin.Context)
	UpdateStatus(c *gin.Context)
	ListMine(c *gin.Context)
	ListHost(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
	ToggleDay(c *gin.Context)
}

type PricingHTTP interface {
	Quote(c *gin.Context)
	PreviewCoupon(c *gin.Context)
}

type SettlementHTTP interface {
	Balance(c *gin.Context)
	RequestPayout(c *gin.Context)
	ListPayouts(c *gin.Context)
	ResolvePayout(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Availability   AvailabilityHTTP
	Pricing        PricingHTTP
	Settlement     SettlementHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-User-ID", "X-User-Roles"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/status", h.Booking.UpdateStatus)
		api.GET("/me/bookings", h.Booking.ListMine)
		api.GET("/host/bookings", h.Booking.ListHost)
	}
	if h.Availability != nil {
		api.GET("/listings/:id/calendar", h.Availability.Calendar)
		api.POST("/listings/:id/calendar/blocks", h.Availability.Block)
		api.DELETE("/listings/:id/calendar/blocks/:blockId", h.Availability.Unblock)
		api.POST("/listings/:id/calendar/toggle", h.Availability.ToggleDay)
	}
	if h.Pricing != nil {
		api.GET("/listings/:id/quote", h.Pricing.Quote)
		api.GET("/listings/:id/coupon-preview", h.Pricing.PreviewCoupon)
	}
	if h.Settlement != nil {
		api.GET("/host/balance", h.Settlement.Balance)
		api.POST("/host/payouts", h.Settlement.RequestPayout)
		api.GET("/host/payouts", h.Settlement.ListPayouts)
		api.POST("/admin/payouts/:id/resolve", h.Settlement.ResolvePayout)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
