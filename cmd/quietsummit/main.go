package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"quietsummit/internal/app/commands"
	availabilityapp "quietsummit/internal/app/handlers/availability"
	bookingapp "quietsummit/internal/app/handlers/booking"
	pricingapp "quietsummit/internal/app/handlers/pricing"
	settlementapp "quietsummit/internal/app/handlers/settlement"
	"quietsummit/internal/app/middleware"
	appoutbox "quietsummit/internal/app/outbox"
	"quietsummit/internal/app/queries"
	"quietsummit/internal/app/services/reconcile"
	"quietsummit/internal/app/uow"
	domaincoupon "quietsummit/internal/domain/coupon"
	"quietsummit/internal/domain/listings"
	domainpayment "quietsummit/internal/domain/payment"
	domainpricing "quietsummit/internal/domain/pricing"
	"quietsummit/internal/domain/shared/money"
	"quietsummit/internal/infra/broker/kafka"
	"quietsummit/internal/infra/config"
	mongodb "quietsummit/internal/infra/db/mongo"
	"quietsummit/internal/infra/gateway"
	ginserver "quietsummit/internal/infra/http/gin"
	"quietsummit/internal/infra/notify"
	"quietsummit/internal/infra/obs"
	"quietsummit/internal/infra/outbox"
	pricinginfra "quietsummit/internal/infra/pricing"
	"quietsummit/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer deps.close(logger)

	app := buildApplication(cfg, deps, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		ReadyCheck: deps.readyCheck,
	}, app)

	if cfg.StorageMode == config.StorageMemory {
		path := os.Getenv("FIXTURES_PATH")
		if path != "" {
			if err := loadFixtures(ctx, deps, path, cfg.Currency, logger); err != nil {
				logger.Warn("fixtures load failed", "error", err, "path", path)
			}
		}
	}

	reconciler := &reconcile.Reconciler{
		UoWFactory: deps.uowFactory,
		Interval:   cfg.ReconcileInterval,
		Logger:     logger,
	}
	go reconciler.Run(ctx)

	if deps.worker != nil {
		go func() {
			if err := deps.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if deps.consumer != nil {
		topic := cfg.KafkaTopicPrefix + "booking.events.v1"
		go func() {
			if err := deps.consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// dependencies holds everything behind the application layer: the unit of
// work factory for the chosen storage mode, the outbox pipeline and the
// optional Kafka endpoints.
type dependencies struct {
	uowFactory uow.UoWFactory
	appOutbox  appoutbox.Outbox
	idStore    middleware.IdempotencyStore
	worker     *outbox.Worker
	consumer   *kafka.Consumer
	producer   *kafka.Producer
	mongo      *mongodb.Client
	readyCheck func() error

	// memory-mode repositories kept for fixture loading
	memListings *memory.ListingRepository
	memCalendar *memory.CalendarRepository
	memCoupons  *memory.CouponRepository
}

func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	var store outbox.Store
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		deps.mongo = client
		deps.readyCheck = func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(checkCtx)
		}
		deps.uowFactory = mongodb.Factory{
			DB:               client.DB,
			ListingsRepo:     mongodb.NewListingRepository(client.DB),
			AvailabilityRepo: mongodb.NewCalendarRepository(client.DB),
			BookingRepo:      mongodb.NewBookingRepository(client.DB),
			CouponRepo:       mongodb.NewCouponRepository(client.DB),
			PayoutRepo:       mongodb.NewPayoutRepository(client.DB),
			PricingSvc:       newPricingEngine(cfg),
		}
		deps.idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		store = mongodb.NewOutboxStore(client.DB)
		deps.appOutbox = outbox.NewBuffered(store)
	default:
		deps.memListings = memory.NewListingRepository()
		deps.memCalendar = memory.NewCalendarRepository()
		deps.memCoupons = memory.NewCouponRepository()
		deps.uowFactory = memory.Factory{
			ListingsRepo:     deps.memListings,
			AvailabilityRepo: deps.memCalendar,
			BookingRepo:      memory.NewBookingRepository(),
			CouponRepo:       deps.memCoupons,
			PayoutRepo:       memory.NewPayoutRepository(),
			PricingSvc:       newPricingEngine(cfg),
		}
		deps.idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		if cfg.NotificationsEnabled {
			store = outbox.NewMemoryStore()
			deps.appOutbox = outbox.NewBuffered(store)
		} else {
			deps.appOutbox = memory.NewOutbox()
		}
	}

	if cfg.NotificationsEnabled {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		deps.producer = producer
		deps.worker = &outbox.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "quietsummit-notifications", nil, &notify.BookingEventHandler{
			Notifier: notify.LogNotifier{Logger: logger},
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		deps.consumer = consumer
	}
	return deps, nil
}

func (d *dependencies) close(logger *slog.Logger) {
	if d.consumer != nil {
		if err := d.consumer.Close(); err != nil {
			logger.Warn("consumer close failed", "error", err)
		}
	}
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			logger.Warn("producer close failed", "error", err)
		}
	}
	if d.mongo != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.mongo.Disconnect(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}

func newPricingEngine(cfg config.Config) domainpricing.Engine {
	return domainpricing.Engine{
		TaxBasisPoints: cfg.TaxBasisPoints,
		AddOnPrices:    domainpricing.DefaultAddOns(cfg.Currency),
		Currency:       cfg.Currency,
	}
}

func buildApplication(cfg config.Config, deps *dependencies, logger *slog.Logger) ginserver.Handlers {
	pricingPort := pricinginfra.Adapter{Calculator: newPricingEngine(cfg)}

	var gatewayPort domainpayment.Gateway
	if cfg.GatewayBaseURL != "" {
		gatewayPort = &gateway.Client{
			BaseURL: cfg.GatewayBaseURL,
			KeyID:   cfg.GatewayKeyID,
			Secret:  cfg.GatewaySecret,
		}
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateReservationCommand{}.Key(), &bookingapp.CreateReservationHandler{
		UoWFactory:    deps.uowFactory,
		Pricing:       pricingPort,
		Gateway:       gatewayPort,
		GatewaySecret: cfg.GatewaySecret,
		Outbox:        deps.appOutbox,
		Encoder:       appoutbox.JSONEventEncoder{},
		Logger:        logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.appOutbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.UpdateStatusCommand{}.Key(), &bookingapp.UpdateStatusHandler{
		UoWFactory: deps.uowFactory,
		Outbox:     deps.appOutbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, availabilityapp.BlockDatesCommand{}.Key(), &availabilityapp.BlockDatesHandler{
		UoWFactory: deps.uowFactory,
	})
	commands.RegisterHandler(commandBus, availabilityapp.UnblockDatesCommand{}.Key(), &availabilityapp.UnblockDatesHandler{
		UoWFactory: deps.uowFactory,
	})
	commands.RegisterHandler(commandBus, availabilityapp.ToggleDayCommand{}.Key(), &availabilityapp.ToggleDayHandler{
		UoWFactory: deps.uowFactory,
	})
	commands.RegisterHandler(commandBus, settlementapp.RequestPayoutCommand{}.Key(), &settlementapp.RequestPayoutHandler{
		UoWFactory: deps.uowFactory,
		Currency:   cfg.Currency,
	})
	commands.RegisterHandler(commandBus, settlementapp.ResolvePayoutCommand{}.Key(), &settlementapp.ResolvePayoutHandler{
		UoWFactory: deps.uowFactory,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{
		UoWFactory: deps.uowFactory,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListTravelerBookingsQuery{}.Key(), &bookingapp.ListTravelerBookingsHandler{
		UoWFactory: deps.uowFactory,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{
		UoWFactory: deps.uowFactory,
	})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: deps.uowFactory,
	})
	queries.RegisterHandler(queryBus, pricingapp.QuoteQuery{}.Key(), &pricingapp.QuoteHandler{
		UoWFactory: deps.uowFactory,
		Pricing:    pricingPort,
	})
	queries.RegisterHandler(queryBus, pricingapp.PreviewCouponQuery{}.Key(), &pricingapp.PreviewCouponHandler{
		UoWFactory: deps.uowFactory,
		Pricing:    pricingPort,
	})
	queries.RegisterHandler(queryBus, settlementapp.GetBalanceQuery{}.Key(), &settlementapp.GetBalanceHandler{
		UoWFactory: deps.uowFactory,
		Currency:   cfg.Currency,
	})
	queries.RegisterHandler(queryBus, settlementapp.ListPayoutsQuery{}.Key(), &settlementapp.ListPayoutsHandler{
		UoWFactory: deps.uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(deps.idStore, nil),
		middleware.Transaction(deps.uowFactory, nil),
		middleware.OutboxFlush(deps.appOutbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	return ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Availability: ginserver.AvailabilityHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Pricing: ginserver.PricingHandler{
			Queries: queryBusWithMiddleware,
		},
		Settlement: ginserver.SettlementHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		AuthMiddleware: ginserver.IdentityMiddleware{}.Handle,
	}
}

// loadFixtures seeds the in-memory repositories from a JSON file so a local
// instance has inventory to book against. Invalid entries are logged and
// skipped.
func loadFixtures(ctx context.Context, deps *dependencies, path, currency string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fx fixtureFile
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, lf := range fx.Listings {
		item, err := buildFixtureListing(lf, currency, now)
		if err != nil {
			logger.Error("fixture listing invalid", "listing_id", lf.ID, "error", err)
			continue
		}
		if err := deps.memListings.Save(ctx, item); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", lf.ID, "error", err)
			continue
		}
		logger.Info("fixture listing imported", "listing_id", lf.ID, "kind", lf.Kind)
	}
	for _, cf := range fx.Coupons {
		coupon, err := buildFixtureCoupon(cf, currency, now)
		if err != nil {
			logger.Error("fixture coupon invalid", "code", cf.Code, "error", err)
			continue
		}
		if err := deps.memCoupons.Save(ctx, coupon); err != nil {
			logger.Error("cannot store fixture coupon", "code", cf.Code, "error", err)
			continue
		}
		logger.Info("fixture coupon imported", "code", coupon.Code)
	}
	return nil
}

type fixtureFile struct {
	Listings []listingFixture `json:"listings"`
	Coupons  []couponFixture  `json:"coupons"`
}

type listingFixture struct {
	ID           string `json:"id"`
	Host         string `json:"host"`
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	MaxTravelers int    `json:"max_travelers"`
	RateCents    int64  `json:"rate_cents"`
	Departure    string `json:"departure"`
	DurationDays int    `json:"duration_days"`
}

type couponFixture struct {
	Code        string `json:"code"`
	Type        string `json:"type"`
	Value       int64  `json:"value"`
	MinPurchase int64  `json:"min_purchase"`
	MaxDiscount int64  `json:"max_discount"`
	ValidFrom   string `json:"valid_from"`
	ValidUntil  string `json:"valid_until"`
	UsageLimit  int    `json:"usage_limit"`
}

func buildFixtureListing(lf listingFixture, currency string, now time.Time) (listings.Reservable, error) {
	rate, err := money.New(lf.RateCents, currency)
	if err != nil {
		return nil, err
	}
	if lf.Kind == "trip" {
		departure, err := time.Parse(time.RFC3339, lf.Departure)
		if err != nil {
			return nil, fmt.Errorf("departure: %w", err)
		}
		trip, err := listings.NewTripPackage(listings.CreateTripParams{
			ID:           listings.ListingID(lf.ID),
			Host:         listings.HostID(lf.Host),
			Title:        lf.Title,
			Departure:    departure,
			DurationDays: lf.DurationDays,
			MaxTravelers: lf.MaxTravelers,
			Rate:         rate,
			Now:          now,
		})
		if err != nil {
			return nil, err
		}
		trip.Approve(now)
		trip.Activate(now)
		return trip, nil
	}
	listing, err := listings.NewListing(listings.CreateListingParams{
		ID:           listings.ListingID(lf.ID),
		Host:         listings.HostID(lf.Host),
		Title:        lf.Title,
		MaxTravelers: lf.MaxTravelers,
		Rate:         rate,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	listing.Approve(now)
	listing.Activate(now)
	return listing, nil
}

func buildFixtureCoupon(cf couponFixture, currency string, now time.Time) (*domaincoupon.Coupon, error) {
	validFrom, err := time.Parse(time.RFC3339, cf.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("valid_from: %w", err)
	}
	validUntil, err := time.Parse(time.RFC3339, cf.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("valid_until: %w", err)
	}
	minPurchase, err := money.New(cf.MinPurchase, currency)
	if err != nil {
		return nil, err
	}
	maxDiscount, err := money.New(cf.MaxDiscount, currency)
	if err != nil {
		return nil, err
	}
	return domaincoupon.New(domaincoupon.CreateParams{
		ID:          domaincoupon.CouponID(uuid.NewString()),
		Code:        cf.Code,
		Type:        domaincoupon.DiscountType(cf.Type),
		Value:       cf.Value,
		MinPurchase: minPurchase,
		MaxDiscount: maxDiscount,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		UsageLimit:  cf.UsageLimit,
		Now:         now,
	})
}
