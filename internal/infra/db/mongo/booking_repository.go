package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "quietsummit/internal/domain/booking"
	"quietsummit/internal/domain/listings"
	domainrange "quietsummit/internal/domain/shared/daterange"
	"quietsummit/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByTraveler(ctx context.Context, travelerID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"traveler_id": travelerID})
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID listings.HostID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"host_id": string(hostID)})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID         string          `bson:"_id"`
	TravelerID string          `bson:"traveler_id"`
	ListingID  string          `bson:"listing_id"`
	HostID     string          `bson:"host_id"`
	Kind       string          `bson:"kind"`
	Range      rangeDocument   `bson:"range"`
	Travelers  int             `bson:"travelers"`
	AddOns     []string        `bson:"add_ons,omitempty"`
	Charges    chargesDocument `bson:"charges"`
	Coupon     *couponDocument `bson:"coupon,omitempty"`
	State      string          `bson:"state"`
	Payment    paymentDocument `bson:"payment"`
	Notes      string          `bson:"notes,omitempty"`
	CreatedAt  int64           `bson:"created_at"`
	UpdatedAt  int64           `bson:"updated_at"`
	Version    int64           `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

type chargesDocument struct {
	Subtotal moneyDocument `bson:"subtotal"`
	Discount moneyDocument `bson:"discount"`
	Total    moneyDocument `bson:"total"`
}

type couponDocument struct {
	CouponID string        `bson:"coupon_id"`
	Code     string        `bson:"code"`
	Discount moneyDocument `bson:"discount"`
}

type paymentDocument struct {
	Status           string `bson:"status"`
	GatewayOrderID   string `bson:"gateway_order_id,omitempty"`
	GatewayPaymentID string `bson:"gateway_payment_id,omitempty"`
	PaidAt           int64  `bson:"paid_at,omitempty"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		TravelerID: b.TravelerID,
		ListingID:  string(b.ListingID),
		HostID:     string(b.HostID),
		Kind:       string(b.Kind),
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Travelers:  b.Travelers,
		AddOns:     b.AddOns,
		Charges: chargesDocument{
			Subtotal: toMoneyDoc(b.Charges.Subtotal),
			Discount: toMoneyDoc(b.Charges.Discount),
			Total:    toMoneyDoc(b.Charges.Total),
		},
		State: string(b.State),
		Payment: paymentDocument{
			Status:           string(b.Payment.Status),
			GatewayOrderID:   b.Payment.GatewayOrderID,
			GatewayPaymentID: b.Payment.GatewayPaymentID,
		},
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
	if !b.Payment.PaidAt.IsZero() {
		doc.Payment.PaidAt = b.Payment.PaidAt.UnixMilli()
	}
	if b.Coupon != nil {
		doc.Coupon = &couponDocument{
			CouponID: b.Coupon.CouponID,
			Code:     b.Coupon.Code,
			Discount: toMoneyDoc(b.Coupon.Discount),
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	agg := &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		TravelerID: d.TravelerID,
		ListingID:  listings.ListingID(d.ListingID),
		HostID:     listings.HostID(d.HostID),
		Kind:       listings.Kind(d.Kind),
		Range:      dr,
		Travelers:  d.Travelers,
		AddOns:     d.AddOns,
		Charges: domainbooking.Charges{
			Subtotal: fromMoneyDoc(d.Charges.Subtotal),
			Discount: fromMoneyDoc(d.Charges.Discount),
			Total:    fromMoneyDoc(d.Charges.Total),
		},
		State: domainbooking.BookingState(d.State),
		Payment: domainbooking.PaymentInfo{
			Status:           domainbooking.PaymentStatus(d.Payment.Status),
			GatewayOrderID:   d.Payment.GatewayOrderID,
			GatewayPaymentID: d.Payment.GatewayPaymentID,
		},
		Notes:     d.Notes,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if d.Payment.PaidAt != 0 {
		agg.Payment.PaidAt = timestampToTime(d.Payment.PaidAt)
	}
	if d.Coupon != nil {
		agg.Coupon = &domainbooking.CouponSnapshot{
			CouponID: d.Coupon.CouponID,
			Code:     d.Coupon.Code,
			Discount: fromMoneyDoc(d.Coupon.Discount),
		}
	}
	return agg
}

func toMoneyDoc(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func fromMoneyDoc(d moneyDocument) money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
