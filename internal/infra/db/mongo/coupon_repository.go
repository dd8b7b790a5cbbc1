package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincoupon "quietsummit/internal/domain/coupon"
	"quietsummit/internal/domain/listings"
	"quietsummit/internal/domain/shared/money"
)

type CouponRepository struct {
	col *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{col: db.Collection("agg_coupon")}
}

func (r *CouponRepository) ByCode(ctx context.Context, code string) (*domaincoupon.Coupon, error) {
	var doc couponAggDocument
	err := r.col.FindOne(ctx, bson.M{"code": domaincoupon.NormalizeCode(code)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domaincoupon.ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CouponRepository) Save(ctx context.Context, c *domaincoupon.Coupon) error {
	doc := newCouponAggDocument(c)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// ConsumeUse increments the usage count in one conditional update. The
// filter refuses coupons whose limit is already exhausted, so concurrent
// confirmations cannot race past the cap.
func (r *CouponRepository) ConsumeUse(ctx context.Context, id domaincoupon.CouponID) error {
	filter := bson.M{
		"_id": string(id),
		"$or": bson.A{
			bson.M{"usage_limit": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"used_count": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		exists, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)})
		if err != nil {
			return err
		}
		if exists == 0 {
			return domaincoupon.ErrInvalidCode
		}
		return domaincoupon.ErrUsageLimitReached
	}
	return nil
}

type couponAggDocument struct {
	ID          string        `bson:"_id"`
	Code        string        `bson:"code"`
	Type        string        `bson:"type"`
	Value       int64         `bson:"value"`
	MinPurchase moneyDocument `bson:"min_purchase"`
	MaxDiscount moneyDocument `bson:"max_discount"`
	ValidFrom   int64         `bson:"valid_from"`
	ValidUntil  int64         `bson:"valid_until"`
	UsageLimit  int           `bson:"usage_limit"`
	UsedCount   int           `bson:"used_count"`
	Active      bool          `bson:"active"`
	Listings    []string      `bson:"listings,omitempty"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
}

func newCouponAggDocument(c *domaincoupon.Coupon) couponAggDocument {
	doc := couponAggDocument{
		ID:          string(c.ID),
		Code:        c.Code,
		Type:        string(c.Type),
		Value:       c.Value,
		MinPurchase: toMoneyDoc(c.MinPurchase),
		MaxDiscount: toMoneyDoc(c.MaxDiscount),
		ValidFrom:   c.ValidFrom.UnixMilli(),
		ValidUntil:  c.ValidUntil.UnixMilli(),
		UsageLimit:  c.UsageLimit,
		UsedCount:   c.UsedCount,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
	}
	for _, id := range c.Listings {
		doc.Listings = append(doc.Listings, string(id))
	}
	return doc
}

func (d couponAggDocument) toAggregate() *domaincoupon.Coupon {
	c := &domaincoupon.Coupon{
		ID:          domaincoupon.CouponID(d.ID),
		Code:        d.Code,
		Type:        domaincoupon.DiscountType(d.Type),
		Value:       d.Value,
		MinPurchase: money.Money{Amount: d.MinPurchase.Amount, Currency: d.MinPurchase.Currency},
		MaxDiscount: money.Money{Amount: d.MaxDiscount.Amount, Currency: d.MaxDiscount.Currency},
		ValidFrom:   timestampToTime(d.ValidFrom),
		ValidUntil:  timestampToTime(d.ValidUntil),
		UsageLimit:  d.UsageLimit,
		UsedCount:   d.UsedCount,
		Active:      d.Active,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
	for _, id := range d.Listings {
		c.Listings = append(c.Listings, listings.ListingID(id))
	}
	return c
}

var _ domaincoupon.Repository = (*CouponRepository)(nil)
