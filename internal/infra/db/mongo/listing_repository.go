package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "quietsummit/internal/domain/listings"
)

// ListingRepository stores properties and trip packages in one collection,
// discriminated by the kind field.
type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (domainlistings.Reservable, error) {
	var doc listingDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainlistings.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, item domainlistings.Reservable) error {
	doc, err := newListingDocument(item)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ListingRepository) ListApproved(ctx context.Context) ([]domainlistings.Reservable, error) {
	cur, err := r.col.Find(ctx, bson.M{"state": string(domainlistings.StateApproved)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domainlistings.Reservable
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		item, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, cur.Err()
}

type listingDocument struct {
	ID           string        `bson:"_id"`
	Kind         string        `bson:"kind"`
	Host         string        `bson:"host"`
	Title        string        `bson:"title"`
	State        string        `bson:"state"`
	MaxTravelers int           `bson:"max_travelers"`
	Rate         moneyDocument `bson:"rate"`
	Departure    int64         `bson:"departure,omitempty"`
	DurationDays int           `bson:"duration_days,omitempty"`
	CreatedAt    int64         `bson:"created_at"`
	UpdatedAt    int64         `bson:"updated_at"`
	Version      int64         `bson:"version"`
}

func newListingDocument(item domainlistings.Reservable) (listingDocument, error) {
	switch v := item.(type) {
	case *domainlistings.Listing:
		return listingDocument{
			ID:           string(v.ID),
			Kind:         string(domainlistings.KindProperty),
			Host:         string(v.Host),
			Title:        v.Title,
			State:        string(v.State),
			MaxTravelers: v.MaxTravelers,
			Rate:         toMoneyDoc(v.Rate),
			CreatedAt:    v.CreatedAt.UnixMilli(),
			UpdatedAt:    v.UpdatedAt.UnixMilli(),
			Version:      v.Version,
		}, nil
	case *domainlistings.TripPackage:
		return listingDocument{
			ID:           string(v.ID),
			Kind:         string(domainlistings.KindTrip),
			Host:         string(v.Host),
			Title:        v.Title,
			State:        string(v.State),
			MaxTravelers: v.MaxTravelers,
			Rate:         toMoneyDoc(v.Rate),
			Departure:    v.Departure.UnixMilli(),
			DurationDays: v.DurationDays,
			CreatedAt:    v.CreatedAt.UnixMilli(),
			UpdatedAt:    v.UpdatedAt.UnixMilli(),
			Version:      v.Version,
		}, nil
	default:
		return listingDocument{}, errors.New("mongo: unknown reservable variant")
	}
}

func (d listingDocument) toAggregate() (domainlistings.Reservable, error) {
	switch domainlistings.Kind(d.Kind) {
	case domainlistings.KindProperty:
		return &domainlistings.Listing{
			ID:           domainlistings.ListingID(d.ID),
			Host:         domainlistings.HostID(d.Host),
			Title:        d.Title,
			State:        domainlistings.State(d.State),
			MaxTravelers: d.MaxTravelers,
			Rate:         fromMoneyDoc(d.Rate),
			CreatedAt:    timestampToTime(d.CreatedAt),
			UpdatedAt:    timestampToTime(d.UpdatedAt),
			Version:      d.Version,
		}, nil
	case domainlistings.KindTrip:
		return &domainlistings.TripPackage{
			ID:           domainlistings.ListingID(d.ID),
			Host:         domainlistings.HostID(d.Host),
			Title:        d.Title,
			State:        domainlistings.State(d.State),
			Departure:    timestampToTime(d.Departure),
			DurationDays: d.DurationDays,
			MaxTravelers: d.MaxTravelers,
			Rate:         fromMoneyDoc(d.Rate),
			CreatedAt:    timestampToTime(d.CreatedAt),
			UpdatedAt:    timestampToTime(d.UpdatedAt),
			Version:      d.Version,
		}, nil
	default:
		return nil, errors.New("mongo: unknown listing kind")
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
