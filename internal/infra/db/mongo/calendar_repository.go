package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "quietsummit/internal/domain/availability"
	"quietsummit/internal/domain/listings"
	domainrange "quietsummit/internal/domain/shared/daterange"
)

// CalendarRepository stores one document per listing calendar. Save is a
// conditional update on the version read, so two writers racing on the same
// calendar cannot both win; the loser gets ErrConcurrentUpdate.
type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("agg_calendar")}
}

func (r *CalendarRepository) Calendar(ctx context.Context, listingID listings.ListingID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(listingID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainavailability.NewCalendar(listingID), nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	doc := newCalendarDocument(cal)
	filter := bson.M{"_id": doc.ID, "version": cal.Version}
	doc.Version = cal.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainavailability.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainavailability.ErrConcurrentUpdate
	}
	cal.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Blocks  []blockDocument `bson:"blocks"`
	Version int64           `bson:"version"`
}

type blockDocument struct {
	ID        string        `bson:"id"`
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	BookingID string        `bson:"booking_id,omitempty"`
	CreatedAt int64         `bson:"created_at"`
}

func newCalendarDocument(cal *domainavailability.Calendar) calendarDocument {
	doc := calendarDocument{
		ID:      string(cal.ListingID),
		Blocks:  make([]blockDocument, 0, len(cal.Blocks)),
		Version: cal.Version,
	}
	for _, b := range cal.Blocks {
		doc.Blocks = append(doc.Blocks, blockDocument{
			ID:        string(b.ID),
			Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
			Reason:    string(b.Reason),
			BookingID: b.BookingID,
			CreatedAt: b.CreatedAt.UnixMilli(),
		})
	}
	return doc
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	cal := &domainavailability.Calendar{
		ListingID: listings.ListingID(d.ID),
		Blocks:    make([]domainavailability.Block, 0, len(d.Blocks)),
		Version:   d.Version,
	}
	for _, b := range d.Blocks {
		cal.Blocks = append(cal.Blocks, domainavailability.Block{
			ID:        domainavailability.BlockID(b.ID),
			Range:     domainrange.DateRange{CheckIn: timestampToTime(b.Range.CheckIn), CheckOut: timestampToTime(b.Range.CheckOut)},
			Reason:    domainavailability.BlockReason(b.Reason),
			BookingID: b.BookingID,
			CreatedAt: timestampToTime(b.CreatedAt),
		})
	}
	return cal
}

var _ domainavailability.Repository = (*CalendarRepository)(nil)
