package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	infraoutbox "quietsummit/internal/infra/outbox"
)

// OutboxStore persists outbox documents. Claim uses findOneAndUpdate so two
// workers never publish the same record.
type OutboxStore struct {
	col *mongo.Collection
}

func NewOutboxStore(db *mongo.Database) *OutboxStore {
	return &OutboxStore{col: db.Collection("outbox_events")}
}

func (s *OutboxStore) Append(ctx context.Context, docs []infraoutbox.EventDocument) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]any, 0, len(docs))
	for _, doc := range docs {
		models = append(models, newOutboxDocument(doc))
	}
	_, err := s.col.InsertMany(ctx, models)
	return err
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	now := time.Now()
	filter := bson.M{
		"status":     bson.M{"$in": bson.A{infraoutbox.StatusPending, infraoutbox.StatusFailed}},
		"next_retry": bson.M{"$lte": now.UnixMilli()},
	}
	update := bson.M{"$set": bson.M{"claimed_by": workerID}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.M{"occurred_at": 1}).
		SetReturnDocument(options.After)
	var doc outboxDocument
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := doc.toEvent()
	return &out, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     infraoutbox.StatusSent,
		"claimed_by": "",
	}})
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":     infraoutbox.StatusFailed,
			"last_error": reason,
			"next_retry": nextRetry.UnixMilli(),
			"claimed_by": "",
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

type outboxDocument struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Aggregate  string            `bson:"aggregate"`
	Payload    []byte            `bson:"payload"`
	Headers    map[string]string `bson:"headers,omitempty"`
	Status     string            `bson:"status"`
	Attempts   int               `bson:"attempts"`
	LastError  string            `bson:"last_error,omitempty"`
	NextRetry  int64             `bson:"next_retry"`
	ClaimedBy  string            `bson:"claimed_by,omitempty"`
	OccurredAt int64             `bson:"occurred_at"`
}

func newOutboxDocument(doc infraoutbox.EventDocument) outboxDocument {
	return outboxDocument{
		ID:         doc.ID,
		Name:       doc.Name,
		Aggregate:  doc.Aggregate,
		Payload:    doc.Payload,
		Headers:    doc.Headers,
		Status:     doc.Status,
		Attempts:   doc.Attempts,
		LastError:  doc.LastError,
		NextRetry:  doc.NextRetry.UnixMilli(),
		ClaimedBy:  doc.ClaimedBy,
		OccurredAt: doc.OccurredAt.UnixMilli(),
	}
}

func (d outboxDocument) toEvent() infraoutbox.EventDocument {
	return infraoutbox.EventDocument{
		ID:         d.ID,
		Name:       d.Name,
		Aggregate:  d.Aggregate,
		Payload:    d.Payload,
		Headers:    d.Headers,
		Status:     d.Status,
		Attempts:   d.Attempts,
		LastError:  d.LastError,
		NextRetry:  time.UnixMilli(d.NextRetry).UTC(),
		ClaimedBy:  d.ClaimedBy,
		OccurredAt: timestampToTime(d.OccurredAt),
	}
}

var _ infraoutbox.Store = (*OutboxStore)(nil)
