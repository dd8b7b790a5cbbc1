package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quietsummit/internal/domain/listings"
	domainsettlement "quietsummit/internal/domain/settlement"
)

const hostLockLease = 30 * time.Second

type PayoutRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewPayoutRepository(db *mongo.Database) *PayoutRepository {
	return &PayoutRepository{
		col:   db.Collection("agg_payout"),
		locks: db.Collection("payout_locks"),
	}
}

func (r *PayoutRepository) ByID(ctx context.Context, id domainsettlement.PayoutID) (*domainsettlement.Payout, error) {
	var doc payoutDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainsettlement.ErrPayoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PayoutRepository) Save(ctx context.Context, p *domainsettlement.Payout) error {
	doc := newPayoutDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

func (r *PayoutRepository) ListByHost(ctx context.Context, hostID listings.HostID) ([]*domainsettlement.Payout, error) {
	opts := options.Find().SetSort(bson.M{"requested_at": -1})
	cur, err := r.col.Find(ctx, bson.M{"host_id": string(hostID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainsettlement.Payout
	for cur.Next(ctx) {
		var doc payoutDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// WithHostLock acquires a short lease on the host's lock document before
// running fn, so concurrent payout requests for the same host serialize even
// across processes. Expired leases are stolen rather than waited out forever.
func (r *PayoutRepository) WithHostLock(ctx context.Context, hostID listings.HostID, fn func(ctx context.Context) error) error {
	owner := uuid.NewString()
	for {
		acquired, err := r.tryAcquire(ctx, hostID, owner)
		if err != nil {
			return err
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	defer func() {
		_, _ = r.locks.DeleteOne(context.Background(), bson.M{"_id": string(hostID), "owner": owner})
	}()
	return fn(ctx)
}

func (r *PayoutRepository) tryAcquire(ctx context.Context, hostID listings.HostID, owner string) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"_id": string(hostID),
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$lt": now.UnixMilli()}},
			bson.M{"owner": owner},
		},
	}
	update := bson.M{"$set": bson.M{
		"owner":      owner,
		"expires_at": now.Add(hostLockLease).UnixMilli(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.locks.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type payoutDocument struct {
	ID          string        `bson:"_id"`
	HostID      string        `bson:"host_id"`
	Amount      moneyDocument `bson:"amount"`
	Method      string        `bson:"method"`
	Details     string        `bson:"details,omitempty"`
	Status      string        `bson:"status"`
	ReferenceID string        `bson:"reference_id,omitempty"`
	RequestedAt int64         `bson:"requested_at"`
	ProcessedAt int64         `bson:"processed_at,omitempty"`
	Version     int64         `bson:"version"`
}

func newPayoutDocument(p *domainsettlement.Payout) payoutDocument {
	doc := payoutDocument{
		ID:          string(p.ID),
		HostID:      string(p.HostID),
		Amount:      toMoneyDoc(p.Amount),
		Method:      p.Method,
		Details:     p.Details,
		Status:      string(p.Status),
		ReferenceID: p.ReferenceID,
		RequestedAt: p.RequestedAt.UnixMilli(),
		Version:     p.Version,
	}
	if !p.ProcessedAt.IsZero() {
		doc.ProcessedAt = p.ProcessedAt.UnixMilli()
	}
	return doc
}

func (d payoutDocument) toAggregate() *domainsettlement.Payout {
	p := &domainsettlement.Payout{
		ID:          domainsettlement.PayoutID(d.ID),
		HostID:      listings.HostID(d.HostID),
		Amount:      fromMoneyDoc(d.Amount),
		Method:      d.Method,
		Details:     d.Details,
		Status:      domainsettlement.PayoutStatus(d.Status),
		ReferenceID: d.ReferenceID,
		RequestedAt: timestampToTime(d.RequestedAt),
		Version:     d.Version,
	}
	if d.ProcessedAt != 0 {
		p.ProcessedAt = timestampToTime(d.ProcessedAt)
	}
	return p
}

var _ domainsettlement.Repository = (*PayoutRepository)(nil)
