package outbox

import (
	"context"
	"sync"

	appoutbox "quietsummit/internal/app/outbox"
)

// Buffered collects event records during a command and appends them to the
// durable store on flush, inside the same transaction boundary when the
// store participates in it.
type Buffered struct {
	store Store

	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewBuffered(store Store) *Buffered {
	return &Buffered{store: store}
}

func (b *Buffered) Add(ctx context.Context, record appoutbox.EventRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, record)
	return nil
}

func (b *Buffered) Flush(ctx context.Context) error {
	b.mu.Lock()
	records := b.records
	b.records = nil
	b.mu.Unlock()
	if len(records) == 0 {
		return nil
	}
	docs := make([]EventDocument, 0, len(records))
	for _, rec := range records {
		docs = append(docs, EventDocument{
			ID:         rec.ID,
			Name:       rec.Name,
			Aggregate:  rec.Aggregate,
			Payload:    rec.Payload,
			Headers:    rec.Headers,
			Status:     StatusPending,
			OccurredAt: rec.OccurredAt,
		})
	}
	return b.store.Append(ctx, docs)
}

var _ appoutbox.Outbox = (*Buffered)(nil)
