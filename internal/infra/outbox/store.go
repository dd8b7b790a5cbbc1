package outbox

import (
	"context"
	"time"
)

// EventDocument is the persisted form of an outbox record.
type EventDocument struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	Status     string
	Attempts   int
	LastError  string
	NextRetry  time.Time
	ClaimedBy  string
	OccurredAt time.Time
}

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Store is the durable queue behind the worker. Claim hands out at most one
// due pending document and marks it as owned by the worker; MarkFailed
// schedules a retry.
type Store interface {
	Append(ctx context.Context, docs []EventDocument) error
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error
}
