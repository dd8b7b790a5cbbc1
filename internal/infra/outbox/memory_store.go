package outbox

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used with memory storage mode. It keeps
// the worker semantics (claiming, retries) without a database.
type MemoryStore struct {
	mu   sync.Mutex
	docs []EventDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, docs []EventDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return nil
}

func (s *MemoryStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for i := range s.docs {
		doc := &s.docs[i]
		if doc.Status != StatusPending && doc.Status != StatusFailed {
			continue
		}
		if doc.ClaimedBy != "" && doc.Status == StatusPending {
			continue
		}
		if !doc.NextRetry.IsZero() && doc.NextRetry.After(now) {
			continue
		}
		doc.Status = StatusPending
		doc.ClaimedBy = workerID
		copied := *doc
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs[i].Status = StatusSent
			s.docs[i].ClaimedBy = ""
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs[i].Status = StatusFailed
			s.docs[i].Attempts++
			s.docs[i].LastError = reason
			s.docs[i].NextRetry = nextRetry
			s.docs[i].ClaimedBy = ""
			return nil
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
