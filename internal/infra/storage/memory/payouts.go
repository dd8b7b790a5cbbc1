package memory

import (
	"context"
	"sort"
	"sync"

	domainlistings "quietsummit/internal/domain/listings"
	domainsettlement "quietsummit/internal/domain/settlement"
)

// PayoutRepository keeps payouts in memory. WithHostLock serializes the
// balance-check-and-create sequence per host with a dedicated mutex.
type PayoutRepository struct {
	mu    sync.RWMutex
	items map[domainsettlement.PayoutID]*domainsettlement.Payout

	locksMu sync.Mutex
	locks   map[domainlistings.HostID]*sync.Mutex
}

func NewPayoutRepository() *PayoutRepository {
	return &PayoutRepository{
		items: make(map[domainsettlement.PayoutID]*domainsettlement.Payout),
		locks: make(map[domainlistings.HostID]*sync.Mutex),
	}
}

func (r *PayoutRepository) ByID(ctx context.Context, id domainsettlement.PayoutID) (*domainsettlement.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainsettlement.ErrPayoutNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *PayoutRepository) Save(ctx context.Context, p *domainsettlement.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *p
	r.items[p.ID] = &copied
	return nil
}

func (r *PayoutRepository) ListByHost(ctx context.Context, hostID domainlistings.HostID) ([]*domainsettlement.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainsettlement.Payout
	for _, p := range r.items {
		if p.HostID == hostID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out, nil
}

func (r *PayoutRepository) WithHostLock(ctx context.Context, hostID domainlistings.HostID, fn func(ctx context.Context) error) error {
	lock := r.hostLock(hostID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (r *PayoutRepository) hostLock(hostID domainlistings.HostID) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, ok := r.locks[hostID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[hostID] = lock
	}
	return lock
}

var _ domainsettlement.Repository = (*PayoutRepository)(nil)
